package ports

import (
	"context"

	"github.com/bingsoohouse/storefront-client/internal/core/domain"
)

// CartService keeps the cart badge count consistent with the server-side
// cart for the logged-in user.
type CartService interface {
	// Count is the current badge value. Zero when signed out or on fetch
	// failure.
	Count() int
	// Refresh re-fetches the cart summary and republishes the count.
	Refresh(ctx context.Context)
	AddItem(ctx context.Context, item domain.CartItem) error
	UpdateQuantity(ctx context.Context, itemID string, quantity int) error
	RemoveItem(ctx context.Context, itemID string) error
}
