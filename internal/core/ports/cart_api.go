package ports

import (
	"context"

	"github.com/bingsoohouse/storefront-client/internal/core/domain"
)

// CartAPI is the backend cart surface for the logged-in user.
type CartAPI interface {
	Summary(ctx context.Context, token string) (*domain.CartSummary, error)
	AddItem(ctx context.Context, token string, item domain.CartItem) error
	UpdateQuantity(ctx context.Context, token, itemID string, quantity int) error
	RemoveItem(ctx context.Context, token, itemID string) error
}
