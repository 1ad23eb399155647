package ports

import (
	"context"
	"errors"

	"github.com/bingsoohouse/storefront-client/internal/core/domain"
)

// ErrNoToken is returned by Load when the slot is empty.
var ErrNoToken = errors.New("no persisted token")

// TokenStore is the single durable session slot on this device. It must
// survive restarts and must be clearable.
type TokenStore interface {
	// Load returns the persisted token and, when cached, the user it was
	// issued to. Returns ErrNoToken when the slot is empty.
	Load(ctx context.Context) (string, *domain.User, error)
	// Save writes the token and user blob, replacing any previous value.
	Save(ctx context.Context, token string, user *domain.User) error
	// Clear empties the slot. Clearing an empty slot is not an error.
	Clear(ctx context.Context) error
}
