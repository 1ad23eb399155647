package ports

import (
	"context"

	"github.com/bingsoohouse/storefront-client/internal/core/domain"
)

// LoginResult is what the backend returns when a session is established.
type LoginResult struct {
	Token string
	User  *domain.User
}

// AuthAPI is the backend authentication surface. Implementations classify
// every failure into the domain error taxonomy before returning it.
type AuthAPI interface {
	// Login exchanges username/password credentials for a session.
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	// ExchangeAssertion exchanges a federated identity assertion for a session.
	ExchangeAssertion(ctx context.Context, a domain.Assertion) (*LoginResult, error)
	// Me verifies a persisted token and returns the user it belongs to.
	Me(ctx context.Context, token string) (*domain.User, error)
	// Register creates a new storefront account. No session side effects.
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
}
