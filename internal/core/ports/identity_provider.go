package ports

import (
	"context"

	"github.com/bingsoohouse/storefront-client/internal/core/domain"
)

// IdentityProvider is the federated sign-in collaborator. Each assertion is
// delivered to exactly one caller, so the same sign-in can never be
// exchanged twice.
type IdentityProvider interface {
	// AwaitResult picks up a sign-in that completed out-of-band (redirect
	// flow). Called once at bootstrap. Returns (nil, nil) when no sign-in
	// is pending.
	AwaitResult(ctx context.Context) (*domain.Assertion, error)
	// SignIn runs an interactive federated sign-in and blocks until the
	// provider delivers an assertion or ctx is done.
	SignIn(ctx context.Context) (*domain.Assertion, error)
	// SignOut tears down the provider-side session. Best effort.
	SignOut(ctx context.Context) error
}
