package ports

import (
	"context"

	"github.com/bingsoohouse/storefront-client/internal/core/domain"
)

// SessionService is the reconciler's public surface. All session mutation in
// the process funnels through these five operations.
type SessionService interface {
	// Bootstrap resolves the startup session: federated redirect result
	// first, then the persisted token, else unauthenticated.
	Bootstrap(ctx context.Context) domain.Session
	// Login attempts a credential login. A live session is never demoted
	// until the new credentials are confirmed.
	Login(ctx context.Context, username, password string) (domain.Session, error)
	// LoginWithAssertion exchanges a federated assertion for a session,
	// reversing the provider sign-in if the backend rejects it outright.
	LoginWithAssertion(ctx context.Context, a domain.Assertion) (domain.Session, error)
	// Logout always succeeds locally, even when remote sign-out fails.
	Logout(ctx context.Context)
	// Current is a synchronous read of the process-wide session.
	Current() domain.Session
	// Expire reports a session-expired failure seen on any authenticated
	// request; the reconciler collapses concurrent reports.
	Expire(ctx context.Context, message string)
	// Subscribe registers a listener invoked after every published
	// transition.
	Subscribe(fn func(domain.Session))
}
