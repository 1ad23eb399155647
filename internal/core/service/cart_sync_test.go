package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/bingsoohouse/storefront-client/internal/core/domain"
)

type stubCartAPI struct {
	mu           sync.Mutex
	summary      *domain.CartSummary
	summaryErr   error
	summaryCalls int
	addErr       error
}

func (s *stubCartAPI) Summary(_ context.Context, _ string) (*domain.CartSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaryCalls++
	return s.summary, s.summaryErr
}

func (s *stubCartAPI) AddItem(_ context.Context, _ string, _ domain.CartItem) error {
	return s.addErr
}

func (s *stubCartAPI) UpdateQuantity(_ context.Context, _, _ string, _ int) error {
	return nil
}

func (s *stubCartAPI) RemoveItem(_ context.Context, _, _ string) error {
	return nil
}

func (s *stubCartAPI) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaryCalls
}

// stubSession is a hand-driven SessionService: tests publish transitions
// directly.
type stubSession struct {
	mu        sync.Mutex
	sess      domain.Session
	listeners []func(domain.Session)
	expiries  int
}

func newStubSession() *stubSession {
	return &stubSession{sess: domain.Session{Status: domain.StatusUnauthenticated}}
}

func (s *stubSession) Bootstrap(_ context.Context) domain.Session { return s.Current() }

func (s *stubSession) Login(_ context.Context, _, _ string) (domain.Session, error) {
	return s.Current(), nil
}

func (s *stubSession) LoginWithAssertion(_ context.Context, _ domain.Assertion) (domain.Session, error) {
	return s.Current(), nil
}

func (s *stubSession) Logout(_ context.Context) {}

func (s *stubSession) Current() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess
}

func (s *stubSession) Expire(_ context.Context, _ string) {
	s.mu.Lock()
	s.expiries++
	s.sess = domain.Session{Status: domain.StatusUnauthenticated}
	s.mu.Unlock()
}

func (s *stubSession) Subscribe(fn func(domain.Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *stubSession) publish(sess domain.Session) {
	s.mu.Lock()
	s.sess = sess
	listeners := make([]func(domain.Session), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(sess)
	}
}

func userSession(role domain.Role) domain.Session {
	return domain.Session{
		Status: domain.StatusAuthenticated,
		Token:  "tok-1",
		User:   &domain.User{ID: "u1", Username: "sulbing", Role: role},
	}
}

func TestCartSync_RefreshOnUserSignIn(t *testing.T) {
	api := &stubCartAPI{summary: &domain.CartSummary{TotalItems: 3}}
	sess := newStubSession()
	c := NewCartSynchronizer(api, sess, zerolog.Nop())

	sess.publish(userSession(domain.RoleUser))

	if got := c.Count(); got != 3 {
		t.Fatalf("expected count 3, got %d", got)
	}
}

func TestCartSync_ResetOnSignOut(t *testing.T) {
	api := &stubCartAPI{summary: &domain.CartSummary{TotalItems: 5}}
	sess := newStubSession()
	c := NewCartSynchronizer(api, sess, zerolog.Nop())

	sess.publish(userSession(domain.RoleUser))
	if c.Count() != 5 {
		t.Fatalf("precondition: expected count 5, got %d", c.Count())
	}

	sess.publish(domain.Session{Status: domain.StatusUnauthenticated})
	if got := c.Count(); got != 0 {
		t.Fatalf("expected count reset to 0, got %d", got)
	}
}

func TestCartSync_FetchFailureDegradesToZero(t *testing.T) {
	api := &stubCartAPI{summaryErr: fmt.Errorf("%w: 502", domain.ErrTransient)}
	sess := newStubSession()
	c := NewCartSynchronizer(api, sess, zerolog.Nop())

	sess.publish(userSession(domain.RoleUser))

	if got := c.Count(); got != 0 {
		t.Fatalf("expected degraded count 0, got %d", got)
	}
}

func TestCartSync_AdminHasNoCart(t *testing.T) {
	api := &stubCartAPI{summary: &domain.CartSummary{TotalItems: 9}}
	sess := newStubSession()
	c := NewCartSynchronizer(api, sess, zerolog.Nop())

	sess.publish(userSession(domain.RoleAdmin))

	if got := c.Count(); got != 0 {
		t.Fatalf("expected count 0 for admin, got %d", got)
	}
	if api.calls() != 0 {
		t.Fatalf("expected no cart fetch for admin, got %d", api.calls())
	}
}

func TestCartSync_MutationRefreshesCount(t *testing.T) {
	api := &stubCartAPI{summary: &domain.CartSummary{TotalItems: 1}}
	sess := newStubSession()
	c := NewCartSynchronizer(api, sess, zerolog.Nop())
	sess.publish(userSession(domain.RoleUser))

	api.mu.Lock()
	api.summary = &domain.CartSummary{TotalItems: 2}
	api.mu.Unlock()

	if err := c.AddItem(context.Background(), domain.CartItem{ID: "mango-bingsoo", Quantity: 1}); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if got := c.Count(); got != 2 {
		t.Fatalf("expected count 2 after mutation, got %d", got)
	}
}

func TestCartSync_MutationErrorSurfaced(t *testing.T) {
	api := &stubCartAPI{addErr: errors.New("out of stock")}
	sess := newStubSession()
	c := NewCartSynchronizer(api, sess, zerolog.Nop())
	sess.publish(userSession(domain.RoleUser))

	if err := c.AddItem(context.Background(), domain.CartItem{ID: "mango-bingsoo"}); err == nil {
		t.Fatalf("expected mutation error to be surfaced")
	}
}

func TestCartSync_MutationWhileSignedOut(t *testing.T) {
	api := &stubCartAPI{}
	sess := newStubSession()
	c := NewCartSynchronizer(api, sess, zerolog.Nop())

	err := c.AddItem(context.Background(), domain.CartItem{ID: "mango-bingsoo"})
	if !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestCartSync_ExpiredSummaryReportsExpiry(t *testing.T) {
	api := &stubCartAPI{summaryErr: fmt.Errorf("%w: 401", domain.ErrSessionExpired)}
	sess := newStubSession()
	c := NewCartSynchronizer(api, sess, zerolog.Nop())

	sess.publish(userSession(domain.RoleUser))

	sess.mu.Lock()
	expiries := sess.expiries
	sess.mu.Unlock()
	if expiries != 1 {
		t.Fatalf("expected one expiry report, got %d", expiries)
	}
	if got := c.Count(); got != 0 {
		t.Fatalf("expected count 0, got %d", got)
	}
}
