package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bingsoohouse/storefront-client/internal/core/domain"
	"github.com/bingsoohouse/storefront-client/internal/core/ports"
	"github.com/bingsoohouse/storefront-client/internal/metrics"
)

// CartSynchronizer keeps the cart badge count consistent with the
// server-side cart. It refreshes whenever the session becomes authenticated
// as a storefront user and after every cart mutation, and resets to zero on
// sign-out. Fetch failures degrade to zero instead of surfacing; stale
// fetches are discarded by a generation guard (last current fetch wins).
type CartSynchronizer struct {
	api     ports.CartAPI
	session ports.SessionService
	log     zerolog.Logger

	mu    sync.Mutex
	count int
	gen   uint64
}

// NewCartSynchronizer wires a CartSynchronizer to the session service and
// subscribes it to session transitions.
func NewCartSynchronizer(api ports.CartAPI, session ports.SessionService, log zerolog.Logger) *CartSynchronizer {
	c := &CartSynchronizer{api: api, session: session, log: log}
	session.Subscribe(c.onSession)
	return c
}

var _ ports.CartService = (*CartSynchronizer)(nil)

// Count returns the current badge value.
func (c *CartSynchronizer) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Refresh re-fetches the cart summary and republishes the count.
func (c *CartSynchronizer) Refresh(ctx context.Context) {
	sess := c.session.Current()
	if !sess.Authenticated() || sess.User == nil || sess.User.Role != domain.RoleUser {
		c.publish(c.nextGen(), 0)
		metrics.CartRefreshTotal.WithLabelValues("skipped").Inc()
		return
	}

	g := c.nextGen()
	summary, err := c.api.Summary(ctx, sess.Token)
	if err != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			c.session.Expire(ctx, "")
		}
		// Non-critical affordance: degrade to zero rather than surfacing.
		c.log.Warn().Err(err).Msg("cart summary fetch failed")
		c.publish(g, 0)
		metrics.CartRefreshTotal.WithLabelValues("error").Inc()
		return
	}
	if c.publish(g, summary.ItemCount()) {
		metrics.CartRefreshTotal.WithLabelValues("ok").Inc()
	} else {
		metrics.CartRefreshTotal.WithLabelValues("stale").Inc()
	}
}

// AddItem adds an item to the server-side cart and refreshes the count.
// Mutation errors are surfaced, unlike refresh errors.
func (c *CartSynchronizer) AddItem(ctx context.Context, item domain.CartItem) error {
	return c.mutate(ctx, func(token string) error {
		return c.api.AddItem(ctx, token, item)
	})
}

// UpdateQuantity changes an item's quantity and refreshes the count.
func (c *CartSynchronizer) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	return c.mutate(ctx, func(token string) error {
		return c.api.UpdateQuantity(ctx, token, itemID, quantity)
	})
}

// RemoveItem removes an item and refreshes the count.
func (c *CartSynchronizer) RemoveItem(ctx context.Context, itemID string) error {
	return c.mutate(ctx, func(token string) error {
		return c.api.RemoveItem(ctx, token, itemID)
	})
}

func (c *CartSynchronizer) mutate(ctx context.Context, op func(token string) error) error {
	sess := c.session.Current()
	if !sess.Authenticated() {
		return domain.ErrSessionExpired
	}
	if err := op(sess.Token); err != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			c.session.Expire(ctx, "")
		}
		return err
	}
	c.Refresh(ctx)
	return nil
}

// onSession reacts to session transitions: a user signing in triggers a
// refresh, anything else zeroes the badge.
func (c *CartSynchronizer) onSession(sess domain.Session) {
	if sess.Authenticated() && sess.User != nil && sess.User.Role == domain.RoleUser {
		c.Refresh(context.Background())
		return
	}
	c.publish(c.nextGen(), 0)
}

func (c *CartSynchronizer) nextGen() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	return c.gen
}

// publish sets the count if g is still the current fetch generation.
func (c *CartSynchronizer) publish(g uint64, count int) bool {
	c.mu.Lock()
	if g != c.gen {
		c.mu.Unlock()
		return false
	}
	c.count = count
	c.mu.Unlock()
	metrics.CartItemCount.Set(float64(count))
	return true
}
