package service

import (
	"context"
	"errors"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/bingsoohouse/storefront-client/internal/core/domain"
	"github.com/bingsoohouse/storefront-client/internal/core/ports"
	"github.com/bingsoohouse/storefront-client/internal/metrics"
)

// User-facing messages for classified failures. Raw backend payloads never
// reach callers.
const (
	msgCredentialRejected = "username or password is incorrect"
	msgSessionExpired     = "your session has expired, please sign in again"
	msgTransient          = "sign-in is temporarily unavailable, please try again"
	msgProviderFailed     = "federated sign-in failed, please try again"
)

// Reconciler produces and maintains the single authoritative session,
// reconciling the persisted token, live federated assertions, and explicit
// login/logout without letting them race. Every pass is stamped with a
// generation; a pass whose generation has been superseded discards its
// result instead of applying it.
type Reconciler struct {
	api     ports.AuthAPI
	store   ports.TokenStore
	idp     ports.IdentityProvider
	nav     ports.Navigator
	expired func(token string) bool // optional local expiry pre-check
	log     zerolog.Logger

	mu        sync.Mutex
	session   domain.Session
	gen       uint64
	listeners []func(domain.Session)
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithTokenInspector installs a local check that reports whether a persisted
// token is already expired, saving a verification round-trip.
func WithTokenInspector(fn func(token string) bool) Option {
	return func(r *Reconciler) { r.expired = fn }
}

// NewReconciler returns a Reconciler in the pending state.
func NewReconciler(
	api ports.AuthAPI,
	store ports.TokenStore,
	idp ports.IdentityProvider,
	nav ports.Navigator,
	log zerolog.Logger,
	opts ...Option,
) *Reconciler {
	r := &Reconciler{
		api:     api,
		store:   store,
		idp:     idp,
		nav:     nav,
		log:     log,
		session: domain.Session{Status: domain.StatusPending},
	}
	for _, opt := range opts {
		opt(r)
	}
	metrics.SetSessionState(string(domain.StatusPending))
	return r
}

var _ ports.SessionService = (*Reconciler)(nil)

// Current returns a copy of the process-wide session.
func (r *Reconciler) Current() domain.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneSession(r.session)
}

// Subscribe registers fn to be invoked after every published transition.
func (r *Reconciler) Subscribe(fn func(domain.Session)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Bootstrap resolves the startup session. A live federated assertion wins
// over the persisted token; with neither the session is unauthenticated.
func (r *Reconciler) Bootstrap(ctx context.Context) domain.Session {
	g, log := r.beginPass("bootstrap")
	r.apply(g, "bootstrap", domain.Session{Status: domain.StatusPending})

	assertion, err := r.idp.AwaitResult(ctx)
	if err != nil {
		// Provider-side failure before any backend session existed: fall
		// through to the persisted token rather than tearing anything down.
		log.Warn().Err(err).Msg("federated redirect result check failed")
	}
	if assertion != nil {
		r.exchange(ctx, g, "bootstrap", log, *assertion, false)
		return r.Current()
	}

	token, cachedUser, err := r.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, ports.ErrNoToken) {
			log.Warn().Err(err).Msg("persisted token load failed")
		}
		r.settleUnauthenticated(ctx, g, "bootstrap", "", false)
		return r.Current()
	}

	if cachedUser != nil {
		log = log.With().Str("cached_username", cachedUser.Username).Logger()
	}

	if r.expired != nil && r.expired(token) {
		log.Info().Msg("persisted token already expired, skipping verification")
		r.settleUnauthenticated(ctx, g, "bootstrap", msgSessionExpired, true)
		return r.Current()
	}

	timer := prometheus.NewTimer(metrics.TokenVerifyDuration)
	user, err := r.api.Me(ctx, token)
	timer.ObserveDuration()

	switch {
	case err == nil:
		r.settleAuthenticated(ctx, g, "bootstrap", log, token, user)
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrSessionExpired):
		log.Info().Err(err).Msg("persisted token rejected")
		r.settleUnauthenticated(ctx, g, "bootstrap", msgSessionExpired, true)
	default:
		// Transient: keep the persisted token so a later retry can succeed,
		// and stay on the current route to avoid redirect loops.
		log.Warn().Err(err).Msg("persisted token verification failed transiently")
		r.apply(g, "bootstrap", domain.Session{Status: domain.StatusErrorBackoff, LastError: msgTransient})
	}
	return r.Current()
}

// Login attempts a credential login. An existing authenticated session is
// never demoted until the new credentials are confirmed valid.
func (r *Reconciler) Login(ctx context.Context, username, password string) (domain.Session, error) {
	g, log := r.beginPass("login")

	prev := r.Current()
	if !prev.Authenticated() {
		r.apply(g, "login", domain.Session{Status: domain.StatusPending})
	}

	res, err := r.api.Login(ctx, username, password)
	if err != nil {
		if prev.Authenticated() {
			// The live session stays untouched on any failure of a
			// speculative re-login.
			log.Info().Err(err).Msg("re-login failed, keeping existing session")
			return prev, err
		}
		if errors.Is(err, domain.ErrInvalidCredentials) {
			r.apply(g, "login", domain.Session{Status: domain.StatusUnauthenticated, LastError: msgCredentialRejected})
			return r.Current(), err
		}
		log.Warn().Err(err).Msg("login failed transiently")
		r.apply(g, "login", domain.Session{Status: domain.StatusErrorBackoff, LastError: msgTransient})
		return r.Current(), err
	}

	r.settleAuthenticated(ctx, g, "login", log, res.Token, res.User)
	return r.Current(), nil
}

// LoginWithAssertion exchanges a federated assertion for a session. A
// non-recoverable backend rejection reverses the provider sign-in so the
// user is not left with a stuck federated session and no backend session.
func (r *Reconciler) LoginWithAssertion(ctx context.Context, a domain.Assertion) (domain.Session, error) {
	g, log := r.beginPass("federated")

	prev := r.Current()
	if !prev.Authenticated() {
		r.apply(g, "federated", domain.Session{Status: domain.StatusPending})
	}

	err := r.exchange(ctx, g, "federated", log, a, prev.Authenticated())
	if err != nil && prev.Authenticated() {
		return prev, err
	}
	return r.Current(), err
}

// Logout clears the session, the persisted token, and the provider-side
// session. It always succeeds locally; remote failures are logged only.
func (r *Reconciler) Logout(ctx context.Context) {
	g, log := r.beginPass("logout")
	r.apply(g, "logout", domain.Session{Status: domain.StatusUnauthenticated})

	if err := r.store.Clear(ctx); err != nil {
		log.Warn().Err(err).Msg("persisted token clear failed")
	}
	if err := r.idp.SignOut(ctx); err != nil {
		log.Warn().Err(err).Msg("provider sign-out failed")
	}
	if r.nav.CurrentPath() != domain.RouteLanding {
		r.nav.Navigate(domain.RouteLanding)
	}
}

// Expire handles a session-expired failure reported from any authenticated
// request. Concurrent reports collapse into a single transition and a
// single navigation.
func (r *Reconciler) Expire(ctx context.Context, message string) {
	r.mu.Lock()
	if r.session.Status != domain.StatusAuthenticated {
		r.mu.Unlock()
		return
	}
	r.gen++
	g := r.gen
	r.mu.Unlock()

	log := r.log.With().
		Str("attempt_id", ulid.Make().String()).
		Str("trigger", "expiry").
		Logger()
	if message == "" {
		message = msgSessionExpired
	}
	log.Info().Msg("session expired mid-flight")
	if !r.apply(g, "expiry", domain.Session{Status: domain.StatusUnauthenticated, LastError: message}) {
		return
	}
	if err := r.store.Clear(ctx); err != nil {
		log.Warn().Err(err).Msg("persisted token clear failed")
	}
	if !domain.IsPublicRoute(r.nav.CurrentPath()) {
		r.nav.Navigate(domain.RouteLanding)
	}
}

// exchange runs the backend exchange for an assertion and settles the
// session. keepOnFailure preserves an existing authenticated session on any
// failure of the new attempt.
func (r *Reconciler) exchange(ctx context.Context, g uint64, trigger string, log zerolog.Logger, a domain.Assertion, keepOnFailure bool) error {
	res, err := r.api.ExchangeAssertion(ctx, a)
	if err == nil {
		r.settleAuthenticated(ctx, g, trigger, log, res.Token, res.User)
		return nil
	}

	if errors.Is(err, domain.ErrInvalidCredentials) || errors.Is(err, domain.ErrSessionExpired) {
		// Non-recoverable rejection: reverse the federated sign-in.
		if soErr := r.idp.SignOut(ctx); soErr != nil {
			log.Warn().Err(soErr).Msg("provider sign-out reversal failed")
		}
		if !keepOnFailure {
			r.apply(g, trigger, domain.Session{Status: domain.StatusUnauthenticated, LastError: msgProviderFailed})
		}
		return err
	}

	log.Warn().Err(err).Msg("assertion exchange failed transiently")
	if !keepOnFailure {
		r.apply(g, trigger, domain.Session{Status: domain.StatusErrorBackoff, LastError: msgTransient})
	}
	return err
}

// settleAuthenticated publishes an authenticated session, persists the
// token, and applies the role-redirect policy.
func (r *Reconciler) settleAuthenticated(ctx context.Context, g uint64, trigger string, log zerolog.Logger, token string, user *domain.User) {
	next := domain.Session{Status: domain.StatusAuthenticated, Token: token, User: user}
	if !r.apply(g, trigger, next) {
		// Superseded: do not touch the store on behalf of a stale response.
		return
	}
	if err := r.store.Save(ctx, token, user); err != nil {
		log.Warn().Err(err).Msg("persisted token save failed")
	}

	// Role redirect fires only from public routes, preserving deep links.
	if domain.IsPublicRoute(r.nav.CurrentPath()) {
		role := domain.RoleUnknown
		if user != nil {
			role = user.Role
		}
		r.nav.Navigate(domain.HomeRouteFor(role))
	}
	log.Info().Str("role", string(userRole(user))).Msg("session established")
}

// settleUnauthenticated publishes an unauthenticated session, optionally
// clearing the store, and leaves protected routes.
func (r *Reconciler) settleUnauthenticated(ctx context.Context, g uint64, trigger, message string, clearStore bool) {
	if !r.apply(g, trigger, domain.Session{Status: domain.StatusUnauthenticated, LastError: message}) {
		return
	}
	if clearStore {
		if err := r.store.Clear(ctx); err != nil {
			r.log.Warn().Err(err).Msg("persisted token clear failed")
		}
	}
	if !domain.IsPublicRoute(r.nav.CurrentPath()) {
		r.nav.Navigate(domain.RouteLanding)
	}
}

// beginPass starts a new reconciliation pass: bumps the generation and
// returns it with an attempt-scoped logger.
func (r *Reconciler) beginPass(trigger string) (uint64, zerolog.Logger) {
	r.mu.Lock()
	r.gen++
	g := r.gen
	r.mu.Unlock()

	log := r.log.With().
		Str("attempt_id", ulid.Make().String()).
		Str("trigger", trigger).
		Logger()
	return g, log
}

// apply publishes next if the pass generation is still current and the
// transition is legal. Returns whether the session was updated.
func (r *Reconciler) apply(g uint64, trigger string, next domain.Session) bool {
	if err := next.Validate(); err != nil {
		r.log.Error().Err(err).Msg("refusing to publish inconsistent session")
		return false
	}

	r.mu.Lock()
	if g != r.gen {
		r.mu.Unlock()
		metrics.ReconcileAttemptsTotal.WithLabelValues(trigger, "stale").Inc()
		r.log.Debug().Str("trigger", trigger).Msg("discarding superseded reconciliation result")
		return false
	}
	if !r.session.Status.CanTransitionTo(next.Status) {
		r.mu.Unlock()
		r.log.Error().
			Err(domain.ErrInvalidTransition).
			Str("from", string(r.session.Status)).
			Str("to", string(next.Status)).
			Msg("refusing session transition")
		return false
	}
	r.session = next
	listeners := make([]func(domain.Session), len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()

	metrics.ReconcileAttemptsTotal.WithLabelValues(trigger, string(next.Status)).Inc()
	metrics.SetSessionState(string(next.Status))

	snapshot := cloneSession(next)
	for _, fn := range listeners {
		fn(snapshot)
	}
	return true
}

func cloneSession(s domain.Session) domain.Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

func userRole(u *domain.User) domain.Role {
	if u == nil {
		return domain.RoleUnknown
	}
	return u.Role
}
