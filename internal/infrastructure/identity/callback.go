// Package identity adapts the federated identity provider to a headless
// client: sign-in happens in the system browser against a hosted page, and
// the resulting assertion is delivered back to a loopback callback listener.
package identity

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/bingsoohouse/storefront-client/internal/core/domain"
	"github.com/bingsoohouse/storefront-client/internal/core/ports"
)

// Config captures the loopback listener and provider endpoints.
type Config struct {
	// ListenAddr is the loopback address the callback listener binds to.
	ListenAddr string
	// SignInURL is the hosted page that runs the federated popup and posts
	// the result back to the callback listener.
	SignInURL string
	// RevokeURL, when set, receives a best-effort token revocation on
	// sign-out.
	RevokeURL string
	// OpenBrowser launches the user's browser at the given URL. Left nil,
	// SignIn only logs the URL and waits.
	OpenBrowser func(url string) error
}

// CallbackProvider implements ports.IdentityProvider over a loopback echo
// listener. Each delivered assertion is consumed by exactly one waiter.
type CallbackProvider struct {
	cfg  Config
	e    *echo.Echo
	http *http.Client
	log  zerolog.Logger

	results chan domain.Assertion

	mu           sync.Mutex
	pendingState string
	lastRawToken string
}

// New returns a CallbackProvider. Call Start before using it.
func New(cfg Config, log zerolog.Logger) *CallbackProvider {
	return &CallbackProvider{
		cfg:     cfg,
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     log,
		results: make(chan domain.Assertion, 1),
	}
}

var _ ports.IdentityProvider = (*CallbackProvider)(nil)

type callbackRequest struct {
	State       string `json:"state" query:"state"`
	IDToken     string `json:"idToken"`
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
}

// Start binds the callback listener and serves it until ctx is cancelled.
// The listener also exposes /health and /metrics.
func (p *CallbackProvider) Start(ctx context.Context) error {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("storefront_callback"))

	e.POST("/callback", p.handleCallback)
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echoprometheus.NewHandler())

	p.e = e

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(p.cfg.ListenAddr)
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("callback listener: %w", err)
		}
		return nil
	case <-time.After(100 * time.Millisecond):
		// Listener is up.
		return nil
	}
}

func (p *CallbackProvider) handleCallback(c echo.Context) error {
	var req callbackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if req.IDToken == "" || req.UID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing identity assertion"})
	}

	p.mu.Lock()
	expected := p.pendingState
	p.mu.Unlock()
	if expected != "" && req.State != expected {
		p.log.Warn().Msg("callback state mismatch, dropping assertion")
		return c.JSON(http.StatusForbidden, map[string]string{"error": "state mismatch"})
	}

	assertion := domain.Assertion{
		ProviderID:  req.UID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
		RawToken:    req.IDToken,
	}

	select {
	case p.results <- assertion:
		p.mu.Lock()
		p.lastRawToken = req.IDToken
		p.pendingState = ""
		p.mu.Unlock()
		return c.JSON(http.StatusAccepted, map[string]string{"status": "received"})
	default:
		// A previous sign-in is still unconsumed; never hand the same
		// attempt to two exchanges.
		return c.JSON(http.StatusConflict, map[string]string{"error": "sign-in already pending"})
	}
}

// AwaitResult picks up a sign-in that completed out-of-band. It never
// blocks: with nothing pending it returns (nil, nil).
func (p *CallbackProvider) AwaitResult(ctx context.Context) (*domain.Assertion, error) {
	select {
	case a := <-p.results:
		return &a, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		return nil, nil
	}
}

// SignIn opens the hosted sign-in page and blocks until the callback
// delivers an assertion or ctx is done.
func (p *CallbackProvider) SignIn(ctx context.Context) (*domain.Assertion, error) {
	state := uuid.NewString()
	p.mu.Lock()
	p.pendingState = state
	p.mu.Unlock()

	u, err := url.Parse(p.cfg.SignInURL)
	if err != nil {
		return nil, fmt.Errorf("%w: bad sign-in url: %s", domain.ErrProviderFailed, err)
	}
	q := u.Query()
	q.Set("state", state)
	q.Set("redirect_uri", "http://"+p.cfg.ListenAddr+"/callback")
	u.RawQuery = q.Encode()

	p.log.Info().Str("url", u.String()).Msg("complete the federated sign-in in your browser")
	if p.cfg.OpenBrowser != nil {
		if err := p.cfg.OpenBrowser(u.String()); err != nil {
			p.log.Warn().Err(err).Msg("browser launch failed, open the URL manually")
		}
	}

	select {
	case a := <-p.results:
		return &a, nil
	case <-ctx.Done():
		p.mu.Lock()
		p.pendingState = ""
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: sign-in not completed: %s", domain.ErrProviderFailed, ctx.Err())
	}
}

// SignOut revokes the last delivered provider token. Best effort: with no
// revocation endpoint or no token it is a no-op.
func (p *CallbackProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	token := p.lastRawToken
	p.lastRawToken = ""
	p.mu.Unlock()

	if p.cfg.RevokeURL == "" || token == "" {
		return nil
	}

	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.RevokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("revoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("revoke: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("revoke: %s", resp.Status)
	}
	return nil
}
