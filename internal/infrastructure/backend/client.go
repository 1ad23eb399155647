// Package backend is the HTTP client for the storefront backend API. Every
// failure leaving this package is classified into the domain error taxonomy;
// raw backend payloads never propagate to callers.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/bingsoohouse/storefront-client/internal/core/domain"
	"github.com/bingsoohouse/storefront-client/internal/core/ports"
)

const defaultTimeout = 15 * time.Second

// Client talks to the storefront backend. It implements both ports.AuthAPI
// and ports.CartAPI.
type Client struct {
	baseURL  string
	http     *http.Client
	validate *validator.Validate
	log      zerolog.Logger
}

// NewClient returns a Client for the backend at baseURL. A default request
// timeout is applied when none is provided.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		validate: validator.New(),
		log:      log,
	}
}

var _ ports.AuthAPI = (*Client)(nil)
var _ ports.CartAPI = (*Client)(nil)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type firebaseLoginRequest struct {
	IDToken     string `json:"idToken" validate:"required"`
	UID         string `json:"uid" validate:"required"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
}

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type userPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *userPayload `json:"user"`
}

type meResponse struct {
	User *userPayload `json:"user"`
}

type cartResponse struct {
	Cart *domain.CartSummary `json:"cart"`
}

// Login exchanges username/password credentials for a session.
func (c *Client) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	req := loginRequest{Username: username, Password: password}
	if err := c.checkPayload(req); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidCredentials, err)
	}

	var res authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", req, &res); err != nil {
		return nil, err
	}
	return c.loginResult(res)
}

// ExchangeAssertion exchanges a federated identity assertion for a session.
func (c *Client) ExchangeAssertion(ctx context.Context, a domain.Assertion) (*ports.LoginResult, error) {
	req := firebaseLoginRequest{
		IDToken:     a.RawToken,
		UID:         a.ProviderID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		PhotoURL:    a.PhotoURL,
	}
	if err := c.checkPayload(req); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidCredentials, err)
	}

	var res authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login/firebase", "", req, &res); err != nil {
		return nil, err
	}
	return c.loginResult(res)
}

// Me verifies a persisted token and returns the user it belongs to.
func (c *Client) Me(ctx context.Context, token string) (*domain.User, error) {
	var res meResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &res); err != nil {
		return nil, err
	}
	if res.User == nil {
		return nil, fmt.Errorf("%w: me response missing user", domain.ErrTransient)
	}
	return c.toDomainUser(*res.User), nil
}

// Register creates a new storefront account.
func (c *Client) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	req := registerRequest{Username: username, Email: email, Password: password}
	if err := c.checkPayload(req); err != nil {
		return nil, err
	}

	var res authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", req, &res); err != nil {
		return nil, err
	}
	if res.User == nil {
		return nil, fmt.Errorf("%w: register response missing user", domain.ErrTransient)
	}
	return c.toDomainUser(*res.User), nil
}

// Summary fetches the logged-in user's cart.
func (c *Client) Summary(ctx context.Context, token string) (*domain.CartSummary, error) {
	var res cartResponse
	if err := c.do(ctx, http.MethodGet, "/cart", token, nil, &res); err != nil {
		return nil, err
	}
	if res.Cart == nil {
		return &domain.CartSummary{}, nil
	}
	return res.Cart, nil
}

// AddItem adds an item to the cart.
func (c *Client) AddItem(ctx context.Context, token string, item domain.CartItem) error {
	return c.do(ctx, http.MethodPost, "/cart/item", token, item, nil)
}

// UpdateQuantity changes a cart line's quantity.
func (c *Client) UpdateQuantity(ctx context.Context, token, itemID string, quantity int) error {
	body := map[string]int{"quantity": quantity}
	return c.do(ctx, http.MethodPut, "/cart/items/"+itemID, token, body, nil)
}

// RemoveItem removes a cart line.
func (c *Client) RemoveItem(ctx context.Context, token, itemID string) error {
	return c.do(ctx, http.MethodDelete, "/cart/items/"+itemID, token, nil, nil)
}

func (c *Client) loginResult(res authResponse) (*ports.LoginResult, error) {
	if res.Token == "" || res.User == nil {
		return nil, fmt.Errorf("%w: login response missing token or user", domain.ErrTransient)
	}
	return &ports.LoginResult{Token: res.Token, User: c.toDomainUser(*res.User)}, nil
}

func (c *Client) toDomainUser(p userPayload) *domain.User {
	role, ok := domain.ParseRole(p.Role)
	if !ok {
		c.log.Warn().Str("role", p.Role).Str("username", p.Username).Msg("unknown role string from backend")
	}
	return &domain.User{ID: p.ID, Username: p.Username, Email: p.Email, Role: role}
}

// do performs a request and decodes the response into out. Non-2xx
// responses and transport failures come back classified.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode request: %s", domain.ErrTransient, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: build request: %s", domain.ErrTransient, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %s", domain.ErrTransient, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode %s response: %s", domain.ErrTransient, path, err)
		}
		return nil
	}

	return c.classify(resp)
}

// classify maps an error response to the domain taxonomy:
//   - 401/403 with a credential-specific message → ErrInvalidCredentials
//   - any other 401/403 → ErrSessionExpired
//   - 409 → ErrUserExists
//   - 5xx, unparsable payloads → ErrTransient
func (c *Client) classify(resp *http.Response) error {
	var env struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(raw, &env)
	msg := env.Message
	if msg == "" {
		msg = env.Error
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		if isCredentialMessage(msg) {
			return fmt.Errorf("%w: %s", domain.ErrInvalidCredentials, msg)
		}
		return fmt.Errorf("%w: %s", domain.ErrSessionExpired, msg)
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%w: %s", domain.ErrUserExists, msg)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		if msg == "" {
			msg = resp.Status
		}
		return fmt.Errorf("request rejected: %s", msg)
	default:
		return fmt.Errorf("%w: %s: %s", domain.ErrTransient, resp.Status, msg)
	}
}

// isCredentialMessage reports whether the backend message identifies a
// credential rejection rather than an expired or missing session.
func isCredentialMessage(msg string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(msg)), "invalid credentials")
}
