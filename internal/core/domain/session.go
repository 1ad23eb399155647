package domain

import (
	"errors"
	"strings"
)

// Status represents the lifecycle state of the client session.
type Status string

const (
	StatusPending         Status = "pending"
	StatusUnauthenticated Status = "unauthenticated"
	StatusAuthenticated   Status = "authenticated"
	StatusErrorBackoff    Status = "error"
)

// validTransitions defines the allowed session state machine transitions.
// Logout is the one exception handled separately: it forces
// StatusUnauthenticated from any state.
var validTransitions = map[Status][]Status{
	StatusPending:         {StatusPending, StatusAuthenticated, StatusUnauthenticated, StatusErrorBackoff},
	StatusUnauthenticated: {StatusPending, StatusUnauthenticated},
	StatusAuthenticated:   {StatusAuthenticated, StatusUnauthenticated},
	StatusErrorBackoff:    {StatusPending, StatusUnauthenticated},
}

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrSessionExpired = errors.New("session expired")
var ErrTransient = errors.New("transient backend failure")
var ErrProviderFailed = errors.New("identity provider failure")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidTransition = errors.New("invalid session transition")

// CanTransitionTo reports whether a transition from the current status to
// next is valid.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Role is the closed set of privileges a storefront user can hold.
type Role string

const (
	RoleUser    Role = "user"
	RoleAdmin   Role = "admin"
	RoleUnknown Role = ""
)

// ParseRole canonicalizes a backend role string. Comparison is
// case-insensitive; anything outside the closed set maps to RoleUnknown so
// callers can log it instead of silently falling through.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return RoleUser, true
	case "admin":
		return RoleAdmin, true
	default:
		return RoleUnknown, false
	}
}

// User models the authenticated storefront actor as reported by the backend.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     Role   `json:"role"`
}

// Assertion is ephemeral identity evidence from the federated provider.
// It is consumed exactly once to obtain a backend session.
type Assertion struct {
	ProviderID  string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL,omitempty"`
	RawToken    string `json:"idToken"`
}

// Session is the authoritative record of who is logged in and with what
// privileges. Exactly one exists per running client; only the reconciler
// mutates it.
type Session struct {
	Status    Status `json:"status"`
	User      *User  `json:"user,omitempty"`
	Token     string `json:"token,omitempty"`
	LastError string `json:"last_error,omitempty"`
}

// Validate enforces the core consistency invariant: token and user are set
// if and only if the session is authenticated.
func (s Session) Validate() error {
	authed := s.Status == StatusAuthenticated
	if authed != (s.Token != "") {
		return errors.New("session: token presence inconsistent with status")
	}
	if authed != (s.User != nil) {
		return errors.New("session: user presence inconsistent with status")
	}
	return nil
}

// Authenticated reports whether the session carries a live backend token.
func (s Session) Authenticated() bool {
	return s.Status == StatusAuthenticated
}
