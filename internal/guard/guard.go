// Package guard gates rendering of a route subtree on session state and,
// optionally, role membership. It is a pure function of the session and
// owns no state of its own.
package guard

import (
	"github.com/bingsoohouse/storefront-client/internal/core/domain"
)

// Verdict is the outcome of a guard evaluation.
type Verdict int

const (
	// Allow renders the protected subtree.
	Allow Verdict = iota
	// Placeholder renders a loading placeholder; no navigation.
	Placeholder
	// Redirect navigates away instead of rendering.
	Redirect
)

// Decision carries the verdict and, for Redirect, the target path.
type Decision struct {
	Verdict Verdict
	Target  string
}

// Evaluate decides whether a route requiring allowedRoles may render under
// the given session. An empty allowedRoles set requires only authentication.
func Evaluate(sess domain.Session, allowedRoles ...domain.Role) Decision {
	if sess.Status == domain.StatusPending {
		return Decision{Verdict: Placeholder}
	}
	if !sess.Authenticated() {
		return Decision{Verdict: Redirect, Target: domain.RouteLanding}
	}
	if len(allowedRoles) == 0 {
		return Decision{Verdict: Allow}
	}

	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}
	if sess.User == nil {
		return Decision{Verdict: Redirect, Target: domain.RouteLanding}
	}
	if _, ok := allowed[sess.User.Role]; !ok {
		return Decision{Verdict: Redirect, Target: domain.RouteLanding}
	}
	return Decision{Verdict: Allow}
}
