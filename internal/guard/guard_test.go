package guard

import (
	"testing"

	"github.com/bingsoohouse/storefront-client/internal/core/domain"
)

func authedAs(role domain.Role) domain.Session {
	return domain.Session{
		Status: domain.StatusAuthenticated,
		Token:  "tok-1",
		User:   &domain.User{ID: "u1", Username: "sulbing", Role: role},
	}
}

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name    string
		session domain.Session
		roles   []domain.Role
		want    Verdict
		target  string
	}{
		{
			name:    "pending renders placeholder",
			session: domain.Session{Status: domain.StatusPending},
			roles:   []domain.Role{domain.RoleUser},
			want:    Placeholder,
		},
		{
			name:    "unauthenticated redirects to landing",
			session: domain.Session{Status: domain.StatusUnauthenticated},
			want:    Redirect,
			target:  domain.RouteLanding,
		},
		{
			name:    "error backoff redirects to landing",
			session: domain.Session{Status: domain.StatusErrorBackoff, LastError: "backend down"},
			want:    Redirect,
			target:  domain.RouteLanding,
		},
		{
			name:    "authenticated with no role requirement renders",
			session: authedAs(domain.RoleUser),
			want:    Allow,
		},
		{
			name:    "matching role renders",
			session: authedAs(domain.RoleAdmin),
			roles:   []domain.Role{domain.RoleAdmin},
			want:    Allow,
		},
		{
			name:    "role in multi-role set renders",
			session: authedAs(domain.RoleUser),
			roles:   []domain.Role{domain.RoleAdmin, domain.RoleUser},
			want:    Allow,
		},
		{
			name:    "mismatched role redirects",
			session: authedAs(domain.RoleUser),
			roles:   []domain.Role{domain.RoleAdmin},
			want:    Redirect,
			target:  domain.RouteLanding,
		},
		{
			name:    "unknown role never passes a role requirement",
			session: authedAs(domain.RoleUnknown),
			roles:   []domain.Role{domain.RoleAdmin, domain.RoleUser},
			want:    Redirect,
			target:  domain.RouteLanding,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(tc.session, tc.roles...)
			if got.Verdict != tc.want {
				t.Fatalf("expected verdict %v, got %v", tc.want, got.Verdict)
			}
			if tc.want == Redirect && got.Target != tc.target {
				t.Fatalf("expected target %q, got %q", tc.target, got.Target)
			}
		})
	}
}
