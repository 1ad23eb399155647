package domain

import "testing"

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusAuthenticated, true},
		{StatusPending, StatusUnauthenticated, true},
		{StatusPending, StatusErrorBackoff, true},
		{StatusUnauthenticated, StatusPending, true},
		{StatusUnauthenticated, StatusAuthenticated, false},
		{StatusAuthenticated, StatusUnauthenticated, true},
		{StatusAuthenticated, StatusAuthenticated, true},
		{StatusAuthenticated, StatusErrorBackoff, false},
		{StatusErrorBackoff, StatusPending, true},
		{StatusErrorBackoff, StatusUnauthenticated, true},
		{StatusErrorBackoff, StatusAuthenticated, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.ok {
			t.Errorf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.ok, got)
		}
	}
}

func TestSessionValidate(t *testing.T) {
	user := &User{ID: "u1", Username: "sulbing", Role: RoleUser}

	valid := []Session{
		{Status: StatusPending},
		{Status: StatusUnauthenticated, LastError: "whatever"},
		{Status: StatusAuthenticated, Token: "tok", User: user},
		{Status: StatusErrorBackoff, LastError: "backend down"},
	}
	for _, s := range valid {
		if err := s.Validate(); err != nil {
			t.Errorf("expected valid session %+v, got %v", s, err)
		}
	}

	invalid := []Session{
		{Status: StatusAuthenticated},
		{Status: StatusAuthenticated, Token: "tok"},
		{Status: StatusAuthenticated, User: user},
		{Status: StatusUnauthenticated, Token: "tok"},
		{Status: StatusPending, User: user},
		{Status: StatusErrorBackoff, Token: "tok", User: user},
	}
	for _, s := range invalid {
		if err := s.Validate(); err == nil {
			t.Errorf("expected invalid session %+v to fail validation", s)
		}
	}
}

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"user", RoleUser, true},
		{"USER", RoleUser, true},
		{" Admin ", RoleAdmin, true},
		{"admin", RoleAdmin, true},
		{"manager", RoleUnknown, false},
		{"", RoleUnknown, false},
	}
	for _, tc := range cases {
		got, ok := ParseRole(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseRole(%q) = (%v, %v), expected (%v, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestHomeRouteFor(t *testing.T) {
	if got := HomeRouteFor(RoleAdmin); got != RouteAdmin {
		t.Errorf("admin home: expected %s, got %s", RouteAdmin, got)
	}
	if got := HomeRouteFor(RoleUser); got != RouteOrder {
		t.Errorf("user home: expected %s, got %s", RouteOrder, got)
	}
	if got := HomeRouteFor(RoleUnknown); got != RouteLanding {
		t.Errorf("unknown home: expected %s, got %s", RouteLanding, got)
	}
}

func TestIsPublicRoute(t *testing.T) {
	for _, p := range []string{RouteLanding, RouteLogin, RouteRegister} {
		if !IsPublicRoute(p) {
			t.Errorf("expected %s to be public", p)
		}
	}
	for _, p := range []string{RouteAdmin, RouteOrder, RouteCart, "/admin/orders"} {
		if IsPublicRoute(p) {
			t.Errorf("expected %s to be protected", p)
		}
	}
}

func TestCartItemCount(t *testing.T) {
	withTotal := CartSummary{TotalItems: 7, Items: []CartItem{{Quantity: 1}}}
	if got := withTotal.ItemCount(); got != 7 {
		t.Errorf("expected authoritative total 7, got %d", got)
	}

	derived := CartSummary{Items: []CartItem{{Quantity: 2}, {Quantity: 3}}}
	if got := derived.ItemCount(); got != 5 {
		t.Errorf("expected derived count 5, got %d", got)
	}

	if got := (CartSummary{}).ItemCount(); got != 0 {
		t.Errorf("expected empty cart count 0, got %d", got)
	}
}
