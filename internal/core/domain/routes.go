package domain

// Storefront route paths the reconciler navigates between.
const (
	RouteLanding  = "/"
	RouteLogin    = "/login"
	RouteRegister = "/register"
	RouteAdmin    = "/admin"
	RouteOrder    = "/order-bingsoo"
	RouteCart     = "/cart"
)

// publicRoutes are the paths a signed-out visitor may sit on. Forced
// navigation (role redirect, expiry redirect) only ever fires from or to
// these, so a refresh on a deep link never bounces the user.
var publicRoutes = map[string]struct{}{
	RouteLanding:  {},
	RouteLogin:    {},
	RouteRegister: {},
}

// IsPublicRoute reports whether path requires no session to view.
func IsPublicRoute(path string) bool {
	_, ok := publicRoutes[path]
	return ok
}

// HomeRouteFor maps a newly authenticated user's role to its default
// landing route.
func HomeRouteFor(role Role) string {
	switch role {
	case RoleAdmin:
		return RouteAdmin
	case RoleUser:
		return RouteOrder
	default:
		return RouteLanding
	}
}
