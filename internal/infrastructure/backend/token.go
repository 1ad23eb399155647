package backend

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpired reports whether a persisted session token is already past
// its expiry claim. The signature is NOT verified here — the backend is the
// authority — this only saves a verification round-trip for tokens that
// cannot possibly be accepted. Tokens without a readable exp claim are
// treated as live and left to the backend to judge.
func TokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
