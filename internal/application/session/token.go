package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry reads the exp claim from a JWT without verifying its
// signature. Verification is the server's job; the client only uses the
// claim to decide when a proactive refresh is worthwhile. Opaque tokens and
// JWTs without an exp claim yield a zero time.
func TokenExpiry(token string) time.Time {
	parser := jwt.NewParser()

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
