package mockapi

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// mockSigningKey signs mock tokens. The client never verifies signatures
// (that is the real server's job), but issuing proper JWTs lets the client's
// expiry peek work against the mock exactly as in production.
var mockSigningKey = []byte("mockapi-local-secret")

func newSignedToken(subject string, expiresAt time.Time) string {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(mockSigningKey)
	if err != nil {
		// Signing a registered-claims token with a static key cannot fail.
		panic(err)
	}
	return signed
}
