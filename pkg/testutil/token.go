package testutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// TokenSigningKey signs test tokens. The server never checks signatures, so
// any key works.
const TokenSigningKey = "test-signing-key"

// SignToken builds an HS256 compact JWT carrying claims.
func SignToken(t testing.TB, claims map[string]any) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims(claims)).SignedString([]byte(TokenSigningKey))
	require.NoError(t, err, "failed to sign test token")
	return signed
}

// TokenExpiringIn returns a token for sub that expires d from now. A negative d
// yields an already expired token.
func TokenExpiringIn(t testing.TB, sub string, d time.Duration) string {
	t.Helper()
	now := time.Now()
	return SignToken(t, map[string]any{
		"sub": sub,
		"iat": now.Unix(),
		"exp": now.Add(d).Unix(),
	})
}
