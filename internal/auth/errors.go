package auth

import (
	"errors"

	"menuapi/internal/auth/introspection"
)

// Failure reasons. Callers match them with errors.Is; they are logged and
// never written to a response.
var (
	ErrIntrospectionUnreachable = introspection.ErrUnreachable
	ErrTokenInactive            = errors.New("token is not active")
	ErrIssuerMismatch           = errors.New("issuer mismatch")
	ErrAudienceMismatch         = errors.New("audience mismatch")
	ErrMalformedToken           = errors.New("malformed token")
	ErrTokenExpired             = errors.New("token expired")
	ErrTokenNotYetValid         = errors.New("token not yet valid")
)
