package auth

import (
	"context"

	"menuapi/internal/auth/introspection"
	"menuapi/pkg/domain"
)

// Introspector asks the authorization server whether a token is active.
type Introspector interface {
	Introspect(ctx context.Context, token string) (*introspection.Result, error)
}

// ClaimSource selects where principal claims come from.
type ClaimSource int

const (
	// ClaimsFromToken uses the token payload only.
	ClaimsFromToken ClaimSource = iota
	// ClaimsMerged fills gaps in the payload from the introspection result.
	ClaimsMerged
)

// Verifier is the single introspect-and-build-principal path shared by the
// pre-pipeline middleware and the authentication schemes.
type Verifier struct {
	introspector Introspector
	issuer       string
	audience     string
}

func NewVerifier(introspector Introspector, issuer, audience string) *Verifier {
	return &Verifier{
		introspector: introspector,
		issuer:       issuer,
		audience:     audience,
	}
}

// Confirm introspects token and accepts it only if it is active and its
// issuer and audience match.
func (v *Verifier) Confirm(ctx context.Context, token string) (*introspection.Result, error) {
	result, err := v.introspector.Introspect(ctx, token)
	if err != nil {
		return nil, err
	}
	if result == nil || !result.Active {
		return nil, ErrTokenInactive
	}
	if err := ValidateIssuerAndAudience(result, v.issuer, v.audience); err != nil {
		return nil, err
	}
	return result, nil
}

// Verify confirms token and builds its principal.
func (v *Verifier) Verify(ctx context.Context, token string, source ClaimSource) (*domain.Principal, error) {
	result, err := v.Confirm(ctx, token)
	if err != nil {
		return nil, err
	}
	if source == ClaimsFromToken {
		return ExtractPrincipal(token, nil)
	}
	return ExtractPrincipal(token, result)
}
