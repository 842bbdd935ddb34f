package auth

import (
	"fmt"
	"slices"

	"menuapi/internal/auth/introspection"
	jwttoken "menuapi/internal/jwt_token"
	"menuapi/pkg/domain"
)

// ExtractPrincipal builds a bearer principal from the token payload. The
// signature is not checked; callers must have confirmed the token through
// introspection.
//
// When result is non-nil its identity fills gaps: sub becomes the name
// identifier and username the name, only if the token carries neither. A
// non-empty scope is always appended, even if the token has its own.
func ExtractPrincipal(token string, result *introspection.Result) (*domain.Principal, error) {
	tok, err := jwttoken.DecodeUnverified(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	p := domain.NewPrincipal(domain.AuthenticationTypeBearer, tok.PrincipalClaims())
	if result == nil {
		return p, nil
	}
	if result.Sub != "" && !p.HasClaim(domain.ClaimNameIdentifier) {
		p.AddClaim(domain.ClaimNameIdentifier, result.Sub)
	}
	if result.Username != "" && !p.HasClaim(domain.ClaimName) {
		p.AddClaim(domain.ClaimName, result.Username)
	}
	if result.Scope != "" {
		p.AddClaim(domain.ClaimScope, result.Scope)
	}
	return p, nil
}

// ValidateIssuerAndAudience compares the asserted iss and aud with the
// expected values. An empty value on either side is not asserted and passes.
// Comparison is exact; for an array aud one entry must match.
func ValidateIssuerAndAudience(result *introspection.Result, issuer, audience string) error {
	if result.Iss != "" && issuer != "" && result.Iss != issuer {
		return fmt.Errorf("%w: got %q", ErrIssuerMismatch, result.Iss)
	}
	asserted := slices.DeleteFunc(slices.Clone(result.Aud), func(a string) bool { return a == "" })
	if len(asserted) > 0 && audience != "" && !slices.Contains(asserted, audience) {
		return fmt.Errorf("%w: got %q", ErrAudienceMismatch, asserted)
	}
	return nil
}
