package domain

import (
	"slices"
	"strings"
)

// Claim types used by the principal. JWT payload keys that are not mapped onto
// one of these keep their original name.
const (
	ClaimNameIdentifier = "nameidentifier"
	ClaimName           = "name"
	ClaimScope          = "scope"
)

// AuthenticationTypeBearer tags principals established from a bearer token.
const AuthenticationTypeBearer = "Bearer"

// Claim is a single (type, value) assertion about the caller.
type Claim struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Principal is the authenticated identity attached to one request.
// A principal with an empty authentication type is anonymous.
type Principal struct {
	authenticationType string
	claims             []Claim
}

// NewPrincipal builds a principal from claims. The claims slice is copied.
func NewPrincipal(authenticationType string, claims []Claim) *Principal {
	return &Principal{
		authenticationType: authenticationType,
		claims:             slices.Clone(claims),
	}
}

// AuthenticationType returns the scheme label the principal was built with.
func (p *Principal) AuthenticationType() string {
	if p == nil {
		return ""
	}
	return p.authenticationType
}

// IsAuthenticated reports whether the principal carries an authentication type.
func (p *Principal) IsAuthenticated() bool {
	return p != nil && p.authenticationType != ""
}

// Claims returns a copy of all claims in insertion order.
func (p *Principal) Claims() []Claim {
	if p == nil {
		return nil
	}
	return slices.Clone(p.claims)
}

// HasClaim reports whether at least one claim of the given type exists.
func (p *Principal) HasClaim(claimType string) bool {
	_, ok := p.FindFirst(claimType)
	return ok
}

// FindFirst returns the value of the first claim of the given type.
func (p *Principal) FindFirst(claimType string) (string, bool) {
	if p == nil {
		return "", false
	}
	for _, c := range p.claims {
		if c.Type == claimType {
			return c.Value, true
		}
	}
	return "", false
}

// FindAll returns every value for the given claim type.
func (p *Principal) FindAll(claimType string) []string {
	if p == nil {
		return nil
	}
	var values []string
	for _, c := range p.claims {
		if c.Type == claimType {
			values = append(values, c.Value)
		}
	}
	return values
}

// AddClaim appends a claim.
func (p *Principal) AddClaim(claimType, value string) {
	p.claims = append(p.claims, Claim{Type: claimType, Value: value})
}

// NameIdentifier returns the subject of the principal.
func (p *Principal) NameIdentifier() string {
	v, _ := p.FindFirst(ClaimNameIdentifier)
	return v
}

// Name returns the display name of the principal.
func (p *Principal) Name() string {
	v, _ := p.FindFirst(ClaimName)
	return v
}

// Scopes returns the distinct space-separated scopes across all scope claims.
func (p *Principal) Scopes() []string {
	var scopes []string
	for _, v := range p.FindAll(ClaimScope) {
		for _, s := range strings.Fields(v) {
			if !slices.Contains(scopes, s) {
				scopes = append(scopes, s)
			}
		}
	}
	return scopes
}
