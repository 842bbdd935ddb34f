package testutil

import (
	"net/http"

	"menuapi/pkg/domain"
	"menuapi/pkg/requestcontext"
)

// WithPrincipal installs an authenticated bearer principal for subject on the
// request, the way the authentication middleware would. Extra claims are
// appended after the name identifier.
func WithPrincipal(req *http.Request, subject string, claims ...domain.Claim) *http.Request {
	all := append([]domain.Claim{{Type: domain.ClaimNameIdentifier, Value: subject}}, claims...)
	p := domain.NewPrincipal(domain.AuthenticationTypeBearer, all)
	return req.WithContext(requestcontext.WithPrincipal(req.Context(), p))
}

// WithIntrospectedPrincipal installs p and sets the validation marker.
func WithIntrospectedPrincipal(req *http.Request, p *domain.Principal) *http.Request {
	return req.WithContext(requestcontext.MarkIntrospectionValidated(req.Context(), p))
}
