// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// This package defines context keys and getter/setter functions for values that are
// typically set by middleware but consumed by services and handlers. By keeping this
// package free of net/http dependencies, services can import only what they need.
//
// Usage in handlers (read values):
//
//	principal := requestcontext.Principal(ctx)
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.MarkIntrospectionValidated(ctx, principal)
//	ctx = requestcontext.WithRequestID(ctx, requestID)
package requestcontext

import (
	"context"
	"time"

	"menuapi/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	authStateKey   struct{}
	authFailureKey struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyAuthState   = authStateKey{}
	ContextKeyAuthFailure = authFailureKey{}
	ContextKeyClientIP    = clientIPKey{}
	ContextKeyUserAgent   = userAgentKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// -----------------------------------------------------------------------------
// Auth state (principal + validation marker)
// -----------------------------------------------------------------------------

// AuthState is the per-request authentication state. Validated is the
// validation marker: true once out-of-band introspection installed Principal.
type AuthState struct {
	Validated bool
	Principal *domain.Principal
}

// AuthStateFrom returns the auth state of the request, zero value if unset.
func AuthStateFrom(ctx context.Context) AuthState {
	if st, ok := ctx.Value(ContextKeyAuthState).(AuthState); ok {
		return st
	}
	return AuthState{}
}

// Principal returns the principal installed on the request, or nil.
func Principal(ctx context.Context) *domain.Principal {
	return AuthStateFrom(ctx).Principal
}

// IsAuthenticated reports whether the request carries an authenticated principal.
func IsAuthenticated(ctx context.Context) bool {
	return Principal(ctx).IsAuthenticated()
}

// IntrospectionValidated reports whether the validation marker is set.
func IntrospectionValidated(ctx context.Context) bool {
	return AuthStateFrom(ctx).Validated
}

// MarkIntrospectionValidated installs the principal and sets the validation
// marker. A request that is already marked keeps its original principal. A nil
// principal is recorded as an empty bearer identity.
func MarkIntrospectionValidated(ctx context.Context, p *domain.Principal) context.Context {
	if IntrospectionValidated(ctx) {
		return ctx
	}
	if p == nil {
		p = domain.NewPrincipal(domain.AuthenticationTypeBearer, nil)
	}
	return context.WithValue(ctx, ContextKeyAuthState, AuthState{Validated: true, Principal: p})
}

// WithPrincipal installs the principal without touching the marker. It is a
// no-op once the marker is set.
func WithPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	st := AuthStateFrom(ctx)
	if st.Validated {
		return ctx
	}
	st.Principal = p
	return context.WithValue(ctx, ContextKeyAuthState, st)
}

// AuthFailure returns the reason recorded by a failed authentication attempt.
func AuthFailure(ctx context.Context) error {
	if err, ok := ctx.Value(ContextKeyAuthFailure).(error); ok {
		return err
	}
	return nil
}

// WithAuthFailure records why authentication failed for this request.
func WithAuthFailure(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, ContextKeyAuthFailure, err)
}

// -----------------------------------------------------------------------------
// Client metadata (IP, User-Agent)
// -----------------------------------------------------------------------------

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(ContextKeyClientIP).(string); ok {
		return ip
	}
	return ""
}

// UserAgent retrieves the User-Agent from the context.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(ContextKeyUserAgent).(string); ok {
		return ua
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent into a context.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyClientIP, clientIP)
	ctx = context.WithValue(ctx, ContextKeyUserAgent, userAgent)
	return ctx
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// -----------------------------------------------------------------------------
// Request time
// -----------------------------------------------------------------------------

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
