package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"menuapi/internal/auth/metrics"
	"menuapi/pkg/domain"
	"menuapi/pkg/requestcontext"
)

// Introspect validates any bearer token before the authentication schemes run.
// On success it installs the token's principal and sets the validation marker.
// It never rejects a request: every failure is logged and the request
// continues unauthenticated.
func Introspect(verifier *Verifier, logger *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				m.IncrementMiddlewareOutcome("no_token")
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			principal, err := verifySafely(ctx, verifier, token)
			if err != nil {
				m.IncrementMiddlewareOutcome(outcomeLabel(err))
				logger.WarnContext(ctx, "token introspection did not authenticate request",
					"request_id", requestcontext.RequestID(ctx),
					"reason", err.Error(),
				)
				next.ServeHTTP(w, r)
				return
			}

			m.IncrementMiddlewareOutcome("validated")
			logger.DebugContext(ctx, "token validated by introspection",
				"request_id", requestcontext.RequestID(ctx),
				"subject", principal.NameIdentifier(),
			)
			next.ServeHTTP(w, r.WithContext(requestcontext.MarkIntrospectionValidated(ctx, principal)))
		})
	}
}

// verifySafely turns a panic inside verification into an error.
func verifySafely(ctx context.Context, verifier *Verifier, token string) (p *domain.Principal, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			p, err = nil, fmt.Errorf("unexpected error during introspection: %v", rec)
		}
	}()
	return verifier.Verify(ctx, token, ClaimsFromToken)
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, ErrIntrospectionUnreachable):
		return "unreachable"
	case errors.Is(err, ErrTokenInactive):
		return "inactive"
	case errors.Is(err, ErrIssuerMismatch):
		return "issuer_mismatch"
	case errors.Is(err, ErrAudienceMismatch):
		return "audience_mismatch"
	case errors.Is(err, ErrMalformedToken):
		return "malformed"
	case errors.Is(err, ErrTokenExpired), errors.Is(err, ErrTokenNotYetValid):
		return "expired"
	default:
		return "error"
	}
}
