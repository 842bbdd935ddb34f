package auth

import (
	"log/slog"
	"net/http"

	"menuapi/internal/auth/metrics"
	"menuapi/pkg/requestcontext"
)

// Authenticate runs scheme for every request and records the result in the
// request context. It never writes a response; RequireAuth decides whether an
// unauthenticated request may proceed.
func Authenticate(scheme Scheme, logger *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := scheme.Authenticate(r)
			m.IncrementSchemeOutcome(scheme.Name(), res.Outcome.String())

			ctx := r.Context()
			switch res.Outcome {
			case OutcomeSuccess:
				ctx = requestcontext.WithPrincipal(ctx, res.Principal)
			case OutcomeFail:
				logger.WarnContext(ctx, "authentication failed",
					"request_id", requestcontext.RequestID(ctx),
					"scheme", scheme.Name(),
					"reason", res.Err.Error(),
				)
				ctx = requestcontext.WithAuthFailure(ctx, res.Err)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
