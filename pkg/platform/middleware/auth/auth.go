package auth

import (
	"fmt"
	"log/slog"
	"net/http"

	"menuapi/pkg/requestcontext"
)

// writeUnauthorized writes the generic 401 challenge. invalidToken adds the
// RFC 6750 error attribute when a token was presented but rejected.
func writeUnauthorized(w http.ResponseWriter, invalidToken bool) {
	challenge := "Bearer"
	if invalidToken {
		challenge = `Bearer error="invalid_token"`
	}
	w.Header().Set("WWW-Authenticate", challenge)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, "unauthorized", "authentication required"))
}

// RequireAuth rejects requests that reach it without an authenticated
// principal. It only reads request-scoped state installed by the
// authentication middleware; the failure reason goes to the log, never to the
// client.
func RequireAuth(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if requestcontext.IsAuthenticated(ctx) {
				next.ServeHTTP(w, r)
				return
			}

			failure := requestcontext.AuthFailure(ctx)
			attrs := []any{
				"request_id", requestcontext.RequestID(ctx),
				"path", r.URL.Path,
			}
			if failure != nil {
				attrs = append(attrs, "reason", failure.Error())
			}
			logger.WarnContext(ctx, "unauthorized access", attrs...)
			writeUnauthorized(w, failure != nil)
		})
	}
}
