// Package requesttime pins a single "now" to each request so token lifetime
// checks and logs agree on the time.
package requesttime

import (
	"net/http"
	"time"

	"menuapi/pkg/requestcontext"
)

// Middleware stamps the context with the arrival time. Readers use
// requestcontext.Now.
func Middleware(next http.Handler) http.Handler {
	return WithClock(time.Now)(next)
}

// WithClock is Middleware with an injectable clock.
func WithClock(now func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(requestcontext.WithTime(r.Context(), now())))
		})
	}
}
