// Package httptransport assembles the HTTP surface: the shared middleware
// chain, the authentication deployment selected by configuration, and the
// public and protected routes.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"menuapi/internal/auth"
	authmetrics "menuapi/internal/auth/metrics"
	"menuapi/internal/platform/config"
	"menuapi/internal/platform/metrics"
	authmw "menuapi/pkg/platform/middleware/auth"
	"menuapi/pkg/platform/middleware/metadata"
	request "menuapi/pkg/platform/middleware/request"
	"menuapi/pkg/platform/middleware/requesttime"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck pings one backing dependency.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// APIRoutes registers handlers under the protected /api group.
type APIRoutes interface {
	Register(r chi.Router)
}

// Deps carries everything the router needs. Gatherer may be nil to disable
// the /metrics endpoint.
type Deps struct {
	Config      config.Config
	Logger      *slog.Logger
	Verifier    *auth.Verifier
	AuthMetrics *authmetrics.Metrics
	HTTPMetrics *metrics.Metrics
	Gatherer    prometheus.Gatherer
	Health      []HealthCheck
	APIs        []APIRoutes
}

// NewRouter builds the chi router. Authentication middleware runs for every
// route so public endpoints still see a principal when one was presented;
// only the /api group requires it.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(request.Recovery(d.Logger))
	r.Use(request.Logger(d.Logger))
	r.Use(metrics.LatencyMiddleware(d.HTTPMetrics))
	r.Use(corsHandler(d.Config))
	for _, mw := range AuthMiddleware(d.Config, d.Verifier, d.Logger, d.AuthMetrics) {
		r.Use(mw)
	}

	r.Get("/healthz", healthHandler(d.Health, d.Logger))
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(authmw.RequireAuth(d.Logger))
		api.Get("/me", handleMe)
		for _, routes := range d.APIs {
			routes.Register(api)
		}
	})
	return r
}

// AuthMiddleware returns the authentication chain for the configured mode.
// The jwt deployment introspects every bearer request up front and lets the
// arbiter skip local validation for requests it already authenticated. The
// introspect deployment authenticates with introspection alone.
func AuthMiddleware(cfg config.Config, verifier *auth.Verifier, logger *slog.Logger, m *authmetrics.Metrics) []func(http.Handler) http.Handler {
	if cfg.Server.AuthMode == config.AuthModeIntrospect {
		return []func(http.Handler) http.Handler{
			auth.Authenticate(auth.NewIntrospectScheme(verifier), logger, m),
		}
	}
	bearer := auth.NewBearerScheme(verifier, cfg.Identity.ClockSkew, logger)
	return []func(http.Handler) http.Handler{
		auth.Introspect(verifier, logger, m),
		auth.Authenticate(auth.NewPolicyScheme(bearer), logger, m),
	}
}

func corsHandler(cfg config.Config) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", request.HeaderRequestID},
		ExposedHeaders: []string{"Location", request.HeaderRequestID},
		MaxAge:         300,
	}
	if cfg.IsDevelopment() {
		opts.AllowedOrigins = []string{"*"}
	} else {
		opts.AllowedOrigins = cfg.CORS.AllowedOrigins
		opts.AllowCredentials = true
	}
	return cors.Handler(opts)
}
