package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"menuapi/pkg/domain"
	"menuapi/pkg/platform/httputil"
	"menuapi/pkg/requestcontext"
)

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// healthHandler runs every check concurrently and reports 503 when any fails.
func healthHandler(checks []HealthCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		results := make([]error, len(checks))
		var g errgroup.Group
		for i, c := range checks {
			g.Go(func() error {
				results[i] = c.Check(ctx)
				return nil
			})
		}
		_ = g.Wait()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for i, c := range checks {
			if err := results[i]; err != nil {
				logger.WarnContext(ctx, "health check failed",
					"request_id", requestcontext.RequestID(ctx),
					"check", c.Name,
					"error", err,
				)
				resp.Checks[c.Name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[c.Name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}

type meResponse struct {
	AuthenticationType string         `json:"authenticationType"`
	Subject            string         `json:"sub,omitempty"`
	Name               string         `json:"name,omitempty"`
	Scopes             []string       `json:"scopes"`
	Claims             []domain.Claim `json:"claims"`
}

// handleMe returns the caller's principal. RequireAuth guarantees one is set.
func handleMe(w http.ResponseWriter, r *http.Request) {
	p := requestcontext.Principal(r.Context())
	resp := meResponse{
		AuthenticationType: p.AuthenticationType(),
		Subject:            p.NameIdentifier(),
		Name:               p.Name(),
		Scopes:             p.Scopes(),
		Claims:             p.Claims(),
	}
	if resp.Scopes == nil {
		resp.Scopes = []string{}
	}
	if resp.Claims == nil {
		resp.Claims = []domain.Claim{}
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
