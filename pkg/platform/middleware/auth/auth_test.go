package auth

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"menuapi/pkg/domain"
	"menuapi/pkg/requestcontext"
)

func TestRequireAuth(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	called := false
	h := RequireAuth(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("anonymous request gets generic 401", func(t *testing.T) {
		called = false
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/menus", nil))

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
		assert.JSONEq(t, `{"error":"unauthorized","error_description":"authentication required"}`, rec.Body.String())
	})

	t.Run("failure reason is logged but not returned", func(t *testing.T) {
		logs.Reset()
		req := httptest.NewRequest(http.MethodGet, "/api/menus", nil)
		req = req.WithContext(requestcontext.WithAuthFailure(req.Context(), errors.New("audience mismatch: other-app")))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, `Bearer error="invalid_token"`, rec.Header().Get("WWW-Authenticate"))
		assert.NotContains(t, rec.Body.String(), "other-app")
		assert.Contains(t, logs.String(), "audience mismatch")
	})

	t.Run("rejection log carries the request id", func(t *testing.T) {
		logs.Reset()
		ctx := requestcontext.WithRequestID(context.Background(), "req-42")
		req := httptest.NewRequest(http.MethodGet, "/api/menus", nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, logs.String(), "request_id=req-42")
	})

	t.Run("authenticated request passes", func(t *testing.T) {
		called = false
		p := domain.NewPrincipal(domain.AuthenticationTypeBearer, []domain.Claim{{Type: domain.ClaimNameIdentifier, Value: "u1"}})
		req := httptest.NewRequest(http.MethodGet, "/api/menus", nil)
		req = req.WithContext(requestcontext.WithPrincipal(req.Context(), p))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
