package auth

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"menuapi/internal/auth/introspection"
)

// authority is a fake introspection endpoint.
type authority struct {
	srv   *httptest.Server
	calls atomic.Int32
}

func newAuthority(t *testing.T, respond func(token string) (int, string)) *authority {
	t.Helper()
	a := &authority{}
	a.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.calls.Add(1)
		require.NoError(t, r.ParseForm())
		status, body := respond(r.PostForm.Get("token"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(a.srv.Close)
	return a
}

func (a *authority) verifier(logger *slog.Logger) *Verifier {
	client := introspection.NewClient(a.srv.URL+"/oauth/introspect", introspection.NewHTTPClient(time.Second), logger, nil)
	return NewVerifier(client, testIssuer, testAudience)
}

func activeResponse(token string) (int, string) {
	return http.StatusOK, `{"active":true,"sub":"u1","username":"Alice","scope":"read write","iss":"DrOcupacional.Identity","aud":"ui-app"}`
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func withBearer(r *http.Request, token string) *http.Request {
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}
