package introspection

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menuapi/internal/auth/metrics"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *bytes.Buffer, *metrics.Metrics) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	var logs bytes.Buffer
	m := metrics.New(prometheus.NewRegistry())
	c := NewClient(srv.URL+"/oauth/introspect", NewHTTPClient(time.Second), slog.New(slog.NewTextHandler(&logs, nil)), m)
	return c, &logs, m
}

func TestIntrospectSendsFormEncodedToken(t *testing.T) {
	c, _, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/oauth/introspect", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "abc.def.ghi", r.PostForm.Get("token"))
		assert.Len(t, r.PostForm, 1)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"active":true,"sub":"u1","username":"Alice","scope":"read write","client_id":"spa","iss":"DrOcupacional.Identity","aud":"ui-app","exp":1700003600,"iat":1700000000}`))
	})

	res, err := c.Introspect(context.Background(), "abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, &Result{
		Active:   true,
		Scope:    "read write",
		ClientID: "spa",
		Username: "Alice",
		Exp:      1700003600,
		Iat:      1700000000,
		Sub:      "u1",
		Aud:      Audience{"ui-app"},
		Iss:      "DrOcupacional.Identity",
	}, res)
	assert.Equal(t, 1, testutil.CollectAndCount(m.IntrospectionLatency))
}

func TestIntrospectInactive(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"active":false,"sub":"u1"}`))
	})

	res, err := c.Introspect(context.Background(), "t")
	require.NoError(t, err)
	assert.False(t, res.Active)
}

func TestIntrospectMissingActiveIsInactive(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"sub":"u1"}`))
	})

	res, err := c.Introspect(context.Background(), "t")
	require.NoError(t, err)
	assert.False(t, res.Active)
}

func TestIntrospectNonSuccessStatus(t *testing.T) {
	c, logs, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	res, err := c.Introspect(context.Background(), "t")
	assert.Nil(t, res)
	require.ErrorIs(t, err, ErrUnreachable)

	var ierr *Error
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, http.StatusServiceUnavailable, ierr.StatusCode)
	assert.Contains(t, logs.String(), "status=503")
}

func TestIntrospectNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	c := NewClient(endpoint, NewHTTPClient(time.Second), slog.New(slog.DiscardHandler), nil)
	_, err := c.Introspect(context.Background(), "t")
	require.ErrorIs(t, err, ErrUnreachable)
}

func TestIntrospectMalformedBody(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"active":`))
	})

	_, err := c.Introspect(context.Background(), "t")
	require.ErrorIs(t, err, ErrMalformedResponse)
	assert.NotErrorIs(t, err, ErrUnreachable)
}

func TestIntrospectTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c := NewClient(srv.URL, NewHTTPClient(50*time.Millisecond), slog.New(slog.DiscardHandler), nil)
	_, err := c.Introspect(context.Background(), "t")
	require.ErrorIs(t, err, ErrUnreachable)
}

func TestIntrospectCallsEveryTime(t *testing.T) {
	var calls atomic.Int32
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"active":true}`))
	})

	for range 3 {
		_, err := c.Introspect(context.Background(), "same-token")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestAudienceJSON(t *testing.T) {
	var r Result
	require.NoError(t, json.Unmarshal([]byte(`{"aud":["a","b"]}`), &r))
	assert.Equal(t, Audience{"a", "b"}, r.Aud)

	require.NoError(t, json.Unmarshal([]byte(`{"aud":""}`), &r))
	assert.Empty(t, r.Aud)

	assert.Error(t, json.Unmarshal([]byte(`{"aud":42}`), &r))
}
