// Package introspection is an RFC 7662 token introspection client.
//
// Every call goes to the authorization server. Results are never cached and
// failed calls are never retried.
package introspection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"menuapi/internal/auth/metrics"
	"menuapi/pkg/requestcontext"
)

const tracerName = "menuapi/internal/auth/introspection"

// maxResponseBytes bounds how much of an introspection response is read.
const maxResponseBytes = 64 << 10

var (
	// ErrUnreachable covers network errors and non-2xx responses.
	ErrUnreachable = errors.New("introspection endpoint unreachable")
	// ErrMalformedResponse is returned when a 2xx body is not a valid result.
	ErrMalformedResponse = errors.New("malformed introspection response")
)

// Error carries the HTTP status (0 for network failures) alongside the kind.
type Error struct {
	Kind       error
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d", e.Kind, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Result is the introspection response. Active false means the token is
// invalid no matter what else is set.
type Result struct {
	Active   bool     `json:"active"`
	Scope    string   `json:"scope,omitempty"`
	ClientID string   `json:"client_id,omitempty"`
	Username string   `json:"username,omitempty"`
	Exp      int64    `json:"exp,omitempty"`
	Iat      int64    `json:"iat,omitempty"`
	Sub      string   `json:"sub,omitempty"`
	Aud      Audience `json:"aud,omitempty"`
	Iss      string   `json:"iss,omitempty"`
}

// Audience accepts both the single-string and the array form of aud.
type Audience []string

func (a *Audience) UnmarshalJSON(b []byte) error {
	var single string
	if err := json.Unmarshal(b, &single); err == nil {
		if single == "" {
			*a = nil
		} else {
			*a = Audience{single}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("aud must be a string or an array of strings: %w", err)
	}
	*a = many
	return nil
}

func (a Audience) MarshalJSON() ([]byte, error) {
	if len(a) == 1 {
		return json.Marshal(a[0])
	}
	return json.Marshal([]string(a))
}

// Client posts tokens to a single introspection endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

// NewHTTPClient returns a pooled HTTP client with a hard per-call deadline.
func NewHTTPClient(timeout time.Duration) *http.Client {
	c := cleanhttp.DefaultPooledClient()
	c.Timeout = timeout
	return c
}

// NewClient creates a client for endpoint. A nil httpClient gets a pooled
// client with a 10 second timeout.
func NewClient(endpoint string, httpClient *http.Client, logger *slog.Logger, m *metrics.Metrics) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient(10 * time.Second)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: httpClient,
		logger:     logger,
		metrics:    m,
		tracer:     otel.Tracer(tracerName),
	}
}

// Introspect asks the authorization server about token. Transport failures
// and non-2xx statuses are logged and returned as ErrUnreachable; an
// undecodable 2xx body is returned as ErrMalformedResponse.
func (c *Client) Introspect(ctx context.Context, token string) (*Result, error) {
	ctx, span := c.tracer.Start(ctx, "introspection.Introspect")
	defer span.End()
	start := time.Now()

	result, err := c.do(ctx, token)

	outcome := "active"
	switch {
	case errors.Is(err, ErrUnreachable):
		outcome = "unreachable"
	case err != nil:
		outcome = "malformed"
	case !result.Active:
		outcome = "inactive"
	}
	c.metrics.ObserveIntrospection(outcome, time.Since(start))
	span.SetAttributes(attribute.String("introspection.outcome", outcome))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return result, nil
}

func (c *Client) do(ctx context.Context, token string) (*Result, error) {
	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &Error{Kind: ErrUnreachable, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "introspection request failed",
			"request_id", requestcontext.RequestID(ctx),
			"endpoint", c.endpoint,
			"error", err,
		)
		return nil, &Error{Kind: ErrUnreachable, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		c.logger.WarnContext(ctx, "introspection endpoint returned non-success status",
			"request_id", requestcontext.RequestID(ctx),
			"endpoint", c.endpoint,
			"status", resp.StatusCode,
		)
		return nil, &Error{Kind: ErrUnreachable, StatusCode: resp.StatusCode}
	}

	var result Result
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&result); err != nil {
		return nil, &Error{Kind: ErrMalformedResponse, Err: err}
	}
	return &result, nil
}
