package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for token validation.
type Metrics struct {
	// Introspection call latency by outcome
	IntrospectionLatency *prometheus.HistogramVec

	// Pre-pipeline middleware outcomes
	MiddlewareOutcome *prometheus.CounterVec

	// Scheme outcomes by scheme and result
	SchemeOutcome *prometheus.CounterVec
}

// New creates a Metrics instance registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		IntrospectionLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "menu_api_auth_introspection_duration_seconds",
			Help:    "Duration of token introspection calls by outcome",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"outcome"}), // outcome: "active", "inactive", "unreachable", "malformed"

		MiddlewareOutcome: f.NewCounterVec(prometheus.CounterOpts{
			Name: "menu_api_auth_middleware_outcomes_total",
			Help: "Pre-pipeline introspection middleware outcomes",
		}, []string{"outcome"}),

		SchemeOutcome: f.NewCounterVec(prometheus.CounterOpts{
			Name: "menu_api_auth_scheme_outcomes_total",
			Help: "Authentication scheme outcomes by scheme and result",
		}, []string{"scheme", "result"}),
	}
}

// ObserveIntrospection records the duration of one introspection call.
func (m *Metrics) ObserveIntrospection(outcome string, d time.Duration) {
	if m != nil {
		m.IntrospectionLatency.WithLabelValues(outcome).Observe(d.Seconds())
	}
}

// IncrementMiddlewareOutcome records what the middleware did with a request.
func (m *Metrics) IncrementMiddlewareOutcome(outcome string) {
	if m != nil {
		m.MiddlewareOutcome.WithLabelValues(outcome).Inc()
	}
}

// IncrementSchemeOutcome records a scheme result.
func (m *Metrics) IncrementSchemeOutcome(scheme, result string) {
	if m != nil {
		m.SchemeOutcome.WithLabelValues(scheme, result).Inc()
	}
}
