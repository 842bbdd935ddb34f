package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the menu module.
type Metrics struct {
	MenusWritten *prometheus.CounterVec
	CacheLookups *prometheus.CounterVec
}

// New creates a Metrics instance registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		MenusWritten: f.NewCounterVec(prometheus.CounterOpts{
			Name: "menu_api_menus_written_total",
			Help: "Menu writes by operation",
		}, []string{"op"}), // op: "create", "update", "delete"

		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "menu_api_menu_cache_lookups_total",
			Help: "Menu cache lookups by result",
		}, []string{"result"}), // result: "hit", "miss", "error"
	}
}

// IncrementWrite records a successful menu write.
func (m *Metrics) IncrementWrite(op string) {
	if m != nil {
		m.MenusWritten.WithLabelValues(op).Inc()
	}
}

// IncrementCacheLookup records a cache lookup result.
func (m *Metrics) IncrementCacheLookup(result string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(result).Inc()
	}
}
