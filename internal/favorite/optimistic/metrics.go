package optimistic

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records toggle outcomes. A nil *Metrics records nothing.
type Metrics struct {
	toggles  *prometheus.CounterVec
	duration prometheus.Histogram
	pending  prometheus.GaugeFunc

	mu    sync.Mutex
	store *Store
}

// NewMetrics registers the coordinator's collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		toggles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "favorite_toggles_total",
				Help: "Favorite toggles by final state",
			},
			[]string{"state"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "favorite_toggle_duration_seconds",
				Help:    "Time from toggle request to settlement",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	m.pending = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "favorite_overrides_pending",
			Help: "Optimistic overrides currently held",
		},
		m.pendingOverrides,
	)

	reg.MustRegister(m.toggles, m.duration, m.pending)
	return m
}

// observe points the pending gauge at s. The gauge is read from the store
// at collection time.
func (m *Metrics) observe(s *Store) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.store = s
	m.mu.Unlock()
}

func (m *Metrics) pendingOverrides() float64 {
	m.mu.Lock()
	s := m.store
	m.mu.Unlock()
	if s == nil {
		return 0
	}
	return float64(s.Len())
}

func (m *Metrics) settled(state State, started time.Time) {
	if m == nil {
		return
	}
	m.toggles.WithLabelValues(string(state)).Inc()
	m.duration.Observe(time.Since(started).Seconds())
}
