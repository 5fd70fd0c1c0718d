package session

import (
	"time"

	"github.com/dusk-indust/archconnect/internal/resolution"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the session's Prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	resolutions   *prometheus.CounterVec
	created       *prometheus.CounterVec
	failures      *prometheus.CounterVec
	batchDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "archconnect_session_resolutions_total",
				Help: "Number of dropped connect gestures by recommendation.",
			},
			[]string{"recommendation"},
		),
		created: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "archconnect_session_connections_created_total",
				Help: "Number of connections created by kind.",
			},
			[]string{"kind"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "archconnect_session_repository_failures_total",
				Help: "Number of rejected repository operations by operation.",
			},
			[]string{"operation"},
		),
		batchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "archconnect_session_batch_resolve_duration_seconds",
				Help:    "Time taken to resolve all candidate targets at gesture start.",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.resolutions, m.created, m.failures, m.batchDuration} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) observeResolution(rec resolution.Recommendation) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(string(rec)).Inc()
}

func (m *Metrics) observeCreated(kind resolution.ChoiceKind) {
	if m == nil {
		return
	}
	m.created.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) observeFailure(op string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(op).Inc()
}

func (m *Metrics) observeBatch(d time.Duration) {
	if m == nil {
		return
	}
	m.batchDuration.Observe(d.Seconds())
}
