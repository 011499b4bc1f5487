package content

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	lookupFresh = "fresh"
	lookupStale = "stale"
	lookupMiss  = "miss"

	outcomeOK    = "ok"
	outcomeError = "error"
)

// Metrics records cache and backend activity. A nil *Metrics records nothing.
type Metrics struct {
	lookups   *prometheus.CounterVec
	backend   *prometheus.CounterVec
	refreshes *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them when registerer is not nil.
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	metrics := &Metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aexsite",
			Name:      "cache_lookups_total",
			Help:      "Cache reads by cache and result (fresh, stale, miss).",
		}, []string{"cache", "result"}),
		backend: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aexsite",
			Name:      "backend_requests_total",
			Help:      "Document backend calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		refreshes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aexsite",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of cache refreshes.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"cache"}),
	}
	if registerer == nil {
		return metrics, nil
	}
	for _, collector := range []prometheus.Collector{metrics.lookups, metrics.backend, metrics.refreshes} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}
	return metrics, nil
}

func (m *Metrics) observeLookup(cacheName, result string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(cacheName, result).Inc()
}

func (m *Metrics) observeBackend(operation string, err error) {
	if m == nil {
		return
	}
	outcome := outcomeOK
	if err != nil {
		outcome = outcomeError
	}
	m.backend.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) observeRefresh(cacheName string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(cacheName).Observe(elapsed.Seconds())
}
