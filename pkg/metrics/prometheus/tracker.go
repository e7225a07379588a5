// Package prometheus contains the Prometheus-backed implementations of the
// metrics interfaces.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/peerdex/peerdex/pkg/metrics"
)

// trackerMetrics is the Prometheus implementation for tracker metrics.
type trackerMetrics struct {
	rpcTotal     *prometheus.CounterVec
	rpcDuration  *prometheus.HistogramVec
	liveSessions prometheus.Gauge
	evictions    prometheus.Counter
	catalogSize  prometheus.Gauge
}

// NewTrackerMetrics creates a new Prometheus-backed tracker metrics
// instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewTrackerMetrics() *trackerMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &trackerMetrics{
		rpcTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "peerdex_rpc_requests_total",
				Help: "Total number of tracker operations by operation and outcome tag",
			},
			[]string{"operation", "tag"},
		),
		rpcDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "peerdex_rpc_duration_seconds",
				Help:    "Tracker operation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		liveSessions: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "peerdex_live_sessions",
				Help: "Number of sessions currently held in the session table",
			},
		),
		evictions: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "peerdex_sessions_evicted_total",
				Help: "Total number of sessions evicted by the idle reaper",
			},
		),
		catalogSize: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "peerdex_catalog_files",
				Help: "Number of files currently registered in the catalog",
			},
		),
	}
}

// RecordRPC records a completed tracker operation.
func (m *trackerMetrics) RecordRPC(operation string, tag string, duration time.Duration) {
	if m == nil {
		return
	}
	m.rpcTotal.WithLabelValues(operation, tag).Inc()
	m.rpcDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetLiveSessions updates the live session gauge.
func (m *trackerMetrics) SetLiveSessions(count int) {
	if m == nil {
		return
	}
	m.liveSessions.Set(float64(count))
}

// RecordEvictions counts sessions removed by the idle reaper.
func (m *trackerMetrics) RecordEvictions(count int) {
	if m == nil {
		return
	}
	m.evictions.Add(float64(count))
}

// RecordCatalogSize updates the registered file gauge.
func (m *trackerMetrics) RecordCatalogSize(count int64) {
	if m == nil {
		return
	}
	m.catalogSize.Set(float64(count))
}
