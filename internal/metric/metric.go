// Package metric provides Prometheus counters for namespace scans and
// per-record outcomes, exposed on the HTTP API at /metrics.
package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the engine-level collectors. All methods are nil-safe so the
// engine can run without metrics in tests.
type Metrics struct {
	registry *prometheus.Registry

	scansTotal     *prometheus.CounterVec
	scanDuration   prometheus.Histogram
	recordsLoaded  prometheus.Counter
	recordsSkipped *prometheus.CounterVec
}

// New creates a Metrics instance backed by its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		scansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hookview",
				Subsystem: "engine",
				Name:      "scans_total",
				Help:      "Namespace scans performed, by operation",
			},
			[]string{"op"},
		),
		scanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "hookview",
				Subsystem: "engine",
				Name:      "scan_duration_seconds",
				Help:      "Wall time of a full list-and-load scan",
				Buckets:   prometheus.DefBuckets,
			},
		),
		recordsLoaded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "hookview",
				Subsystem: "engine",
				Name:      "records_loaded_total",
				Help:      "Webhook records successfully loaded from blobs",
			},
		),
		recordsSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hookview",
				Subsystem: "engine",
				Name:      "records_skipped_total",
				Help:      "Blobs skipped during a scan, by reason",
			},
			[]string{"reason"},
		),
	}

	m.registry.MustRegister(m.scansTotal, m.scanDuration, m.recordsLoaded, m.recordsSkipped)
	return m
}

// Handler returns the Prometheus exposition handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveScan records one completed scan for op with its duration.
func (m *Metrics) ObserveScan(op string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.scansTotal.WithLabelValues(op).Inc()
	m.scanDuration.Observe(elapsed.Seconds())
}

// RecordLoaded counts one successfully decoded record.
func (m *Metrics) RecordLoaded() {
	if m == nil {
		return
	}
	m.recordsLoaded.Inc()
}

// RecordSkipped counts one skipped blob. Reason is "parse" or "read".
func (m *Metrics) RecordSkipped(reason string) {
	if m == nil {
		return
	}
	m.recordsSkipped.WithLabelValues(reason).Inc()
}
