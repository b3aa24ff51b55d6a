// Package metrics provides Prometheus metrics for wrapper scans.
//
// Metrics are registered once at package load via promauto and shared
// by all wrapper instances; each instance creates its own Collector
// to label observations with its wrapper name.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScansTotal counts scans by wrapper and terminal status
	// (success, empty, error).
	ScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "openfdw_scans_total",
			Help: "Total number of foreign scans",
		},
		[]string{"wrapper", "status"},
	)

	// RowsProduced counts rows buffered by scans.
	RowsProduced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "openfdw_rows_produced_total",
			Help: "Total number of rows produced by foreign scans",
		},
		[]string{"wrapper"},
	)

	// RequestRetries counts transient-failure retries by target host.
	RequestRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "openfdw_request_retries_total",
			Help: "Total number of transient request retries",
		},
		[]string{"host"},
	)

	// RequestLatency observes end-to-end request duration per wrapper.
	RequestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "openfdw_request_duration_seconds",
			Help:    "Foreign source request latency",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"wrapper"},
	)
)

// Scan statuses recorded by Collector.
const (
	StatusSuccess = "success"
	StatusEmpty   = "empty"
	StatusError   = "error"
)

// Collector labels the shared metrics with one wrapper's name. Each
// wrapper instance owns its own collector.
type Collector struct {
	wrapper string
}

// NewCollector creates a collector for the named wrapper.
func NewCollector(wrapper string) *Collector {
	return &Collector{wrapper: wrapper}
}

// ScanFinished records one scan's terminal status and row count.
func (c *Collector) ScanFinished(status string, rows int) {
	ScansTotal.WithLabelValues(c.wrapper, status).Inc()
	if rows > 0 {
		RowsProduced.WithLabelValues(c.wrapper).Add(float64(rows))
	}
}

// ObserveRequest records one request's duration.
func (c *Collector) ObserveRequest(d time.Duration) {
	RequestLatency.WithLabelValues(c.wrapper).Observe(d.Seconds())
}
