// Package metrics provides Prometheus instrumentation for pbxforge.
//
// Metrics cover the resolution hot path and batch generation:
//
//	pbxforge_resolutions_total{status,distribution}   resolution outcomes
//	pbxforge_resolution_duration_seconds{distribution} resolution latency
//	pbxforge_batch_items                               items in current batch
//	pbxforge_layer_loads_total{layer,status}           layer file lookups
//
// Collectors are registered once via promauto and are safe for concurrent
// use from batch workers.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var (
	// ResolutionsTotal counts resolution attempts by outcome.
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pbxforge_resolutions_total",
			Help: "Total configuration resolutions by status and distribution",
		},
		[]string{"status", "distribution"},
	)

	// ResolutionDuration tracks resolution latency per distribution.
	ResolutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pbxforge_resolution_duration_seconds",
			Help:    "Configuration resolution latency",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
		},
		[]string{"distribution"},
	)

	// BatchItems reports the size of the batch currently being generated.
	BatchItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pbxforge_batch_items",
			Help: "Number of (version, distribution) pairs in the current batch",
		},
	)

	// LayerLoads counts layer file lookups by layer kind and outcome.
	LayerLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pbxforge_layer_loads_total",
			Help: "Layer file lookups by layer kind and status",
		},
		[]string{"layer", "status"},
	)
)

// Timer measures a single operation's duration.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveResolution stops the timer and records the duration for a
// distribution.
func (t *Timer) ObserveResolution(distribution string) time.Duration {
	elapsed := time.Since(t.start)
	ResolutionDuration.WithLabelValues(distribution).Observe(elapsed.Seconds())
	return elapsed
}
