package catalogcache

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// loadDuration tracks the time taken per catalog load.
	loadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_load_duration_seconds",
		Help:    "Time taken to load the catalog by source",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30},
	}, []string{"source"})

	// loadErrors counts failed catalog loads.
	loadErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_load_errors_total",
		Help: "Total number of failed catalog loads by reason",
	}, []string{"reason"}) // reason: loader, breaker_open

	// catalogItems tracks the number of items in the current snapshot.
	catalogItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_items",
		Help: "Number of items in the current catalog snapshot",
	})

	// catalogAge tracks the age of the current snapshot.
	catalogAge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_age_seconds",
		Help: "Age of the current catalog snapshot in seconds",
	})

	// staleServes counts reads served from a stale snapshot.
	staleServes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_stale_serves_total",
		Help: "Total number of reads served from a stale catalog snapshot",
	})
)

// MetricsRecorder provides methods to record catalog cache metrics.
type MetricsRecorder struct{}

// NewMetricsRecorder creates a new metrics recorder.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{}
}

// RecordLoad records a successful load.
func (m *MetricsRecorder) RecordLoad(source string, duration time.Duration, items int) {
	loadDuration.WithLabelValues(source).Observe(duration.Seconds())
	catalogItems.Set(float64(items))
	catalogAge.Set(0)
}

// RecordLoadError records a failed load.
func (m *MetricsRecorder) RecordLoadError(reason string) {
	loadErrors.WithLabelValues(reason).Inc()
}

// RecordAge records the current snapshot age.
func (m *MetricsRecorder) RecordAge(age time.Duration) {
	catalogAge.Set(age.Seconds())
}

// RecordStaleServe records a read from a stale snapshot.
func (m *MetricsRecorder) RecordStaleServe() {
	staleServes.Inc()
}
