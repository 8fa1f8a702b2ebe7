package combo

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// recommendDuration tracks the time taken per recommendation.
	recommendDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "combo_recommend_duration_seconds",
		Help:    "Time taken to produce combination recommendations",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})

	// seedsScanned tracks how many seeds each request enumerated.
	seedsScanned = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "combo_seeds_scanned_count",
		Help:    "Number of generator seeds scanned per request",
		Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000},
	})

	// seedDiscards counts discarded seeds by reason.
	seedDiscards = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "combo_seed_discards_total",
		Help: "Total number of discarded seeds by reason",
	}, []string{"reason"})

	// resultCount tracks the number of combinations returned.
	resultCount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "combo_results_count",
		Help:    "Number of combinations returned per request",
		Buckets: []float64{0, 1, 2, 3, 4, 5},
	})

	// emptyResults counts requests that produced no combination.
	emptyResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "combo_empty_results_total",
		Help: "Total number of requests without any combination by reason",
	}, []string{"reason"})
)

// MetricsRecorder provides methods to record engine metrics.
type MetricsRecorder struct{}

// NewMetricsRecorder creates a new metrics recorder.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{}
}

// RecordRecommendation records a completed recommendation.
func (m *MetricsRecorder) RecordRecommendation(duration time.Duration, res *Result) {
	recommendDuration.Observe(duration.Seconds())
	seedsScanned.Observe(float64(res.SeedsScanned))
	resultCount.Observe(float64(len(res.Combinations)))
	for reason, n := range res.Discarded {
		seedDiscards.WithLabelValues(reason).Add(float64(n))
	}
	if res.Reason != "" {
		emptyResults.WithLabelValues(res.Reason).Inc()
	}
}
