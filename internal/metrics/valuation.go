package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bikeval"

// Valuation Prometheus metrics.
var (
	PredictionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_requests_total",
			Help:      "Total number of predictor calls",
		},
		[]string{"predictor", "status"},
	)

	PredictionRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_request_duration_seconds",
			Help:      "Predictor call duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"predictor"},
	)

	PredictionRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_rows_total",
			Help:      "Total feature rows sent to the predictor",
		},
		[]string{"predictor"},
	)

	PredictionCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_cache_total",
			Help:      "Prediction cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	CatalogListings = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_listings",
			Help:      "Listings held by the loaded catalog",
		},
	)

	ComparablesReturned = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "comparables_returned",
			Help:      "Number of comparable listings returned per valuation",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 10, 20},
		},
		[]string{"profile"},
	)

	NarratorRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "narrator_requests_total",
			Help:      "Valuation summary requests by outcome",
		},
		[]string{"status"},
	)
)

var registerOnce sync.Once

// RegisterValuationMetrics registers the valuation metrics with the default
// registry. Safe to call more than once.
func RegisterValuationMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			PredictionRequestsTotal,
			PredictionRequestDuration,
			PredictionRowsTotal,
			PredictionCacheTotal,
			CatalogListings,
			ComparablesReturned,
			NarratorRequestsTotal,
		)
	})
}
