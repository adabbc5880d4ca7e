package predictor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PredictorRequestsTotal tracks scored feature vectors
	PredictorRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictor_requests_total",
			Help: "Total number of win probability predictions",
		},
		[]string{"transport", "cache_hit"},
	)

	// PredictorLatency tracks predictor latency
	PredictorLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "predictor_request_latency_seconds",
			Help:    "Predictor request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"transport"},
	)

	// PredictorCacheHitRatio tracks cache hit ratio
	PredictorCacheHitRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "predictor_cache_hit_ratio",
			Help: "Prediction cache hit ratio",
		},
	)

	// PredictorErrorsTotal tracks predictor errors
	PredictorErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictor_errors_total",
			Help: "Total number of predictor errors",
		},
		[]string{"method", "error_type"},
	)
)
