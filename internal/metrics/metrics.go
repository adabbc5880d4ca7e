// Package metrics provides the centralized Prometheus metrics registry for the oracle.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nba_oracle"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	GamesIngestedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "games_ingested_total",
		Help:      "Game rows processed by ingestion, by outcome",
	}, []string{"outcome"})
	RowsRatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rows_rated_total",
		Help:      "Game rows annotated with a pre-game rating",
	})
	ExamplesEmittedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "examples_emitted_total",
		Help:      "Training examples emitted by the feature pipeline",
	})
	RowsDroppedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rows_dropped_total",
		Help:      "Game rows dropped by the feature pipeline, by reason",
	}, []string{"reason"})
	IntegrityErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "integrity_errors_total",
		Help:      "Data integrity failures, by stage",
	}, []string{"stage"})
)

// Gauge metrics
var (
	TeamsTracked = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "teams_tracked",
		Help:      "Teams with a rating after the last pipeline run",
	})
	LastPipelineRun = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_pipeline_run_timestamp_seconds",
		Help:      "Unix time of the last successful pipeline run",
	})
)

// Histogram metrics
var (
	PipelineDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "pipeline_duration_seconds",
		Help:      "Duration of pipeline stages in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	}, []string{"stage"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(GamesIngestedTotal)
		registry.MustRegister(RowsRatedTotal)
		registry.MustRegister(ExamplesEmittedTotal)
		registry.MustRegister(RowsDroppedTotal)
		registry.MustRegister(IntegrityErrorsTotal)

		registry.MustRegister(TeamsTracked)
		registry.MustRegister(LastPipelineRun)

		registry.MustRegister(PipelineDuration)

		registry.MustRegister(FixturesPredictedTotal)
		registry.MustRegister(HomeWinProbability)
		registry.MustRegister(StreamSubscribers)

		registry.MustRegister(BacktestRunsTotal)
		registry.MustRegister(BacktestDuration)
		registry.MustRegister(BacktestScore)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler. Collectors registered on the default
// registry (predictor client metrics, Go runtime) are served alongside ours.
func Handler() http.Handler {
	return promhttp.HandlerFor(prometheus.Gatherers{GetRegistry(), prometheus.DefaultGatherer}, promhttp.HandlerOpts{})
}

// RecordIngestion records the outcome counts of one ingestion run.
func RecordIngestion(inserted, updated, duplicates, invalid int) {
	GamesIngestedTotal.WithLabelValues("inserted").Add(float64(inserted))
	GamesIngestedTotal.WithLabelValues("updated").Add(float64(updated))
	GamesIngestedTotal.WithLabelValues("duplicate").Add(float64(duplicates))
	GamesIngestedTotal.WithLabelValues("invalid").Add(float64(invalid))
}

// RecordRatingRun records a completed rating pass.
func RecordRatingRun(rows, teams int, durationSeconds float64) {
	RowsRatedTotal.Add(float64(rows))
	TeamsTracked.Set(float64(teams))
	PipelineDuration.WithLabelValues("rating").Observe(durationSeconds)
}

// RecordFeatureRun records a completed feature pass.
func RecordFeatureRun(examples int, dropped map[string]int, durationSeconds float64) {
	ExamplesEmittedTotal.Add(float64(examples))
	for reason, n := range dropped {
		RowsDroppedTotal.WithLabelValues(reason).Add(float64(n))
	}
	PipelineDuration.WithLabelValues("features").Observe(durationSeconds)
}

// RecordIntegrityError records a data integrity failure at a pipeline stage.
func RecordIntegrityError(stage string) {
	IntegrityErrorsTotal.WithLabelValues(stage).Inc()
}

// MarkPipelineRun stamps the time of a successful pipeline run.
func MarkPipelineRun() {
	LastPipelineRun.SetToCurrentTime()
}
