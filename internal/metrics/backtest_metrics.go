package metrics

import "github.com/prometheus/client_golang/prometheus"

// Backtest counter vectors
var (
	BacktestRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backtest_runs_total",
		Help:      "Total number of backtest runs by method and status",
	}, []string{"method", "status"})
)

// Backtest histograms
var (
	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backtest_duration_seconds",
		Help:      "Duration of backtest runs in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
)

// Backtest gauge vectors
var (
	BacktestScore = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backtest_score",
		Help:      "Scores of the latest backtest run by method and metric",
	}, []string{"method", "metric"})
)

// RecordBacktestRun records a backtest run event.
// method is one of "holdout" or "walk_forward"; status is "success" or "failure".
func RecordBacktestRun(method, status string, durationSeconds float64) {
	BacktestRunsTotal.WithLabelValues(method, status).Inc()
	BacktestDuration.Observe(durationSeconds)
}

// RecordBacktestScores publishes the headline scores of a run.
func RecordBacktestScores(method string, accuracy, brier, logLoss float64) {
	BacktestScore.WithLabelValues(method, "accuracy").Set(accuracy)
	BacktestScore.WithLabelValues(method, "brier").Set(brier)
	BacktestScore.WithLabelValues(method, "log_loss").Set(logLoss)
}
