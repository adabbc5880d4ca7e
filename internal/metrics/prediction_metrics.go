package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prediction counter vectors
var (
	FixturesPredictedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fixtures_predicted_total",
		Help:      "Fixtures processed by the prediction service, by status",
	}, []string{"status"})
)

// Prediction histograms
var (
	HomeWinProbability = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "home_win_probability",
		Help:      "Distribution of final home win probabilities",
		Buckets:   prometheus.LinearBuckets(0.1, 0.1, 9),
	})
)

// Stream gauges
var (
	StreamSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stream_subscribers",
		Help:      "Connected prediction feed subscribers",
	})
)

// RecordFixturePrediction records the outcome of one fixture.
func RecordFixturePrediction(status string, homeWinProb *float64) {
	FixturesPredictedTotal.WithLabelValues(status).Inc()
	if homeWinProb != nil {
		HomeWinProbability.Observe(*homeWinProb)
	}
}

// SetStreamSubscribers updates the subscriber gauge.
func SetStreamSubscribers(n int) {
	StreamSubscribers.Set(float64(n))
}
