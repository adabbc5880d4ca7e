package backtest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/yourusername/nba-oracle/internal/metrics"
	"github.com/yourusername/nba-oracle/internal/models"
)

// a coin flip scores 0.25, so a window whose test Brier score is lower shows skill
const coinFlipBrier = 0.25

// WalkForwardConfig configures walk-forward evaluation
type WalkForwardConfig struct {
	TrainWindowDays int
	TestWindowDays  int
	StepDays        int
	MinTestExamples int
}

// WalkForwardWindow represents one walk-forward window
type WalkForwardWindow struct {
	WindowID      int       `json:"window_id"`
	TrainStart    time.Time `json:"train_start"`
	TrainEnd      time.Time `json:"train_end"`
	TestStart     time.Time `json:"test_start"`
	TestEnd       time.Time `json:"test_end"`
	TrainExamples int       `json:"train_examples"`
	TrainMetrics  Metrics   `json:"train_metrics"`
	TestMetrics   Metrics   `json:"test_metrics"`
}

// WalkForwardResult represents walk-forward evaluation result
type WalkForwardResult struct {
	Windows           []WalkForwardWindow `json:"windows"`
	AggregatedMetrics Metrics             `json:"aggregated_metrics"`
	ConsistencyScore  float64             `json:"consistency_score"`
	OverfitScore      float64             `json:"overfit_score"`
}

// RunWalkForward slides a train/test pair of date windows across the examples. Each test window
// starts where its train window ends. Windows whose test span holds fewer than MinTestExamples
// examples are skipped.
func (e *Engine) RunWalkForward(ctx context.Context, examples []models.TrainingExample, cfg WalkForwardConfig) (WalkForwardResult, error) {
	if cfg.TrainWindowDays <= 0 || cfg.TestWindowDays <= 0 {
		return WalkForwardResult{}, fmt.Errorf("walk-forward windows must be positive")
	}
	if cfg.StepDays <= 0 {
		cfg.StepDays = cfg.TestWindowDays
	}
	started := time.Now()

	sorted := SortExamples(examples)
	if len(sorted) == 0 {
		return WalkForwardResult{}, ErrNotEnoughExamples
	}
	start := models.DateOnly(sorted[0].GameDate)
	end := models.DateOnly(sorted[len(sorted)-1].GameDate).AddDate(0, 0, 1)

	windows := []WalkForwardWindow{}
	windowID := 0

	for current := start; current.Before(end); current = current.AddDate(0, 0, cfg.StepDays) {
		trainStart := current
		trainEnd := trainStart.AddDate(0, 0, cfg.TrainWindowDays)
		testStart := trainEnd
		testEnd := testStart.AddDate(0, 0, cfg.TestWindowDays)
		if !testStart.Before(end) {
			break
		}
		if testEnd.After(end) {
			testEnd = end
		}

		windowID++
		train := between(sorted, trainStart, trainEnd)
		test := between(sorted, testStart, testEnd)
		if len(test) == 0 || len(test) < cfg.MinTestExamples {
			continue
		}

		trainMetrics, _, err := Evaluate(ctx, e.predictor, train, e.config.CalibrationBuckets)
		if err != nil {
			metrics.RecordBacktestRun(MethodWalkForward, "failure", time.Since(started).Seconds())
			return WalkForwardResult{}, err
		}
		testMetrics, _, err := Evaluate(ctx, e.predictor, test, e.config.CalibrationBuckets)
		if err != nil {
			metrics.RecordBacktestRun(MethodWalkForward, "failure", time.Since(started).Seconds())
			return WalkForwardResult{}, err
		}

		windows = append(windows, WalkForwardWindow{
			WindowID:      windowID,
			TrainStart:    trainStart,
			TrainEnd:      trainEnd,
			TestStart:     testStart,
			TestEnd:       testEnd,
			TrainExamples: len(train),
			TrainMetrics:  trainMetrics,
			TestMetrics:   testMetrics,
		})
	}

	result := WalkForwardResult{
		Windows:           windows,
		AggregatedMetrics: aggregateWalkForward(windows),
		ConsistencyScore:  CalculateConsistency(windows),
		OverfitScore:      calculateOverfitScore(windows),
	}

	metrics.RecordBacktestRun(MethodWalkForward, "success", time.Since(started).Seconds())
	agg := result.AggregatedMetrics
	metrics.RecordBacktestScores(MethodWalkForward, agg.Accuracy, agg.BrierScore, agg.LogLoss)
	e.logger.WithField("windows", len(windows)).WithField("consistency", result.ConsistencyScore).Info("Walk-forward backtest complete")
	return result, nil
}

// between returns the examples dated within [from, to)
func between(sorted []models.TrainingExample, from, to time.Time) []models.TrainingExample {
	var out []models.TrainingExample
	for _, ex := range sorted {
		d := models.DateOnly(ex.GameDate)
		if !d.Before(from) && d.Before(to) {
			out = append(out, ex)
		}
	}
	return out
}

// CalculateConsistency returns the share of windows whose test Brier score beats a coin flip
func CalculateConsistency(windows []WalkForwardWindow) float64 {
	if len(windows) == 0 {
		return 0
	}
	skilled := 0
	for _, w := range windows {
		if w.TestMetrics.BrierScore < coinFlipBrier {
			skilled++
		}
	}
	return float64(skilled) / float64(len(windows))
}

// calculateOverfitScore is the relative drop in accuracy from train to test windows
func calculateOverfitScore(windows []WalkForwardWindow) float64 {
	trainAccuracy := 0.0
	testAccuracy := 0.0
	for _, w := range windows {
		if w.TrainMetrics.Examples == 0 {
			continue
		}
		trainAccuracy += w.TrainMetrics.Accuracy
		testAccuracy += w.TestMetrics.Accuracy
	}
	if trainAccuracy == 0 {
		return 0
	}
	return (trainAccuracy - testAccuracy) / trainAccuracy
}

// aggregateWalkForward averages test metrics weighted by each window's example count
func aggregateWalkForward(windows []WalkForwardWindow) Metrics {
	out := Metrics{}
	for _, w := range windows {
		n := float64(w.TestMetrics.Examples)
		out.Examples += w.TestMetrics.Examples
		out.Accuracy += w.TestMetrics.Accuracy * n
		out.BrierScore += w.TestMetrics.BrierScore * n
		out.LogLoss += w.TestMetrics.LogLoss * n
		out.BaseRate += w.TestMetrics.BaseRate * n
		out.MeanProb += w.TestMetrics.MeanProb * n
	}
	if out.Examples == 0 {
		return Metrics{}
	}
	total := float64(out.Examples)
	out.Accuracy /= total
	out.BrierScore /= total
	out.LogLoss /= total
	out.BaseRate /= total
	out.MeanProb /= total
	return out
}

// ExportJSON renders the walk-forward result as JSON
func (w WalkForwardResult) ExportJSON() string {
	data, _ := json.Marshal(w)
	return string(data)
}
