// Package backtest measures the predictor against held-out history.
package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/nba-oracle/internal/aggregator"
	"github.com/yourusername/nba-oracle/internal/metrics"
	"github.com/yourusername/nba-oracle/internal/models"
	"github.com/yourusername/nba-oracle/internal/predictor"
)

// Method names recorded with each run
const (
	MethodHoldout     = "holdout"
	MethodWalkForward = "walk_forward"
)

// ScoredExample is a training example with the probability the predictor assigned it
type ScoredExample struct {
	models.TrainingExample
	Probability float64 `json:"probability"`
}

// Result is the outcome of one backtest run
type Result struct {
	ID            uuid.UUID          `json:"id"`
	Method        string             `json:"method"`
	ModelVersion  string             `json:"model_version"`
	RunDate       time.Time          `json:"run_date"`
	StartDate     time.Time          `json:"start_date"`
	EndDate       time.Time          `json:"end_date"`
	TrainExamples int                `json:"train_examples"`
	TestExamples  int                `json:"test_examples"`
	Test          Metrics            `json:"test"`
	Fixtures      FixtureMetrics     `json:"fixtures"`
	WalkForward   *WalkForwardResult `json:"walk_forward,omitempty"`
	Duration      time.Duration      `json:"duration"`
}

// Engine orchestrates backtesting runs
type Engine struct {
	config       Config
	predictor    predictor.Predictor
	aggregator   *aggregator.Aggregator
	modelVersion string
	logger       *logrus.Logger
}

// NewEngine creates a new backtesting engine
func NewEngine(cfg Config, p predictor.Predictor, agg *aggregator.Aggregator, modelVersion string, logger *logrus.Logger) (*Engine, error) {
	if p == nil {
		return nil, fmt.Errorf("predictor is required")
	}
	if agg == nil {
		return nil, fmt.Errorf("aggregator is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &Engine{
		config:       cfg,
		predictor:    p,
		aggregator:   agg,
		modelVersion: modelVersion,
		logger:       logger,
	}, nil
}

// Config returns the backtest configuration
func (e *Engine) Config() Config {
	return e.config
}

// Evaluate scores every example with p and summarizes the probabilities against the labels
func Evaluate(ctx context.Context, p predictor.Predictor, examples []models.TrainingExample, buckets int) (Metrics, []ScoredExample, error) {
	scored := make([]ScoredExample, 0, len(examples))
	probs := make([]float64, 0, len(examples))
	labels := make([]float64, 0, len(examples))

	for _, ex := range examples {
		if err := ctx.Err(); err != nil {
			return Metrics{}, nil, err
		}
		prob, err := p.PredictWinProbability(ctx, ex.Features)
		if err != nil {
			return Metrics{}, nil, fmt.Errorf("failed to score %s/%s: %w", ex.GameID, ex.TeamID, err)
		}
		if err := predictor.ValidateProbability(prob); err != nil {
			return Metrics{}, nil, fmt.Errorf("failed to score %s/%s: %w", ex.GameID, ex.TeamID, err)
		}
		scored = append(scored, ScoredExample{TrainingExample: ex, Probability: prob})
		probs = append(probs, prob)
		labels = append(labels, ex.Label())
	}

	return CalculateMetrics(probs, labels, buckets), scored, nil
}

// Run holds out the most recent examples and evaluates the predictor on them, both per team row
// and per fixture
func (e *Engine) Run(ctx context.Context, examples []models.TrainingExample) (*Result, error) {
	started := time.Now()
	train, test, err := ChronologicalSplit(examples, e.config.TestFraction)
	if err != nil {
		metrics.RecordBacktestRun(MethodHoldout, "failure", time.Since(started).Seconds())
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"train_examples": len(train),
		"test_examples":  len(test),
		"test_start":     test[0].GameDate.Format("2006-01-02"),
	}).Info("Starting holdout backtest")

	testMetrics, scored, err := Evaluate(ctx, e.predictor, test, e.config.CalibrationBuckets)
	if err != nil {
		metrics.RecordBacktestRun(MethodHoldout, "failure", time.Since(started).Seconds())
		return nil, err
	}

	result := &Result{
		ID:            uuid.New(),
		Method:        MethodHoldout,
		ModelVersion:  e.modelVersion,
		RunDate:       time.Now().UTC(),
		StartDate:     test[0].GameDate,
		EndDate:       test[len(test)-1].GameDate,
		TrainExamples: len(train),
		TestExamples:  len(test),
		Test:          testMetrics,
		Fixtures:      EvaluateFixtures(scored, e.aggregator, e.config.CalibrationBuckets),
		Duration:      time.Since(started),
	}

	metrics.RecordBacktestRun(MethodHoldout, "success", result.Duration.Seconds())
	metrics.RecordBacktestScores(MethodHoldout, testMetrics.Accuracy, testMetrics.BrierScore, testMetrics.LogLoss)
	e.logger.WithFields(logrus.Fields{
		"run_id":           result.ID.String(),
		"accuracy":         testMetrics.Accuracy,
		"brier_score":      testMetrics.BrierScore,
		"log_loss":         testMetrics.LogLoss,
		"fixture_accuracy": result.Fixtures.Accuracy,
		"fixtures":         result.Fixtures.Fixtures,
	}).Info("Holdout backtest complete")
	return result, nil
}
