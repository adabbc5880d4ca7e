package service

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/nba-oracle/internal/aggregator"
	"github.com/yourusername/nba-oracle/internal/config"
	"github.com/yourusername/nba-oracle/internal/features"
	"github.com/yourusername/nba-oracle/internal/logger"
	"github.com/yourusername/nba-oracle/internal/metrics"
	"github.com/yourusername/nba-oracle/internal/models"
	"github.com/yourusername/nba-oracle/internal/rating"
)

// Dataset is the result of rating and featurizing a game history
type Dataset struct {
	Rated    []models.RatedRow
	Ratings  *rating.State
	Features *features.Result
	Report   rating.Report
	BuiltAt  time.Time
}

// Examples returns the training table
func (d *Dataset) Examples() []models.TrainingExample {
	return d.Features.Examples
}

// DatasetBuilder runs the rating engine and the feature pipeline over a game history
type DatasetBuilder struct {
	engine   *rating.Engine
	pipeline *features.Pipeline
	logger   *logger.PipelineLogger
}

// RatingConfig extracts the rating constants from the pipeline configuration
func RatingConfig(cfg config.PipelineConfig) rating.Config {
	return rating.Config{K: cfg.K, MarginWeight: cfg.MarginWeight, Baseline: cfg.Baseline}
}

// FeatureConfig extracts the window and rest constants from the pipeline configuration
func FeatureConfig(cfg config.PipelineConfig) features.Config {
	return features.Config{
		WindowSize:      cfg.WindowSize,
		DefaultRestDays: cfg.DefaultRestDays,
		MinRestDays:     cfg.MinRestDays,
		MaxRestDays:     cfg.MaxRestDays,
	}
}

// AggregatorConfig converts the aggregator section of the configuration
func AggregatorConfig(cfg config.AggregatorConfig) aggregator.Config {
	return aggregator.Config{
		KeyPlayerPenalty: cfg.KeyPlayerPenalty,
		MinProbability:   cfg.MinProbability,
		MaxProbability:   cfg.MaxProbability,
	}
}

// NewDatasetBuilder creates a builder from the pipeline configuration
func NewDatasetBuilder(cfg config.PipelineConfig, log *logrus.Logger) (*DatasetBuilder, error) {
	engine, err := rating.NewEngine(RatingConfig(cfg))
	if err != nil {
		return nil, err
	}
	pipeline, err := features.NewPipeline(FeatureConfig(cfg))
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.New()
	}
	return &DatasetBuilder{engine: engine, pipeline: pipeline, logger: logger.NewPipelineLogger(log)}, nil
}

// Build rates rows chronologically and derives the training table. Integrity failures abort the
// build and are logged with the offending row.
func (b *DatasetBuilder) Build(rows []models.GameRow) (*Dataset, error) {
	start := time.Now()
	rated, state, report, err := b.engine.Rate(rows)
	if err != nil {
		b.logIntegrity("rating", err)
		return nil, fmt.Errorf("rating failed: %w", err)
	}
	ratingTime := time.Since(start)
	b.logger.LogRatingRun(report.Rows, report.Games, report.Teams, ratingTime)
	b.logger.LogUnpairedGames(report.UnpairedGames)
	metrics.RecordRatingRun(report.Rows, report.Teams, ratingTime.Seconds())

	start = time.Now()
	result, err := b.pipeline.Build(rated)
	if err != nil {
		b.logIntegrity("features", err)
		return nil, fmt.Errorf("feature derivation failed: %w", err)
	}
	featureTime := time.Since(start)
	b.logger.LogFeatureRun(len(rated), len(result.Examples), result.Dropped, featureTime)
	metrics.RecordFeatureRun(len(result.Examples), result.Dropped, featureTime.Seconds())
	metrics.MarkPipelineRun()

	return &Dataset{
		Rated:    rated,
		Ratings:  state,
		Features: result,
		Report:   report,
		BuiltAt:  time.Now().UTC(),
	}, nil
}

// Export writes the training table as CSV
func (b *DatasetBuilder) Export(w io.Writer, ds *Dataset) error {
	return features.WriteCSV(w, ds.Examples())
}

// ExportFile writes the training table to path, creating parent directories
func (b *DatasetBuilder) ExportFile(path string, ds *Dataset) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := b.Export(f, ds); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	b.logger.LogExport(path, len(ds.Examples()))
	return nil
}

func (b *DatasetBuilder) logIntegrity(stage string, err error) {
	metrics.RecordIntegrityError(stage)

	var integrity *models.DataIntegrityError
	if errors.As(err, &integrity) {
		b.logger.LogIntegrityError(integrity.GameID, integrity.TeamID, integrity.Field, integrity.Value, integrity.Err)
		return
	}
	b.logger.WithError(err).WithField("stage", stage).Error("Pipeline input rejected")
}
