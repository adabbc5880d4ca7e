package backtest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yourusername/nba-oracle/internal/models"
)

// RunSaver persists run summaries
type RunSaver interface {
	Save(ctx context.Context, run *models.BacktestRun) error
}

// ExportToJSON writes the full result to a JSON file
func ExportToJSON(result *Result, outputPath string) error {
	if outputPath == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}
	return os.WriteFile(outputPath, data, 0o644)
}

// ToModel converts a result into its stored summary
func ToModel(result *Result) (*models.BacktestRun, error) {
	full, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal backtest result: %w", err)
	}
	return &models.BacktestRun{
		ID:              result.ID,
		RunDate:         result.RunDate,
		Method:          result.Method,
		ModelVersion:    result.ModelVersion,
		StartDate:       result.StartDate,
		EndDate:         result.EndDate,
		TrainExamples:   result.TrainExamples,
		TestExamples:    result.TestExamples,
		Accuracy:        result.Test.Accuracy,
		BrierScore:      result.Test.BrierScore,
		LogLoss:         result.Test.LogLoss,
		FixtureAccuracy: result.Fixtures.Accuracy,
		FixtureBrier:    result.Fixtures.BrierScore,
		FullResults:     full,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// ExportToDatabase persists the run summary
func ExportToDatabase(ctx context.Context, result *Result, repo RunSaver) (*models.BacktestRun, error) {
	if repo == nil {
		return nil, fmt.Errorf("backtest run repository is required")
	}
	run, err := ToModel(result)
	if err != nil {
		return nil, err
	}
	if err := repo.Save(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}
