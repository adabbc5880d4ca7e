package backtest

import (
	"fmt"

	"github.com/yourusername/nba-oracle/internal/config"
)

// Config holds the evaluation settings of a backtest
type Config struct {
	TestFraction       float64
	CalibrationBuckets int
	TrainWindowDays    int
	TestWindowDays     int
	StepDays           int
	MinExamples        int
	OutputPath         string
	PersistResults     bool
}

// FromConfig converts app config to backtest config
func FromConfig(cfg *config.BacktestConfig) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("backtest config is required")
	}

	bt := Config{
		TestFraction:       cfg.TestFraction,
		CalibrationBuckets: cfg.CalibrationBuckets,
		TrainWindowDays:    cfg.TrainWindowDays,
		TestWindowDays:     cfg.TestWindowDays,
		StepDays:           cfg.StepDays,
		MinExamples:        cfg.MinExamples,
		OutputPath:         cfg.OutputPath,
		PersistResults:     cfg.PersistResults,
	}

	return bt, bt.Validate()
}

// Validate validates backtest config parameters
func (c Config) Validate() error {
	if c.TestFraction <= 0 || c.TestFraction >= 1 {
		return fmt.Errorf("test fraction must be between 0 and 1")
	}
	if c.CalibrationBuckets <= 0 {
		return fmt.Errorf("calibration buckets must be positive")
	}
	if c.TrainWindowDays <= 0 || c.TestWindowDays <= 0 {
		return fmt.Errorf("walk-forward windows must be positive")
	}
	if c.MinExamples < 0 {
		return fmt.Errorf("min examples cannot be negative")
	}
	return nil
}

// WalkForward returns the walk-forward settings
func (c Config) WalkForward() WalkForwardConfig {
	return WalkForwardConfig{
		TrainWindowDays: c.TrainWindowDays,
		TestWindowDays:  c.TestWindowDays,
		StepDays:        c.StepDays,
		MinTestExamples: c.MinExamples,
	}
}
