package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BacktestRun represents a persisted backtest run
type BacktestRun struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	RunDate         time.Time       `db:"run_date" json:"run_date"`
	Method          string          `db:"method" json:"method"`
	ModelVersion    string          `db:"model_version" json:"model_version"`
	StartDate       time.Time       `db:"start_date" json:"start_date"`
	EndDate         time.Time       `db:"end_date" json:"end_date"`
	TrainExamples   int             `db:"train_examples" json:"train_examples"`
	TestExamples    int             `db:"test_examples" json:"test_examples"`
	Accuracy        float64         `db:"accuracy" json:"accuracy"`
	BrierScore      float64         `db:"brier_score" json:"brier_score"`
	LogLoss         float64         `db:"log_loss" json:"log_loss"`
	FixtureAccuracy float64         `db:"fixture_accuracy" json:"fixture_accuracy"`
	FixtureBrier    float64         `db:"fixture_brier" json:"fixture_brier"`
	FullResults     json.RawMessage `db:"full_results" json:"full_results"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}
