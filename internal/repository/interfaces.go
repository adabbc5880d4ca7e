package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/nba-oracle/internal/models"
)

// UpsertResult counts what a batch upsert did
type UpsertResult struct {
	Inserted int
	Updated  int
}

// GameRowRepository defines the interface for game log access
type GameRowRepository interface {
	UpsertBatch(ctx context.Context, rows []models.GameRow) (UpsertResult, error)
	Get(ctx context.Context, gameID, teamID string) (*models.GameRow, error)
	ListAll(ctx context.Context) ([]models.GameRow, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]models.GameRow, error)
	Count(ctx context.Context) (int64, error)
	LatestGameDate(ctx context.Context) (time.Time, error)
}

// PredictionRepository defines the interface for fixture prediction access
type PredictionRepository interface {
	Insert(ctx context.Context, prediction *models.FixturePrediction) error
	InsertBatch(ctx context.Context, predictions []*models.FixturePrediction) error
	GetByRunID(ctx context.Context, runID uuid.UUID) ([]*models.FixturePrediction, error)
	GetLatestForFixture(ctx context.Context, gameDate time.Time, homeTeamID, awayTeamID string) (*models.FixturePrediction, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]*models.FixturePrediction, error)
}

// BacktestRunRepository defines the interface for backtest run summaries
type BacktestRunRepository interface {
	Save(ctx context.Context, run *models.BacktestRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestRun, error)
	GetLatest(ctx context.Context, limit int) ([]*models.BacktestRun, error)
}
