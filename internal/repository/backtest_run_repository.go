package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/nba-oracle/internal/database"
	"github.com/yourusername/nba-oracle/internal/models"
)

const errScanBacktestRun = "failed to scan backtest run: %w"

const selectBacktestRun = `
	SELECT id, run_date, method, model_version, start_date, end_date, train_examples, test_examples,
		accuracy, brier_score, log_loss, fixture_accuracy, fixture_brier, full_results, created_at
	FROM backtest_runs
`

// PostgresBacktestRunRepository implements BacktestRunRepository for PostgreSQL
type PostgresBacktestRunRepository struct {
	db *database.DB
}

// NewPostgresBacktestRunRepository creates a new backtest run repository
func NewPostgresBacktestRunRepository(db *database.DB) BacktestRunRepository {
	return &PostgresBacktestRunRepository{db: db}
}

// Save inserts a backtest run summary
func (r *PostgresBacktestRunRepository) Save(ctx context.Context, run *models.BacktestRun) error {
	query := `
		INSERT INTO backtest_runs (
			id, run_date, method, model_version, start_date, end_date, train_examples, test_examples,
			accuracy, brier_score, log_loss, fixture_accuracy, fixture_brier, full_results, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`

	var fullResults interface{}
	if len(run.FullResults) > 0 {
		fullResults = string(run.FullResults)
	}

	_, err := r.db.Exec(ctx, query,
		run.ID, run.RunDate, run.Method, run.ModelVersion, models.DateOnly(run.StartDate), models.DateOnly(run.EndDate),
		run.TrainExamples, run.TestExamples, run.Accuracy, run.BrierScore, run.LogLoss,
		run.FixtureAccuracy, run.FixtureBrier, fullResults, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save backtest run: %w", err)
	}
	return nil
}

// GetByID retrieves a backtest run by ID
func (r *PostgresBacktestRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestRun, error) {
	run, err := scanBacktestRun(r.db.QueryRow(ctx, selectBacktestRun+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf(errScanBacktestRun, err)
	}
	return run, nil
}

// GetLatest retrieves the most recent backtest runs
func (r *PostgresBacktestRunRepository) GetLatest(ctx context.Context, limit int) ([]*models.BacktestRun, error) {
	rows, err := r.db.Query(ctx, selectBacktestRun+` ORDER BY run_date DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest backtest runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.BacktestRun
	for rows.Next() {
		run, err := scanBacktestRun(rows)
		if err != nil {
			return nil, fmt.Errorf(errScanBacktestRun, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanBacktestRun(row pgx.Row) (*models.BacktestRun, error) {
	run := &models.BacktestRun{}
	var fixtureAccuracy, fixtureBrier *float64
	var fullResults []byte
	if err := row.Scan(
		&run.ID, &run.RunDate, &run.Method, &run.ModelVersion, &run.StartDate, &run.EndDate,
		&run.TrainExamples, &run.TestExamples, &run.Accuracy, &run.BrierScore, &run.LogLoss,
		&fixtureAccuracy, &fixtureBrier, &fullResults, &run.CreatedAt,
	); err != nil {
		return nil, err
	}
	if fixtureAccuracy != nil {
		run.FixtureAccuracy = *fixtureAccuracy
	}
	if fixtureBrier != nil {
		run.FixtureBrier = *fixtureBrier
	}
	run.FullResults = fullResults
	return run, nil
}
