package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/yourusername/nba-oracle/internal/database"
	"github.com/yourusername/nba-oracle/internal/models"
)

const errScanPrediction = "failed to scan fixture prediction: %w"

const insertPredictionSQL = `
	INSERT INTO fixture_predictions (
		id, run_id, game_id, game_date, home_team_id, away_team_id, status, reason,
		prob_home, prob_away, home_win_prob, home_fair_odds, away_fair_odds,
		home_key_player_out, away_key_player_out, model_version, predicted_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12::numeric,$13::numeric,$14,$15,$16,$17)
`

// odds are selected as text and parsed back into exact decimals
const selectPrediction = `
	SELECT id, run_id, game_id, game_date, home_team_id, away_team_id, status, reason,
		prob_home, prob_away, home_win_prob, home_fair_odds::text, away_fair_odds::text,
		home_key_player_out, away_key_player_out, model_version, predicted_at
	FROM fixture_predictions
`

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db *database.DB
}

// NewPostgresPredictionRepository creates a new prediction repository
func NewPostgresPredictionRepository(db *database.DB) PredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

// Insert stores a single prediction
func (r *PostgresPredictionRepository) Insert(ctx context.Context, p *models.FixturePrediction) error {
	if _, err := r.db.Exec(ctx, insertPredictionSQL, predictionArgs(p)...); err != nil {
		return fmt.Errorf("failed to insert fixture prediction: %w", err)
	}
	return nil
}

// InsertBatch stores predictions from one run atomically
func (r *PostgresPredictionRepository) InsertBatch(ctx context.Context, predictions []*models.FixturePrediction) error {
	if len(predictions) == 0 {
		return nil
	}

	return r.db.WithTransaction(ctx, func(txCtx context.Context) error {
		batch := &pgx.Batch{}
		for _, p := range predictions {
			batch.Queue(insertPredictionSQL, predictionArgs(p)...)
		}
		br := r.db.SendBatch(txCtx, batch)
		for range predictions {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("failed to batch insert fixture predictions: %w", err)
			}
		}
		return br.Close()
	})
}

// GetByRunID retrieves every prediction produced by a run
func (r *PostgresPredictionRepository) GetByRunID(ctx context.Context, runID uuid.UUID) ([]*models.FixturePrediction, error) {
	return r.list(ctx, selectPrediction+` WHERE run_id = $1 ORDER BY game_date, home_team_id`, runID)
}

// GetLatestForFixture retrieves the most recent prediction for a fixture
func (r *PostgresPredictionRepository) GetLatestForFixture(ctx context.Context, gameDate time.Time, homeTeamID, awayTeamID string) (*models.FixturePrediction, error) {
	query := selectPrediction + `
		WHERE game_date = $1 AND home_team_id = $2 AND away_team_id = $3
		ORDER BY predicted_at DESC LIMIT 1`
	p, err := scanPrediction(r.db.QueryRow(ctx, query, models.DateOnly(gameDate), homeTeamID, awayTeamID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf(errScanPrediction, err)
	}
	return p, nil
}

// ListByDateRange retrieves predictions for fixtures played within [start, end]
func (r *PostgresPredictionRepository) ListByDateRange(ctx context.Context, start, end time.Time) ([]*models.FixturePrediction, error) {
	query := selectPrediction + ` WHERE game_date >= $1 AND game_date <= $2 ORDER BY game_date, predicted_at DESC`
	return r.list(ctx, query, models.DateOnly(start), models.DateOnly(end))
}

func (r *PostgresPredictionRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.FixturePrediction, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query fixture predictions: %w", err)
	}
	defer rows.Close()

	var out []*models.FixturePrediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf(errScanPrediction, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func predictionArgs(p *models.FixturePrediction) []interface{} {
	return []interface{}{
		p.ID, p.RunID, p.GameID, models.DateOnly(p.GameDate), p.HomeTeamID, p.AwayTeamID, string(p.Status), p.Reason,
		p.ProbHome, p.ProbAway, p.HomeWinProb, decimalText(p.HomeFairOdds), decimalText(p.AwayFairOdds),
		p.HomeKeyPlayerOut, p.AwayKeyPlayerOut, p.ModelVersion, p.PredictedAt,
	}
}

func scanPrediction(row pgx.Row) (*models.FixturePrediction, error) {
	p := &models.FixturePrediction{}
	var status string
	var homeOdds, awayOdds *string
	if err := row.Scan(
		&p.ID, &p.RunID, &p.GameID, &p.GameDate, &p.HomeTeamID, &p.AwayTeamID, &status, &p.Reason,
		&p.ProbHome, &p.ProbAway, &p.HomeWinProb, &homeOdds, &awayOdds,
		&p.HomeKeyPlayerOut, &p.AwayKeyPlayerOut, &p.ModelVersion, &p.PredictedAt,
	); err != nil {
		return nil, err
	}
	p.Status = models.PredictionStatus(status)

	var err error
	if p.HomeFairOdds, err = parseDecimal(homeOdds); err != nil {
		return nil, err
	}
	if p.AwayFairOdds, err = parseDecimal(awayOdds); err != nil {
		return nil, err
	}
	return p, nil
}

func decimalText(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func parseDecimal(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, fmt.Errorf("invalid decimal %q: %w", *s, err)
	}
	return &d, nil
}
