package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/nba-oracle/internal/database"
	"github.com/yourusername/nba-oracle/internal/models"
)

const gameRowColumns = `season_id, game_id, team_id, team_abbreviation, team_name, game_date, matchup,
	is_home, fgm, fga, fg3m, ftm, fta, oreb, dreb, tov, pts, plus_minus, result`

const upsertGameRowSQL = `
	INSERT INTO game_rows (` + gameRowColumns + `)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
	ON CONFLICT (game_id, team_id) DO UPDATE SET
		season_id = EXCLUDED.season_id,
		team_abbreviation = EXCLUDED.team_abbreviation,
		team_name = EXCLUDED.team_name,
		game_date = EXCLUDED.game_date,
		matchup = EXCLUDED.matchup,
		is_home = EXCLUDED.is_home,
		fgm = EXCLUDED.fgm, fga = EXCLUDED.fga, fg3m = EXCLUDED.fg3m,
		ftm = EXCLUDED.ftm, fta = EXCLUDED.fta,
		oreb = EXCLUDED.oreb, dreb = EXCLUDED.dreb,
		tov = EXCLUDED.tov, pts = EXCLUDED.pts,
		plus_minus = EXCLUDED.plus_minus,
		result = EXCLUDED.result,
		ingested_at = now()
	RETURNING (xmax = 0) AS inserted
`

// rows are returned in rating order
const orderGameRows = ` ORDER BY game_date, game_id, team_id`

// PostgresGameRowRepository implements GameRowRepository for PostgreSQL
type PostgresGameRowRepository struct {
	db *database.DB
}

// NewPostgresGameRowRepository creates a new game row repository
func NewPostgresGameRowRepository(db *database.DB) GameRowRepository {
	return &PostgresGameRowRepository{db: db}
}

// UpsertBatch inserts or refreshes rows in a single round trip
func (r *PostgresGameRowRepository) UpsertBatch(ctx context.Context, rows []models.GameRow) (UpsertResult, error) {
	var res UpsertResult
	if len(rows) == 0 {
		return res, nil
	}

	batch := &pgx.Batch{}
	for i := range rows {
		batch.Queue(upsertGameRowSQL, gameRowArgs(&rows[i])...)
	}

	br := r.db.SendBatch(ctx, batch)
	for i := range rows {
		var inserted bool
		if err := br.QueryRow().Scan(&inserted); err != nil {
			_ = br.Close()
			return res, fmt.Errorf("failed to upsert game row %s/%s: %w", rows[i].GameID, rows[i].TeamID, err)
		}
		if inserted {
			res.Inserted++
		} else {
			res.Updated++
		}
	}
	if err := br.Close(); err != nil {
		return res, fmt.Errorf("failed to close upsert batch: %w", err)
	}
	return res, nil
}

// Get retrieves one team's row for a game
func (r *PostgresGameRowRepository) Get(ctx context.Context, gameID, teamID string) (*models.GameRow, error) {
	query := `SELECT ` + gameRowColumns + ` FROM game_rows WHERE game_id = $1 AND team_id = $2`
	row, err := scanGameRow(r.db.QueryRow(ctx, query, gameID, teamID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game row: %w", err)
	}
	return &row, nil
}

// ListAll returns the entire game log in (date, game, team) order
func (r *PostgresGameRowRepository) ListAll(ctx context.Context) ([]models.GameRow, error) {
	return r.list(ctx, `SELECT `+gameRowColumns+` FROM game_rows`+orderGameRows)
}

// ListByDateRange returns rows whose game date falls within [start, end]
func (r *PostgresGameRowRepository) ListByDateRange(ctx context.Context, start, end time.Time) ([]models.GameRow, error) {
	query := `SELECT ` + gameRowColumns + ` FROM game_rows WHERE game_date >= $1 AND game_date <= $2` + orderGameRows
	return r.list(ctx, query, models.DateOnly(start), models.DateOnly(end))
}

// Count returns the number of stored rows
func (r *PostgresGameRowRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM game_rows`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count game rows: %w", err)
	}
	return n, nil
}

// LatestGameDate returns the most recent stored game date
func (r *PostgresGameRowRepository) LatestGameDate(ctx context.Context) (time.Time, error) {
	var latest *time.Time
	if err := r.db.QueryRow(ctx, `SELECT MAX(game_date) FROM game_rows`).Scan(&latest); err != nil {
		return time.Time{}, fmt.Errorf("failed to query latest game date: %w", err)
	}
	if latest == nil {
		return time.Time{}, models.ErrNotFound
	}
	return *latest, nil
}

func (r *PostgresGameRowRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.GameRow, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query game rows: %w", err)
	}
	defer rows.Close()

	var out []models.GameRow
	for rows.Next() {
		row, err := scanGameRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func gameRowArgs(g *models.GameRow) []interface{} {
	return []interface{}{
		g.SeasonID, g.GameID, g.TeamID, g.TeamAbbreviation, g.TeamName, models.DateOnly(g.GameDate), g.Matchup,
		g.IsHome, g.FGM, g.FGA, g.FG3M, g.FTM, g.FTA, g.OREB, g.DREB, g.TOV, g.PTS, g.PlusMinus, string(g.Result),
	}
}

func scanGameRow(row pgx.Row) (models.GameRow, error) {
	var g models.GameRow
	var result string
	err := row.Scan(
		&g.SeasonID, &g.GameID, &g.TeamID, &g.TeamAbbreviation, &g.TeamName, &g.GameDate, &g.Matchup,
		&g.IsHome, &g.FGM, &g.FGA, &g.FG3M, &g.FTM, &g.FTA, &g.OREB, &g.DREB, &g.TOV, &g.PTS, &g.PlusMinus, &result,
	)
	g.Result = models.Result(result)
	return g, err
}
