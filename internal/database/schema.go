package database

import (
	"context"
	"fmt"
)

// schemaStatements create the tables used by the repositories. Every statement is idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS game_rows (
		season_id         TEXT NOT NULL DEFAULT '',
		game_id           TEXT NOT NULL,
		team_id           TEXT NOT NULL,
		team_abbreviation TEXT NOT NULL DEFAULT '',
		team_name         TEXT NOT NULL DEFAULT '',
		game_date         DATE NOT NULL,
		matchup           TEXT NOT NULL DEFAULT '',
		is_home           BOOLEAN NOT NULL,
		fgm               INTEGER NOT NULL,
		fga               INTEGER NOT NULL,
		fg3m              INTEGER NOT NULL,
		ftm               INTEGER NOT NULL,
		fta               INTEGER NOT NULL,
		oreb              INTEGER NOT NULL,
		dreb              INTEGER NOT NULL,
		tov               INTEGER NOT NULL,
		pts               INTEGER NOT NULL,
		plus_minus        DOUBLE PRECISION,
		result            TEXT NOT NULL,
		ingested_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (game_id, team_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_game_rows_date ON game_rows (game_date, game_id, team_id)`,
	`CREATE TABLE IF NOT EXISTS fixture_predictions (
		id                  UUID PRIMARY KEY,
		run_id              UUID NOT NULL,
		game_id             TEXT NOT NULL DEFAULT '',
		game_date           DATE NOT NULL,
		home_team_id        TEXT NOT NULL,
		away_team_id        TEXT NOT NULL,
		status              TEXT NOT NULL,
		reason              TEXT NOT NULL DEFAULT '',
		prob_home           DOUBLE PRECISION,
		prob_away           DOUBLE PRECISION,
		home_win_prob       DOUBLE PRECISION,
		home_fair_odds      NUMERIC(10, 2),
		away_fair_odds      NUMERIC(10, 2),
		home_key_player_out BOOLEAN NOT NULL DEFAULT false,
		away_key_player_out BOOLEAN NOT NULL DEFAULT false,
		model_version       TEXT NOT NULL,
		predicted_at        TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_fixture_predictions_game ON fixture_predictions (game_date, home_team_id, away_team_id, predicted_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_fixture_predictions_run ON fixture_predictions (run_id)`,
	`CREATE TABLE IF NOT EXISTS backtest_runs (
		id               UUID PRIMARY KEY,
		run_date         TIMESTAMPTZ NOT NULL,
		method           TEXT NOT NULL,
		model_version    TEXT NOT NULL,
		start_date       DATE NOT NULL,
		end_date         DATE NOT NULL,
		train_examples   INTEGER NOT NULL,
		test_examples    INTEGER NOT NULL,
		accuracy         DOUBLE PRECISION NOT NULL,
		brier_score      DOUBLE PRECISION NOT NULL,
		log_loss         DOUBLE PRECISION NOT NULL,
		fixture_accuracy DOUBLE PRECISION,
		fixture_brier    DOUBLE PRECISION,
		full_results     JSONB,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// EnsureSchema creates any missing tables and indexes
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
