package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/nba-oracle/internal/config"
)

// Initialize creates a database connection pool and makes sure the schema exists
func Initialize(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database schema check failed: %w", err)
	}

	var rows int64
	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM game_rows").Scan(&rows); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to count game rows: %w", err)
	}
	if rows == 0 && logger != nil {
		logger.Warn("No game rows stored yet. Run the ingest command first.")
	}

	return db, nil
}
