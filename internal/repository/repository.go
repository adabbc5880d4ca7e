package repository

import (
	"fmt"

	"github.com/yourusername/nba-oracle/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Games        GameRowRepository
	Predictions  PredictionRepository
	BacktestRuns BacktestRunRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Games:        NewPostgresGameRowRepository(db),
		Predictions:  NewPostgresPredictionRepository(db),
		BacktestRuns: NewPostgresBacktestRunRepository(db),
	}, nil
}
