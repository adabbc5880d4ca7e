// Package rating maintains a per-team skill rating updated game by game.
package rating

import (
	"fmt"

	"github.com/yourusername/nba-oracle/internal/models"
)

// Engine applies rating updates over a game log
type Engine struct {
	config Config
}

// NewEngine creates a rating engine
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rating config: %w", err)
	}
	return &Engine{config: cfg}, nil
}

// Config returns the engine constants
func (e *Engine) Config() Config {
	return e.config
}

// Delta returns the rating change for a single game result
func (e *Engine) Delta(result models.Result, margin float64) (float64, error) {
	score, ok := result.Score()
	if !ok {
		return 0, models.ErrInvalidResult
	}
	return e.config.K*(score-0.5) + margin*e.config.MarginWeight, nil
}

// Rate sorts rows chronologically and annotates each with the team's rating before the game.
// The returned state holds every team's rating after the final game.
func (e *Engine) Rate(rows []models.GameRow) ([]models.RatedRow, *State, Report, error) {
	ordered, report, err := OrderRows(rows)
	if err != nil {
		return nil, nil, report, err
	}

	state := NewState(e.config.Baseline)
	rated := make([]models.RatedRow, 0, len(ordered))

	for _, row := range ordered {
		delta, err := e.Delta(row.Result, row.Margin())
		if err != nil {
			return nil, nil, report, models.NewDataIntegrityError(err, row.GameID, row.TeamID, "result", string(row.Result))
		}
		pre := state.apply(row.TeamID, delta)
		rated = append(rated, models.RatedRow{GameRow: row, RatingPre: pre})
	}

	return rated, state, report, nil
}
