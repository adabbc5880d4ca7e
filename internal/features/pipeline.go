// Package features derives per-game feature vectors from a rated game log.
package features

import (
	"fmt"

	"github.com/yourusername/nba-oracle/internal/models"
)

// DropReasonInsufficientHistory labels rows excluded because a trailing window was not full
const DropReasonInsufficientHistory = "insufficient_history"

// Result is the output of a pipeline run
type Result struct {
	Examples []models.TrainingExample
	Dropped  map[string]int
	Snapshot *Snapshot
}

// DroppedTotal returns the number of rows excluded from the training table
func (r *Result) DroppedTotal() int {
	total := 0
	for _, n := range r.Dropped {
		total += n
	}
	return total
}

// Pipeline turns rated rows into training examples
type Pipeline struct {
	config Config
}

// NewPipeline creates a feature pipeline
func NewPipeline(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid feature config: %w", err)
	}
	return &Pipeline{config: cfg}, nil
}

// Config returns the pipeline parameters
func (p *Pipeline) Config() Config {
	return p.config
}

// Build walks rated rows in order, emitting one example per row whose trailing windows are
// full. Rows must be in the order produced by the rating engine. Each row's features are
// computed before that row's own statistics enter the windows. A rate window holds the last
// WindowSize defined values, so a game with an undefined rate stretches that window past the
// previous WindowSize games.
func (p *Pipeline) Build(rows []models.RatedRow) (*Result, error) {
	snapshot := newSnapshot(p.config)
	result := &Result{
		Examples: make([]models.TrainingExample, 0, len(rows)),
		Dropped:  make(map[string]int),
		Snapshot: snapshot,
	}

	for i := range rows {
		row := &rows[i]
		history := snapshot.history(row.TeamID)

		if history.games > 0 && row.GameDate.Before(history.lastSeen) {
			return nil, fmt.Errorf("%w: team %s game %s", ErrUnorderedInput, row.TeamID, row.GameID)
		}

		rest := RestDays(history.lastSeen, history.games > 0, row.GameDate, p.config)
		vector, ok := history.vector(row.IsHome, rest, row.RatingPre)
		if ok {
			result.Examples = append(result.Examples, models.TrainingExample{
				GameID:   row.GameID,
				TeamID:   row.TeamID,
				TeamName: row.TeamName,
				GameDate: row.GameDate,
				Win:      row.Won(),
				Features: vector,
			})
		} else {
			result.Dropped[DropReasonInsufficientHistory]++
		}

		history.record(&row.GameRow)
	}

	return result, nil
}
