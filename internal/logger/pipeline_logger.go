// Package logger provides pipeline-specific logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// PipelineLogger provides dedicated logging for rating and feature runs.
type PipelineLogger struct {
	*logrus.Entry
}

// NewPipelineLogger creates a new pipeline logger.
func NewPipelineLogger(baseLogger *logrus.Logger) *PipelineLogger {
	return &PipelineLogger{
		Entry: baseLogger.WithField("component", "pipeline"),
	}
}

// LogRatingRun logs the outcome of a rating pass.
func (pl *PipelineLogger) LogRatingRun(rows, games, teams int, duration time.Duration) {
	pl.WithFields(logrus.Fields{
		"rows":        rows,
		"games":       games,
		"teams":       teams,
		"duration_ms": duration.Milliseconds(),
	}).Info("Rating pass completed")
}

// LogUnpairedGames warns about games present with a single team row.
func (pl *PipelineLogger) LogUnpairedGames(gameIDs []string) {
	if len(gameIDs) == 0 {
		return
	}
	pl.WithFields(logrus.Fields{
		"count":    len(gameIDs),
		"game_ids": gameIDs,
	}).Warn("Games with a single team row")
}

// LogFeatureRun logs the outcome of a feature derivation pass.
func (pl *PipelineLogger) LogFeatureRun(rows, examples int, dropped map[string]int, duration time.Duration) {
	pl.WithFields(logrus.Fields{
		"rows":        rows,
		"examples":    examples,
		"dropped":     dropped,
		"duration_ms": duration.Milliseconds(),
	}).Info("Feature derivation completed")
}

// LogIntegrityError logs a row rejected for data integrity reasons.
func (pl *PipelineLogger) LogIntegrityError(gameID, teamID, field, value string, err error) {
	pl.WithFields(logrus.Fields{
		"game_id": gameID,
		"team_id": teamID,
		"field":   field,
		"value":   value,
	}).WithError(err).Error("Game row failed integrity check")
}

// LogExport logs a training table export.
func (pl *PipelineLogger) LogExport(path string, examples int) {
	pl.WithFields(logrus.Fields{
		"path":     path,
		"examples": examples,
	}).Info("Training table exported")
}
