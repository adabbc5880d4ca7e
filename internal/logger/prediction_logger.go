// Package logger provides prediction-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// PredictionLogger provides dedicated logging for fixture predictions.
type PredictionLogger struct {
	*logrus.Entry
}

// NewPredictionLogger creates a new prediction logger.
func NewPredictionLogger(baseLogger *logrus.Logger) *PredictionLogger {
	return &PredictionLogger{
		Entry: baseLogger.WithField("component", "prediction"),
	}
}

// LogFixturePrediction logs a scored fixture.
func (pl *PredictionLogger) LogFixturePrediction(gameID, homeTeamID, awayTeamID string, probHome, probAway, final float64, homeOut, awayOut bool) {
	pl.WithFields(logrus.Fields{
		"game_id":             gameID,
		"home_team_id":        homeTeamID,
		"away_team_id":        awayTeamID,
		"prob_home":           probHome,
		"prob_away":           probAway,
		"home_win_prob":       final,
		"home_key_player_out": homeOut,
		"away_key_player_out": awayOut,
	}).Info("Fixture prediction completed")
}

// LogPredictionUnavailable logs a fixture that could not be scored.
func (pl *PredictionLogger) LogPredictionUnavailable(gameID, homeTeamID, awayTeamID, reason string) {
	pl.WithFields(logrus.Fields{
		"game_id":      gameID,
		"home_team_id": homeTeamID,
		"away_team_id": awayTeamID,
		"reason":       reason,
	}).Warn("Fixture prediction unavailable")
}

// LogPredictorRequest logs a single predictor call.
func (pl *PredictionLogger) LogPredictorRequest(transport string, featuresCount int, cacheHit bool, latencyMs float64) {
	pl.WithFields(logrus.Fields{
		"transport":      transport,
		"features_count": featuresCount,
		"cache_hit":      cacheHit,
		"latency_ms":     latencyMs,
	}).Debug("Predictor request completed")
}

// LogPredictorError logs predictor failures.
func (pl *PredictionLogger) LogPredictorError(transport string, errorReason string) {
	pl.WithFields(logrus.Fields{
		"transport":    transport,
		"error_reason": errorReason,
	}).Error("Predictor request failed")
}
