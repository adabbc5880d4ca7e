// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogIngestionRun records a completed ingestion.
func (al *AuditLogger) LogIngestionRun(source string, loaded, inserted, duplicates, rejected int, finishedAt time.Time) {
	al.WithFields(logrus.Fields{
		"source":     source,
		"loaded":     loaded,
		"inserted":   inserted,
		"duplicates": duplicates,
		"rejected":   rejected,
		"timestamp":  finishedAt.Unix(),
	}).Info("Ingestion run recorded")
}

// LogPredictionRun records a batch of published fixture predictions.
func (al *AuditLogger) LogPredictionRun(runID, modelVersion string, available, unavailable int) {
	al.WithFields(logrus.Fields{
		"run_id":        runID,
		"model_version": modelVersion,
		"available":     available,
		"unavailable":   unavailable,
	}).Info("Prediction run recorded")
}

// LogBacktestRun records a persisted backtest.
func (al *AuditLogger) LogBacktestRun(runID, method string, testExamples int, accuracy, brier float64) {
	al.WithFields(logrus.Fields{
		"run_id":        runID,
		"method":        method,
		"test_examples": testExamples,
		"accuracy":      accuracy,
		"brier_score":   brier,
	}).Info("Backtest run recorded")
}

// LogSchemaCheck records the result of comparing the predictor's feature order with ours.
func (al *AuditLogger) LogSchemaCheck(modelVersion string, expected, actual []string, ok bool) {
	entry := al.WithFields(logrus.Fields{
		"model_version": modelVersion,
		"expected":      expected,
		"actual":        actual,
	})
	if ok {
		entry.Info("Predictor feature schema verified")
		return
	}
	entry.Error("Predictor feature schema mismatch")
}
