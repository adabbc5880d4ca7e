// Package service wires data sources, the rating and feature pipeline, the predictor and
// storage into the oracle's workflows.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/nba-oracle/internal/datasource"
	"github.com/yourusername/nba-oracle/internal/logger"
	"github.com/yourusername/nba-oracle/internal/metrics"
	"github.com/yourusername/nba-oracle/internal/models"
	"github.com/yourusername/nba-oracle/internal/repository"
)

// ErrNoValidRows is returned when a source yields nothing that passes validation
var ErrNoValidRows = errors.New("no valid game rows to ingest")

// GameRowWriter stores game rows
type GameRowWriter interface {
	UpsertBatch(ctx context.Context, rows []models.GameRow) (repository.UpsertResult, error)
}

// IngestionService handles the game log ingestion workflow
type IngestionService struct {
	games      GameRowWriter
	validator  *DataValidator
	normalizer *DataNormalizer
	metrics    *IngestionMetrics
	logger     *logrus.Logger
	audit      *logger.AuditLogger
	batchSize  int
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(
	games GameRowWriter,
	validator *DataValidator,
	normalizer *DataNormalizer,
	log *logrus.Logger,
	batchSize int,
) *IngestionService {
	if batchSize <= 0 {
		batchSize = 500
	}
	if log == nil {
		log = logrus.New()
	}

	return &IngestionService{
		games:      games,
		validator:  validator,
		normalizer: normalizer,
		metrics:    NewIngestionMetrics(),
		logger:     log,
		audit:      logger.NewAuditLogger(log),
		batchSize:  batchSize,
	}
}

// Ingest loads every row from source, normalizes and validates it, and upserts the valid rows in
// batches. Rows repeated within the source are counted as duplicates and only the first copy is
// kept. A failed batch is counted and the remaining batches are still attempted.
func (s *IngestionService) Ingest(ctx context.Context, source datasource.GameSource) (*IngestionMetrics, error) {
	s.metrics.Reset()
	log := s.logger.WithField("source", source.Name())
	log.Info("Starting game log ingestion")

	rows, err := source.LoadGames(ctx)
	if err != nil {
		s.metrics.RecordError()
		s.metrics.Finish()
		return s.metrics, fmt.Errorf("failed to load games from %s: %w", source.Name(), err)
	}
	s.metrics.RecordLoaded(len(rows))
	log.WithField("rows", len(rows)).Info("Loaded game rows")

	valid := s.prepare(rows)
	if len(valid) == 0 {
		s.metrics.Finish()
		return s.metrics, ErrNoValidRows
	}

	for i := 0; i < len(valid); i += s.batchSize {
		if err := ctx.Err(); err != nil {
			s.metrics.Finish()
			return s.metrics, err
		}

		end := i + s.batchSize
		if end > len(valid) {
			end = len(valid)
		}

		res, err := s.games.UpsertBatch(ctx, valid[i:end])
		if err != nil {
			s.metrics.RecordError()
			log.WithError(err).WithField("batch_start", i).Error("Failed to store batch")
			continue
		}
		s.metrics.RecordUpserted(res.Inserted, res.Updated)
	}

	s.metrics.Finish()
	s.report(source.Name())

	if s.metrics.Stored() == 0 {
		return s.metrics, fmt.Errorf("ingestion from %s stored no rows", source.Name())
	}
	return s.metrics, nil
}

// Metrics returns the statistics of the last run
func (s *IngestionService) Metrics() *IngestionMetrics {
	return s.metrics
}

func (s *IngestionService) prepare(rows []models.GameRow) []models.GameRow {
	seen := make(map[models.RowKey]struct{}, len(rows))
	valid := make([]models.GameRow, 0, len(rows))

	for _, raw := range rows {
		row := s.normalizer.NormalizeGameRow(raw)

		if problems := s.validator.ValidateGameRow(&row); len(problems) > 0 {
			s.metrics.RecordValidationError()
			s.logger.WithFields(logrus.Fields{
				"game_id": row.GameID,
				"team_id": row.TeamID,
				"errors":  strings.Join(problems, "; "),
			}).Warn("Skipping invalid game row")
			continue
		}

		if _, dup := seen[row.Key()]; dup {
			s.metrics.RecordDuplicate()
			continue
		}
		seen[row.Key()] = struct{}{}
		valid = append(valid, row)
	}
	return valid
}

func (s *IngestionService) report(source string) {
	m := s.metrics
	m.mu.RLock()
	defer m.mu.RUnlock()

	metrics.RecordIngestion(m.Inserted, m.Updated, m.Duplicates, m.ValidationErrors)
	s.audit.LogIngestionRun(source, m.TotalRows, m.Inserted, m.Duplicates, m.ValidationErrors, m.StartTime.Add(m.Duration))
	s.logger.WithFields(logrus.Fields{
		"source":      source,
		"rows":        m.TotalRows,
		"inserted":    m.Inserted,
		"updated":     m.Updated,
		"duplicates":  m.Duplicates,
		"invalid":     m.ValidationErrors,
		"errors":      m.Errors,
		"duration_ms": m.Duration.Milliseconds(),
	}).Info("Game log ingestion complete")
}
