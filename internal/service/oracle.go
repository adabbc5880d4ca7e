package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/nba-oracle/internal/datasource"
	"github.com/yourusername/nba-oracle/internal/models"
)

// ErrNoDataset is returned when predictions are requested before any history was built
var ErrNoDataset = errors.New("no dataset built yet")

// Oracle keeps the latest dataset built from a game source and scores fixtures against it
type Oracle struct {
	games       datasource.GameSource
	builder     *DatasetBuilder
	predictions *PredictionService
	logger      *logrus.Logger

	mu      sync.RWMutex
	dataset *Dataset
}

// NewOracle creates an oracle over a game source
func NewOracle(games datasource.GameSource, builder *DatasetBuilder, predictions *PredictionService, logger *logrus.Logger) *Oracle {
	if logger == nil {
		logger = logrus.New()
	}
	return &Oracle{games: games, builder: builder, predictions: predictions, logger: logger}
}

// Rebuild reloads the full history and replaces the current dataset
func (o *Oracle) Rebuild(ctx context.Context) (*Dataset, error) {
	rows, err := o.games.LoadGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load history from %s: %w", o.games.Name(), err)
	}
	ds, err := o.builder.Build(rows)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	o.dataset = ds
	o.mu.Unlock()
	return ds, nil
}

// Dataset returns the most recently built dataset, or nil
func (o *Oracle) Dataset() *Dataset {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.dataset
}

// Predict scores fixtures against the current dataset
func (o *Oracle) Predict(ctx context.Context, fixtures []models.Fixture) (*PredictionRun, error) {
	ds := o.Dataset()
	if ds == nil {
		return nil, ErrNoDataset
	}
	return o.predictions.PredictFixtures(ctx, ds, fixtures)
}

// RefreshAndPredict rebuilds from the game source and scores every fixture from source
func (o *Oracle) RefreshAndPredict(ctx context.Context, source datasource.FixtureSource) (*PredictionRun, error) {
	if _, err := o.Rebuild(ctx); err != nil {
		return nil, err
	}
	fixtures, err := source.LoadFixtures(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load fixtures from %s: %w", source.Name(), err)
	}

	run, err := o.Predict(ctx, fixtures)
	if err != nil {
		return nil, err
	}
	o.logger.WithFields(logrus.Fields{
		"run_id":      run.ID.String(),
		"fixtures":    len(fixtures),
		"available":   run.Available,
		"unavailable": run.Unavailable,
	}).Info("Fixture predictions refreshed")
	return run, nil
}
