package predictor

import (
	"context"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/nba-oracle/internal/models"
)

// CachedPredictor wraps a Predictor with a prediction cache. Cache failures are logged and
// fall through to the wrapped predictor.
type CachedPredictor struct {
	next         Predictor
	cache        Cache
	modelVersion string
	logger       *logrus.Logger

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCachedPredictor creates a new cached predictor
func NewCachedPredictor(next Predictor, c Cache, modelVersion string, logger *logrus.Logger) *CachedPredictor {
	if logger == nil {
		logger = logrus.New()
	}
	return &CachedPredictor{next: next, cache: c, modelVersion: modelVersion, logger: logger}
}

// PredictWinProbability implements Predictor
func (c *CachedPredictor) PredictWinProbability(ctx context.Context, features models.FeatureVector) (float64, error) {
	key := CacheKey(c.modelVersion, features)

	p, found, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.WithError(err).Warn("Prediction cache read failed")
	}
	if found {
		c.hits.Add(1)
		c.updateRatio()
		c.logger.WithField("cache_key", key).Debug("Cache hit for prediction")
		PredictorRequestsTotal.WithLabelValues("cached", "true").Inc()
		return p, nil
	}

	c.misses.Add(1)
	c.updateRatio()

	p, err = c.next.PredictWinProbability(ctx, features)
	if err != nil {
		return 0, err
	}
	if err := c.cache.Set(ctx, key, p); err != nil {
		c.logger.WithError(err).Warn("Prediction cache write failed")
	}
	return p, nil
}

// HealthCheck delegates to the wrapped predictor when it supports health checks
func (c *CachedPredictor) HealthCheck(ctx context.Context) error {
	if hc, ok := c.next.(HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

// ModelInfo delegates to the wrapped predictor
func (c *CachedPredictor) ModelInfo(ctx context.Context) (*ModelInfo, error) {
	if d, ok := c.next.(SchemaDescriber); ok {
		return d.ModelInfo(ctx)
	}
	return &ModelInfo{ModelVersion: c.modelVersion, FeatureNames: models.FeatureNames()}, nil
}

// Stats returns cache statistics
func (c *CachedPredictor) Stats() (hits, misses uint64, ratio float64) {
	hits = c.hits.Load()
	misses = c.misses.Load()
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

func (c *CachedPredictor) updateRatio() {
	_, _, ratio := c.Stats()
	PredictorCacheHitRatio.Set(ratio)
}
