package predictor

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/nba-oracle/internal/config"
)

// Service bundles the configured predictor with the resources it owns
type Service struct {
	Predictor    Predictor
	Transport    string
	ModelVersion string

	closers []func() error
	logger  *logrus.Logger
}

// NewFromConfig builds the predictor selected by cfg.Predictor.Transport and wraps it with the
// configured cache backend
func NewFromConfig(cfg *config.Config, logger *logrus.Logger) (*Service, error) {
	if logger == nil {
		logger = logrus.New()
	}
	pc := &cfg.Predictor
	svc := &Service{Transport: pc.Transport, ModelVersion: pc.ModelVersion, logger: logger}

	switch pc.Transport {
	case config.TransportGRPC:
		client, err := NewGRPCClient(pc, logger)
		if err != nil {
			return nil, err
		}
		svc.Predictor = NewCircuitBreaker(client, DefaultCircuitBreakerConfig(), logger)
		svc.closers = append(svc.closers, client.Close)
	case config.TransportHTTP:
		client := NewHTTPClient(pc, logger)
		svc.Predictor = client
		svc.closers = append(svc.closers, client.Close)
	case config.TransportBaseline:
		svc.Predictor = NewRatingBaseline(cfg.Pipeline.Baseline, pc.HomeEdge)
		svc.ModelVersion = BaselineModelVersion
	default:
		return nil, fmt.Errorf("unknown predictor transport: %s", pc.Transport)
	}

	switch pc.Cache.Backend {
	case config.CacheBackendMemory:
		svc.Predictor = NewCachedPredictor(svc.Predictor, NewMemoryCache(pc.CacheTTL(), pc.Cache.MaxSize), svc.ModelVersion, logger)
	case config.CacheBackendRedis:
		rc := NewRedisCache(cfg.Redis, pc.CacheTTL())
		svc.Predictor = NewCachedPredictor(svc.Predictor, rc, svc.ModelVersion, logger)
		svc.closers = append(svc.closers, rc.Close)
	}

	logger.WithFields(logrus.Fields{
		"transport":     svc.Transport,
		"model_version": svc.ModelVersion,
		"cache":         pc.Cache.Backend,
	}).Info("Predictor configured")
	return svc, nil
}

// HealthCheck checks the predictor when it is backed by a remote service
func (s *Service) HealthCheck(ctx context.Context) error {
	if hc, ok := s.Predictor.(HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

// VerifySchema compares the served feature order with ours. Predictors that cannot describe
// themselves are accepted as is.
func (s *Service) VerifySchema(ctx context.Context) (*ModelInfo, error) {
	d, ok := s.Predictor.(SchemaDescriber)
	if !ok {
		return nil, nil
	}
	return VerifySchema(ctx, d)
}

// Close releases every resource owned by the service
func (s *Service) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
