package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/nba-oracle/internal/aggregator"
	"github.com/yourusername/nba-oracle/internal/features"
	"github.com/yourusername/nba-oracle/internal/logger"
	"github.com/yourusername/nba-oracle/internal/metrics"
	"github.com/yourusername/nba-oracle/internal/models"
	"github.com/yourusername/nba-oracle/internal/predictor"
)

// PredictionStore persists fixture predictions
type PredictionStore interface {
	InsertBatch(ctx context.Context, predictions []*models.FixturePrediction) error
}

// Publisher broadcasts fixture predictions to live subscribers
type Publisher interface {
	Publish(prediction *models.FixturePrediction)
}

// PredictionRun is the outcome of scoring a set of fixtures
type PredictionRun struct {
	ID           uuid.UUID
	ModelVersion string
	Predictions  []*models.FixturePrediction
	Available    int
	Unavailable  int
}

// PredictionService scores fixtures against a built dataset
type PredictionService struct {
	predictor    predictor.Predictor
	aggregator   *aggregator.Aggregator
	validator    *DataValidator
	normalizer   *DataNormalizer
	store        PredictionStore
	publisher    Publisher
	modelVersion string
	logger       *logrus.Logger
	predLogger   *logger.PredictionLogger
	audit        *logger.AuditLogger
}

// PredictionOption configures optional collaborators of the prediction service
type PredictionOption func(*PredictionService)

// WithStore persists every run through store
func WithStore(store PredictionStore) PredictionOption {
	return func(s *PredictionService) { s.store = store }
}

// WithPublisher broadcasts every prediction through p
func WithPublisher(p Publisher) PredictionOption {
	return func(s *PredictionService) { s.publisher = p }
}

// NewPredictionService creates a prediction service
func NewPredictionService(
	p predictor.Predictor,
	agg *aggregator.Aggregator,
	modelVersion string,
	log *logrus.Logger,
	opts ...PredictionOption,
) *PredictionService {
	if log == nil {
		log = logrus.New()
	}
	s := &PredictionService{
		predictor:    p,
		aggregator:   agg,
		validator:    NewDataValidator(log),
		normalizer:   NewDataNormalizer(log),
		modelVersion: modelVersion,
		logger:       log,
		predLogger:   logger.NewPredictionLogger(log),
		audit:        logger.NewAuditLogger(log),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Inputs builds both sides of a fixture as of its date: current rating, trailing windows over
// each team's most recent games and rest since each team's last game
func (s *PredictionService) Inputs(ds *Dataset, fixture models.Fixture) (models.PredictionInputs, error) {
	home, err := ds.Features.Snapshot.LatestVector(fixture.HomeTeamID, true, fixture.GameDate, ds.Ratings)
	if err != nil {
		return models.PredictionInputs{}, fmt.Errorf("home team: %w", err)
	}
	away, err := ds.Features.Snapshot.LatestVector(fixture.AwayTeamID, false, fixture.GameDate, ds.Ratings)
	if err != nil {
		return models.PredictionInputs{}, fmt.Errorf("away team: %w", err)
	}
	return models.PredictionInputs{Home: home, Away: away, Overrides: fixture.Overrides}, nil
}

// PredictFixtures scores every fixture. Fixtures that cannot be scored are returned with status
// unavailable and a reason. Context cancellation and a feature schema mismatch abort the run.
func (s *PredictionService) PredictFixtures(ctx context.Context, ds *Dataset, fixtures []models.Fixture) (*PredictionRun, error) {
	run := &PredictionRun{
		ID:           uuid.New(),
		ModelVersion: s.modelVersion,
		Predictions:  make([]*models.FixturePrediction, 0, len(fixtures)),
	}

	for _, raw := range fixtures {
		fixture := s.normalizer.NormalizeFixture(raw)
		prediction, err := s.predictFixture(ctx, run.ID, ds, fixture)
		if err != nil {
			return nil, err
		}
		if prediction.IsAvailable() {
			run.Available++
		} else {
			run.Unavailable++
		}
		run.Predictions = append(run.Predictions, prediction)
	}

	if s.store != nil && len(run.Predictions) > 0 {
		if err := s.store.InsertBatch(ctx, run.Predictions); err != nil {
			return run, fmt.Errorf("failed to store predictions: %w", err)
		}
	}
	if s.publisher != nil {
		for _, p := range run.Predictions {
			s.publisher.Publish(p)
		}
	}

	s.audit.LogPredictionRun(run.ID.String(), run.ModelVersion, run.Available, run.Unavailable)
	return run, nil
}

func (s *PredictionService) predictFixture(ctx context.Context, runID uuid.UUID, ds *Dataset, fixture models.Fixture) (*models.FixturePrediction, error) {
	prediction := &models.FixturePrediction{
		ID:               uuid.New(),
		RunID:            runID,
		GameID:           fixture.GameID,
		GameDate:         fixture.GameDate,
		HomeTeamID:       fixture.HomeTeamID,
		AwayTeamID:       fixture.AwayTeamID,
		HomeKeyPlayerOut: fixture.Overrides.HomeKeyPlayerOut,
		AwayKeyPlayerOut: fixture.Overrides.AwayKeyPlayerOut,
		ModelVersion:     s.modelVersion,
		PredictedAt:      time.Now().UTC(),
	}

	if problems := s.validator.ValidateFixture(&fixture); len(problems) > 0 {
		return s.unavailable(prediction, "invalid fixture: "+strings.Join(problems, "; ")), nil
	}

	inputs, err := s.Inputs(ds, fixture)
	if err != nil {
		if errors.Is(err, features.ErrUnknownTeam) || errors.Is(err, features.ErrInsufficientHistory) ||
			errors.Is(err, features.ErrFixtureBeforeHistory) {
			return s.unavailable(prediction, err.Error()), nil
		}
		return nil, err
	}

	probHome, err := s.score(ctx, inputs.Home)
	if err != nil {
		return s.failed(prediction, err)
	}
	probAway, err := s.score(ctx, inputs.Away)
	if err != nil {
		return s.failed(prediction, err)
	}

	final, err := s.aggregator.Combine(probHome, probAway, inputs.Overrides)
	if err != nil {
		return s.unavailable(prediction, err.Error()), nil
	}
	homeOdds := models.FairOdds(final)
	awayOdds := models.FairOdds(1 - final)

	prediction.Status = models.PredictionAvailable
	prediction.ProbHome = &probHome
	prediction.ProbAway = &probAway
	prediction.HomeWinProb = &final
	prediction.HomeFairOdds = &homeOdds
	prediction.AwayFairOdds = &awayOdds

	s.predLogger.LogFixturePrediction(fixture.GameID, fixture.HomeTeamID, fixture.AwayTeamID,
		probHome, probAway, final, fixture.Overrides.HomeKeyPlayerOut, fixture.Overrides.AwayKeyPlayerOut)
	metrics.RecordFixturePrediction(string(prediction.Status), prediction.HomeWinProb)
	return prediction, nil
}

func (s *PredictionService) score(ctx context.Context, fv models.FeatureVector) (float64, error) {
	p, err := s.predictor.PredictWinProbability(ctx, fv)
	if err != nil {
		return 0, err
	}
	if err := predictor.ValidateProbability(p); err != nil {
		return 0, err
	}
	return p, nil
}

func (s *PredictionService) failed(prediction *models.FixturePrediction, err error) (*models.FixturePrediction, error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, predictor.ErrFeatureOrderMismatch) {
		return nil, err
	}
	s.predLogger.LogPredictorError(s.modelVersion, err.Error())
	return s.unavailable(prediction, "predictor: "+err.Error()), nil
}

func (s *PredictionService) unavailable(prediction *models.FixturePrediction, reason string) *models.FixturePrediction {
	prediction.Status = models.PredictionUnavailable
	prediction.Reason = reason
	s.predLogger.LogPredictionUnavailable(prediction.GameID, prediction.HomeTeamID, prediction.AwayTeamID, reason)
	metrics.RecordFixturePrediction(string(prediction.Status), nil)
	return prediction
}
