package predictor

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/yourusername/nba-oracle/internal/models"
)

// Predictor scores a single feature vector with the probability that the team wins
type Predictor interface {
	PredictWinProbability(ctx context.Context, features models.FeatureVector) (float64, error)
}

// HealthChecker is implemented by predictors backed by a remote service
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ModelInfo describes the model served by a predictor
type ModelInfo struct {
	ModelVersion string   `json:"model_version"`
	FeatureNames []string `json:"feature_names"`
}

// SchemaDescriber is implemented by predictors that can report their feature schema
type SchemaDescriber interface {
	ModelInfo(ctx context.Context) (*ModelInfo, error)
}

// ValidateProbability rejects NaN, infinities and values outside [0, 1]
func ValidateProbability(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 || p > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidProbability, p)
	}
	return nil
}

// VerifySchema fetches the model's feature order and fails unless it matches ours exactly
func VerifySchema(ctx context.Context, d SchemaDescriber) (*ModelInfo, error) {
	info, err := d.ModelInfo(ctx)
	if err != nil {
		return nil, err
	}
	if err := CompareSchema(info.FeatureNames); err != nil {
		return info, err
	}
	return info, nil
}

// CompareSchema checks a feature name list against models.FeatureNames
func CompareSchema(actual []string) error {
	expected := models.FeatureNames()
	if len(actual) != len(expected) {
		return fmt.Errorf("%w: expected %d features, model has %d", ErrFeatureOrderMismatch, len(expected), len(actual))
	}
	for i := range expected {
		if actual[i] != expected[i] {
			return fmt.Errorf("%w: position %d expected %q, model has %q (model order: %s)",
				ErrFeatureOrderMismatch, i, expected[i], actual[i], strings.Join(actual, ","))
		}
	}
	return nil
}
