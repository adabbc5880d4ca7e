package predictor

import (
	"context"
	"math"

	"github.com/yourusername/nba-oracle/internal/models"
)

// BaselineModelVersion identifies the built-in predictor
const BaselineModelVersion = "rating-baseline"

// RatingBaseline is a logistic curve on the rating gap to the league baseline, with an
// optional home court edge expressed in rating points
type RatingBaseline struct {
	baseline float64
	homeEdge float64
}

// NewRatingBaseline creates the built-in predictor
func NewRatingBaseline(baseline, homeEdge float64) *RatingBaseline {
	return &RatingBaseline{baseline: baseline, homeEdge: homeEdge}
}

// PredictWinProbability implements Predictor
func (b *RatingBaseline) PredictWinProbability(ctx context.Context, features models.FeatureVector) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	diff := features.RatingPre - b.baseline + features.IsHome*b.homeEdge
	p := 1 / (1 + math.Pow(10, -diff/400))
	PredictorRequestsTotal.WithLabelValues("baseline", "false").Inc()
	return p, ValidateProbability(p)
}

// ModelInfo implements SchemaDescriber
func (b *RatingBaseline) ModelInfo(ctx context.Context) (*ModelInfo, error) {
	return &ModelInfo{
		ModelVersion: BaselineModelVersion,
		FeatureNames: models.FeatureNames(),
	}, nil
}
