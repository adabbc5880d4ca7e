package backtest

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/yourusername/nba-oracle/internal/models"
)

// ErrNotEnoughExamples is returned when a split would leave one side empty
var ErrNotEnoughExamples = errors.New("not enough examples")

// SortExamples orders examples by (date, game, team) without reordering ties
func SortExamples(examples []models.TrainingExample) []models.TrainingExample {
	sorted := make([]models.TrainingExample, len(examples))
	copy(sorted, examples)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := &sorted[i], &sorted[j]
		if !a.GameDate.Equal(b.GameDate) {
			return a.GameDate.Before(b.GameDate)
		}
		if a.GameID != b.GameID {
			return a.GameID < b.GameID
		}
		return a.TeamID < b.TeamID
	})
	return sorted
}

// ChronologicalSplit holds out the most recent fraction of examples as the test set. The test
// size is rounded up and nothing is shuffled.
func ChronologicalSplit(examples []models.TrainingExample, testFraction float64) (train, test []models.TrainingExample, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("test fraction must be between 0 and 1, got %v", testFraction)
	}

	sorted := SortExamples(examples)
	nTest := int(math.Ceil(testFraction * float64(len(sorted))))
	nTrain := len(sorted) - nTest
	if nTest == 0 || nTrain <= 0 {
		return nil, nil, fmt.Errorf("%w: %d examples cannot be split at %.2f", ErrNotEnoughExamples, len(sorted), testFraction)
	}
	return sorted[:nTrain], sorted[nTrain:], nil
}
