package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsHomeFromMatchup(t *testing.T) {
	assert.True(t, IsHomeFromMatchup("LAL vs. BOS"))
	assert.False(t, IsHomeFromMatchup("LAL @ BOS"))
}

func TestParseResult(t *testing.T) {
	r, err := ParseResult("W")
	require.NoError(t, err)
	assert.Equal(t, ResultWin, r)

	r, err = ParseResult(" l ")
	require.NoError(t, err)
	assert.Equal(t, ResultLoss, r)

	_, err = ParseResult("T")
	assert.ErrorIs(t, err, ErrInvalidResult)

	_, ok := Result("").Score()
	assert.False(t, ok)
}

func TestFeatureVectorValuesRoundTrip(t *testing.T) {
	v := FeatureVector{IsHome: 1, RestDays: 2, RatingPre: 1510, AvgEFG10: 0.5, AvgTOV10: 0.12, AvgFTRate10: 0.2, AvgOREB10: 0.25, AvgPts10: 110}
	values := v.Values()
	require.Len(t, values, len(FeatureNames()))
	assert.Equal(t, 1510.0, values[2])

	back, err := FeatureVectorFromValues(values)
	require.NoError(t, err)
	assert.Equal(t, v, back)

	_, err = FeatureVectorFromValues(values[:3])
	assert.Error(t, err)
}

func TestFeatureNamesIsCopy(t *testing.T) {
	names := FeatureNames()
	names[0] = "changed"
	assert.Equal(t, "is_home", FeatureNames()[0])
}

func TestFairOdds(t *testing.T) {
	assert.Equal(t, "2", FairOdds(0.5).String())
	assert.Equal(t, "1.54", FairOdds(0.65).String())
	assert.True(t, FairOdds(0).IsZero())
}

func TestDataIntegrityError(t *testing.T) {
	err := NewDataIntegrityError(ErrInvalidResult, "0022300001", "1610612747", "result", "T")
	assert.True(t, errors.Is(err, ErrInvalidResult))
	assert.Contains(t, err.Error(), "0022300001")
	assert.Contains(t, err.Error(), "1610612747")
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2024, time.January, 1, 19, 30, 0, 0, time.UTC)
	b := time.Date(2024, time.January, 13, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 12, DaysBetween(a, b))
}
