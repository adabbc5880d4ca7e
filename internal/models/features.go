package models

import (
	"fmt"
	"time"
)

var featureNames = []string{
	"is_home",
	"rest_days",
	"rating_pre",
	"avg_efg_10",
	"avg_tov_10",
	"avg_ftrate_10",
	"avg_oreb_10",
	"avg_pts_10",
}

// FeatureNames returns the feature schema in the order consumed by the predictor
func FeatureNames() []string {
	names := make([]string, len(featureNames))
	copy(names, featureNames)
	return names
}

// FeatureVector is the fixed-order input to the win probability predictor
type FeatureVector struct {
	IsHome      float64 `json:"is_home"`
	RestDays    float64 `json:"rest_days"`
	RatingPre   float64 `json:"rating_pre"`
	AvgEFG10    float64 `json:"avg_efg_10"`
	AvgTOV10    float64 `json:"avg_tov_10"`
	AvgFTRate10 float64 `json:"avg_ftrate_10"`
	AvgOREB10   float64 `json:"avg_oreb_10"`
	AvgPts10    float64 `json:"avg_pts_10"`
}

// Values flattens the vector in FeatureNames order
func (v FeatureVector) Values() []float64 {
	return []float64{
		v.IsHome,
		v.RestDays,
		v.RatingPre,
		v.AvgEFG10,
		v.AvgTOV10,
		v.AvgFTRate10,
		v.AvgOREB10,
		v.AvgPts10,
	}
}

// FeatureVectorFromValues is the inverse of Values
func FeatureVectorFromValues(values []float64) (FeatureVector, error) {
	if len(values) != len(featureNames) {
		return FeatureVector{}, fmt.Errorf("expected %d feature values, got %d", len(featureNames), len(values))
	}
	return FeatureVector{
		IsHome:      values[0],
		RestDays:    values[1],
		RatingPre:   values[2],
		AvgEFG10:    values[3],
		AvgTOV10:    values[4],
		AvgFTRate10: values[5],
		AvgOREB10:   values[6],
		AvgPts10:    values[7],
	}, nil
}

// TrainingExample is one eligible game row with its features and outcome label
type TrainingExample struct {
	GameID   string        `json:"game_id"`
	TeamID   string        `json:"team_id"`
	TeamName string        `json:"team_name"`
	GameDate time.Time     `json:"game_date"`
	Win      bool          `json:"win"`
	Features FeatureVector `json:"features"`
}

// Label returns 1 for a win and 0 otherwise
func (e TrainingExample) Label() float64 {
	if e.Win {
		return 1
	}
	return 0
}
