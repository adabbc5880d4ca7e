package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Overrides carries manual adjustments supplied alongside a fixture
type Overrides struct {
	HomeKeyPlayerOut bool `json:"home_key_player_out"`
	AwayKeyPlayerOut bool `json:"away_key_player_out"`
}

// Fixture is an upcoming game to be predicted
type Fixture struct {
	GameID     string    `db:"game_id" json:"game_id"`
	GameDate   time.Time `db:"game_date" json:"game_date" validate:"required"`
	HomeTeamID string    `db:"home_team_id" json:"home_team_id" validate:"required"`
	AwayTeamID string    `db:"away_team_id" json:"away_team_id" validate:"required,nefield=HomeTeamID"`
	Overrides  Overrides `json:"overrides"`
}

// PredictionInputs holds both sides of a fixture ready for scoring
type PredictionInputs struct {
	Home      FeatureVector `json:"home"`
	Away      FeatureVector `json:"away"`
	Overrides Overrides     `json:"overrides"`
}

// PredictionStatus says whether a fixture could be scored
type PredictionStatus string

const (
	PredictionAvailable   PredictionStatus = "available"
	PredictionUnavailable PredictionStatus = "unavailable"
)

// FixturePrediction is the stored outcome of scoring one fixture
type FixturePrediction struct {
	ID               uuid.UUID        `db:"id" json:"id"`
	RunID            uuid.UUID        `db:"run_id" json:"run_id"`
	GameID           string           `db:"game_id" json:"game_id"`
	GameDate         time.Time        `db:"game_date" json:"game_date"`
	HomeTeamID       string           `db:"home_team_id" json:"home_team_id"`
	AwayTeamID       string           `db:"away_team_id" json:"away_team_id"`
	Status           PredictionStatus `db:"status" json:"status"`
	Reason           string           `db:"reason" json:"reason,omitempty"`
	ProbHome         *float64         `db:"prob_home" json:"prob_home,omitempty"`
	ProbAway         *float64         `db:"prob_away" json:"prob_away,omitempty"`
	HomeWinProb      *float64         `db:"home_win_prob" json:"home_win_prob,omitempty"`
	HomeFairOdds     *decimal.Decimal `db:"home_fair_odds" json:"home_fair_odds,omitempty"`
	AwayFairOdds     *decimal.Decimal `db:"away_fair_odds" json:"away_fair_odds,omitempty"`
	HomeKeyPlayerOut bool             `db:"home_key_player_out" json:"home_key_player_out"`
	AwayKeyPlayerOut bool             `db:"away_key_player_out" json:"away_key_player_out"`
	ModelVersion     string           `db:"model_version" json:"model_version"`
	PredictedAt      time.Time        `db:"predicted_at" json:"predicted_at"`
}

// IsAvailable reports whether the fixture was scored
func (p *FixturePrediction) IsAvailable() bool {
	return p.Status == PredictionAvailable && p.HomeWinProb != nil
}

// FairOdds converts a probability into decimal odds rounded to two places.
// Non-positive probabilities have no fair price and return zero.
func FairOdds(probability float64) decimal.Decimal {
	if probability <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(1).Div(decimal.NewFromFloat(probability)).Round(2)
}
