package backtest

import (
	"github.com/yourusername/nba-oracle/internal/aggregator"
	"github.com/yourusername/nba-oracle/internal/models"
)

// FixtureMetrics scores the aggregated home win probability of each fully observed game
type FixtureMetrics struct {
	Metrics
	Fixtures int `json:"fixtures"`
	Unpaired int `json:"unpaired"`
}

// FixtureOutcome is one game scored the way a fixture is predicted
type FixtureOutcome struct {
	GameID      string  `json:"game_id"`
	HomeTeamID  string  `json:"home_team_id"`
	AwayTeamID  string  `json:"away_team_id"`
	HomeWinProb float64 `json:"home_win_prob"`
	HomeWon     bool    `json:"home_won"`
}

// PairFixtures groups scored rows by game and combines the home and away sides with the
// aggregator. Games without exactly one home and one away row, or whose side probabilities the
// aggregator rejects, are counted as unpaired.
func PairFixtures(scored []ScoredExample, agg *aggregator.Aggregator) (outcomes []FixtureOutcome, unpaired int) {
	byGame := make(map[string][]ScoredExample)
	var order []string
	for _, s := range scored {
		if _, ok := byGame[s.GameID]; !ok {
			order = append(order, s.GameID)
		}
		byGame[s.GameID] = append(byGame[s.GameID], s)
	}

	for _, gameID := range order {
		rows := byGame[gameID]
		if len(rows) != 2 {
			unpaired++
			continue
		}
		home, away := rows[0], rows[1]
		if away.Features.IsHome == 1 {
			home, away = away, home
		}
		if home.Features.IsHome != 1 || away.Features.IsHome != 0 || home.Win == away.Win {
			unpaired++
			continue
		}
		prob, err := agg.Combine(home.Probability, away.Probability, models.Overrides{})
		if err != nil {
			unpaired++
			continue
		}
		outcomes = append(outcomes, FixtureOutcome{
			GameID:      gameID,
			HomeTeamID:  home.TeamID,
			AwayTeamID:  away.TeamID,
			HomeWinProb: prob,
			HomeWon:     home.Win,
		})
	}
	return outcomes, unpaired
}

// EvaluateFixtures measures home win accuracy and Brier score over paired games
func EvaluateFixtures(scored []ScoredExample, agg *aggregator.Aggregator, buckets int) FixtureMetrics {
	outcomes, unpaired := PairFixtures(scored, agg)
	probs := make([]float64, len(outcomes))
	labels := make([]float64, len(outcomes))
	for i, o := range outcomes {
		probs[i] = o.HomeWinProb
		if o.HomeWon {
			labels[i] = 1
		}
	}
	return FixtureMetrics{
		Metrics:  CalculateMetrics(probs, labels, buckets),
		Fixtures: len(outcomes),
		Unpaired: unpaired,
	}
}
