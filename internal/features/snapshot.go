package features

import (
	"fmt"
	"sort"
	"time"

	"github.com/yourusername/nba-oracle/internal/models"
)

// RatingSource provides the current rating of a team
type RatingSource interface {
	Lookup(teamID string) (float64, bool)
}

// Snapshot is the per-team trailing state after the last processed game
type Snapshot struct {
	config Config
	teams  map[string]*teamHistory
}

func newSnapshot(cfg Config) *Snapshot {
	return &Snapshot{
		config: cfg,
		teams:  make(map[string]*teamHistory),
	}
}

func (s *Snapshot) history(teamID string) *teamHistory {
	h, ok := s.teams[teamID]
	if !ok {
		h = newTeamHistory(teamID, s.config.WindowSize)
		s.teams[teamID] = h
	}
	return h
}

// LatestVector builds the feature vector for a team's next game played on asOf. The trailing
// windows cover the team's most recent games, rest is measured from its last game to asOf and
// the rating is the team's current rating. asOf must fall on a later day than the team's last
// processed game, otherwise the windows and rating would include games played on or after it.
func (s *Snapshot) LatestVector(teamID string, isHome bool, asOf time.Time, ratings RatingSource) (models.FeatureVector, error) {
	h, ok := s.teams[teamID]
	if !ok || h.games == 0 {
		return models.FeatureVector{}, fmt.Errorf("%w: %s", ErrUnknownTeam, teamID)
	}
	rating, ok := ratings.Lookup(teamID)
	if !ok {
		return models.FeatureVector{}, fmt.Errorf("%w: no rating for %s", ErrUnknownTeam, teamID)
	}
	if !models.DateOnly(asOf).After(models.DateOnly(h.lastSeen)) {
		return models.FeatureVector{}, fmt.Errorf("%w: %s played on %s, fixture is on %s", ErrFixtureBeforeHistory,
			teamID, h.lastSeen.Format(time.DateOnly), asOf.Format(time.DateOnly))
	}

	rest := RestDays(h.lastSeen, true, asOf, s.config)
	vector, ok := h.vector(isHome, rest, rating)
	if !ok {
		return models.FeatureVector{}, fmt.Errorf("%w: team %s has %d prior games, need %d",
			ErrInsufficientHistory, teamID, h.games, s.config.WindowSize)
	}
	return vector, nil
}

// TeamSummary describes a team's trailing state
type TeamSummary struct {
	TeamID   string
	TeamName string
	Games    int
	LastSeen time.Time
	Ready    bool
}

// Teams lists every team seen, sorted by team ID
func (s *Snapshot) Teams() []TeamSummary {
	out := make([]TeamSummary, 0, len(s.teams))
	for id, h := range s.teams {
		_, ready := h.vector(false, 0, 0)
		out = append(out, TeamSummary{
			TeamID:   id,
			TeamName: h.teamName,
			Games:    h.games,
			LastSeen: h.lastSeen,
			Ready:    ready,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out
}

// LastSeen returns the date of the team's most recent processed game
func (s *Snapshot) LastSeen(teamID string) (time.Time, bool) {
	h, ok := s.teams[teamID]
	if !ok || h.games == 0 {
		return time.Time{}, false
	}
	return h.lastSeen, true
}
