package rating

import "sort"

// State tracks the current rating and games played per team
type State struct {
	baseline float64
	ratings  map[string]float64
	played   map[string]int
}

// NewState initializes an empty rating state
func NewState(baseline float64) *State {
	return &State{
		baseline: baseline,
		ratings:  make(map[string]float64),
		played:   make(map[string]int),
	}
}

// Get returns the team's rating, or the baseline for a team not yet seen
func (s *State) Get(teamID string) float64 {
	if r, ok := s.ratings[teamID]; ok {
		return r
	}
	return s.baseline
}

// Lookup returns the team's rating and whether the team has played any game
func (s *State) Lookup(teamID string) (float64, bool) {
	r, ok := s.ratings[teamID]
	return r, ok
}

// GamesPlayed returns how many games have been applied for the team
func (s *State) GamesPlayed(teamID string) int {
	return s.played[teamID]
}

// apply adds delta to the team's rating and returns the rating before the change
func (s *State) apply(teamID string, delta float64) float64 {
	pre := s.Get(teamID)
	s.ratings[teamID] = pre + delta
	s.played[teamID]++
	return pre
}

// Teams returns every rated team in sorted order
func (s *State) Teams() []string {
	teams := make([]string, 0, len(s.ratings))
	for id := range s.ratings {
		teams = append(teams, id)
	}
	sort.Strings(teams)
	return teams
}

// Snapshot copies the current ratings
func (s *State) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(s.ratings))
	for id, r := range s.ratings {
		out[id] = r
	}
	return out
}
