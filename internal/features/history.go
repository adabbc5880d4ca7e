package features

import (
	"time"

	"github.com/yourusername/nba-oracle/internal/models"
)

// teamHistory is the trailing state of one team, covering only games already processed
type teamHistory struct {
	teamID   string
	teamName string
	lastSeen time.Time
	games    int
	efg      *Window
	tov      *Window
	ftRate   *Window
	oreb     *Window
	points   *Window
}

func newTeamHistory(teamID string, windowSize int) *teamHistory {
	return &teamHistory{
		teamID: teamID,
		efg:    NewWindow(windowSize),
		tov:    NewWindow(windowSize),
		ftRate: NewWindow(windowSize),
		oreb:   NewWindow(windowSize),
		points: NewWindow(windowSize),
	}
}

// vector assembles a feature vector from the trailing windows. ok is false when any
// window holds fewer values than its size.
func (h *teamHistory) vector(isHome bool, restDays, rating float64) (models.FeatureVector, bool) {
	efg, ok1 := h.efg.Mean()
	tov, ok2 := h.tov.Mean()
	ftRate, ok3 := h.ftRate.Mean()
	oreb, ok4 := h.oreb.Mean()
	pts, ok5 := h.points.Mean()
	if !(ok1 && ok2 && ok3 && ok4 && ok5) {
		return models.FeatureVector{}, false
	}

	home := 0.0
	if isHome {
		home = 1
	}
	return models.FeatureVector{
		IsHome:      home,
		RestDays:    restDays,
		RatingPre:   rating,
		AvgEFG10:    efg,
		AvgTOV10:    tov,
		AvgFTRate10: ftRate,
		AvgOREB10:   oreb,
		AvgPts10:    pts,
	}, true
}

func (h *teamHistory) record(row *models.GameRow) {
	rates := ComputeRates(row)
	h.efg.PushOptional(rates.EFG)
	h.tov.PushOptional(rates.TOVRate)
	h.ftRate.PushOptional(rates.FTRate)
	h.oreb.PushOptional(rates.OREBRate)
	h.points.Push(rates.Points)

	h.lastSeen = row.GameDate
	h.games++
	if row.TeamName != "" {
		h.teamName = row.TeamName
	}
}
