package features

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/nba-oracle/internal/models"
)

var seasonStart = time.Date(2023, time.October, 24, 0, 0, 0, 0, time.UTC)

type fakeRatings map[string]float64

func (f fakeRatings) Lookup(teamID string) (float64, bool) {
	r, ok := f[teamID]
	return r, ok
}

// statRow builds a box score where every rate is easy to compute by hand
func statRow(teamID string, n int, dayOffset int, pts int) models.RatedRow {
	return models.RatedRow{
		GameRow: models.GameRow{
			GameID:   fmt.Sprintf("G%03d", n),
			TeamID:   teamID,
			TeamName: "Team " + teamID,
			GameDate: seasonStart.AddDate(0, 0, dayOffset),
			IsHome:   n%2 == 0,
			FGM:      40,
			FGA:      80,
			FG3M:     10,
			FTM:      15,
			FTA:      20,
			OREB:     10,
			DREB:     30,
			TOV:      12,
			PTS:      pts,
			Result:   models.ResultWin,
		},
		RatingPre: 1500 + float64(n),
	}
}

// teamSeries builds count consecutive games for one team, two days apart
func teamSeries(teamID string, count int) []models.RatedRow {
	rows := make([]models.RatedRow, 0, count)
	for i := 0; i < count; i++ {
		rows = append(rows, statRow(teamID, i, i*2, 100+i))
	}
	return rows
}

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, err := NewPipeline(DefaultConfig())
	require.NoError(t, err)
	return p
}

// TestComputeRates tests the per-game rate formulas
func TestComputeRates(t *testing.T) {
	row := statRow("A", 0, 0, 100).GameRow
	rates := ComputeRates(&row)

	require.NotNil(t, rates.EFG)
	assert.InDelta(t, 45.0/80.0, *rates.EFG, 1e-12)
	require.NotNil(t, rates.TOVRate)
	assert.InDelta(t, 12.0/(80+0.44*20+12), *rates.TOVRate, 1e-12)
	require.NotNil(t, rates.FTRate)
	assert.InDelta(t, 15.0/80.0, *rates.FTRate, 1e-12)
	require.NotNil(t, rates.OREBRate)
	assert.InDelta(t, 0.25, *rates.OREBRate, 1e-12)
	assert.Equal(t, 100.0, rates.Points)
}

// TestComputeRatesZeroDenominators tests that undefined rates are absent rather than NaN
func TestComputeRatesZeroDenominators(t *testing.T) {
	row := models.GameRow{GameID: "G", TeamID: "A", PTS: 0}
	rates := ComputeRates(&row)

	assert.Nil(t, rates.EFG)
	assert.Nil(t, rates.TOVRate)
	assert.Nil(t, rates.FTRate)
	assert.Nil(t, rates.OREBRate)
	assert.Equal(t, 0.0, rates.Points)

	row.TOV = 3
	rates = ComputeRates(&row)
	require.NotNil(t, rates.TOVRate)
	assert.Equal(t, 1.0, *rates.TOVRate)
}

func TestWindow(t *testing.T) {
	w := NewWindow(3)
	_, ok := w.Mean()
	assert.False(t, ok)

	w.Push(1)
	w.Push(2)
	assert.Equal(t, 2, w.Len())
	_, ok = w.Mean()
	assert.False(t, ok)

	w.Push(3)
	mean, ok := w.Mean()
	require.True(t, ok)
	assert.InDelta(t, 2.0, mean, 1e-12)

	w.Push(10)
	mean, ok = w.Mean()
	require.True(t, ok)
	assert.InDelta(t, 5.0, mean, 1e-12)
	assert.Equal(t, 3, w.Len())

	w.PushOptional(nil)
	mean, _ = w.Mean()
	assert.InDelta(t, 5.0, mean, 1e-12)
}

// TestRestDays tests the clamp and first-game default
func TestRestDays(t *testing.T) {
	cfg := DefaultConfig()
	last := seasonStart

	tests := []struct {
		name        string
		current     time.Time
		hasPrevious bool
		want        float64
	}{
		{name: "first game", current: seasonStart, hasPrevious: false, want: 3},
		{name: "back to back", current: last.AddDate(0, 0, 1), hasPrevious: true, want: 1},
		{name: "two days", current: last.AddDate(0, 0, 2), hasPrevious: true, want: 2},
		{name: "long break clamps", current: last.AddDate(0, 0, 12), hasPrevious: true, want: 7},
		{name: "same day", current: last, hasPrevious: true, want: 0},
		{name: "earlier date clamps to zero", current: last.AddDate(0, 0, -3), hasPrevious: true, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RestDays(last, tt.hasPrevious, tt.current, cfg))
		})
	}
}

// TestBuildDropsRowsWithoutFullWindow tests that the first ten games of a team are excluded
func TestBuildDropsRowsWithoutFullWindow(t *testing.T) {
	p := newTestPipeline(t)
	result, err := p.Build(teamSeries("A", 12))
	require.NoError(t, err)

	require.Len(t, result.Examples, 2)
	assert.Equal(t, 10, result.Dropped[DropReasonInsufficientHistory])
	assert.Equal(t, 10, result.DroppedTotal())

	first := result.Examples[0]
	assert.Equal(t, "G010", first.GameID)
	// points for games 0..9 are 100..109
	assert.InDelta(t, 104.5, first.Features.AvgPts10, 1e-9)
	assert.InDelta(t, 45.0/80.0, first.Features.AvgEFG10, 1e-9)
	assert.Equal(t, 2.0, first.Features.RestDays)
	assert.Equal(t, 1510.0, first.Features.RatingPre)
	assert.Equal(t, 1.0, first.Features.IsHome)
	assert.True(t, first.Win)

	second := result.Examples[1]
	assert.InDelta(t, 105.5, second.Features.AvgPts10, 1e-9)
	assert.Equal(t, 0.0, second.Features.IsHome)
}

// TestBuildExcludesCurrentGame tests that a row's own statistics never reach its features
func TestBuildExcludesCurrentGame(t *testing.T) {
	p := newTestPipeline(t)
	rows := teamSeries("A", 11)
	base, err := p.Build(rows)
	require.NoError(t, err)
	require.Len(t, base.Examples, 1)

	altered := teamSeries("A", 11)
	altered[10].PTS = 999
	altered[10].FGM = 80
	altered[10].OREB = 40
	changed, err := p.Build(altered)
	require.NoError(t, err)
	require.Len(t, changed.Examples, 1)

	assert.Equal(t, base.Examples[0].Features, changed.Examples[0].Features)
}

// TestBuildSkipsUndefinedRates tests that a game with zero attempts needs a replacement game
func TestBuildSkipsUndefinedRates(t *testing.T) {
	p := newTestPipeline(t)
	rows := teamSeries("A", 11)
	rows[3].FGA = 0
	rows[3].FGM = 0
	rows[3].FG3M = 0

	result, err := p.Build(rows)
	require.NoError(t, err)
	// efg and ft rate only have nine defined values before game 10
	assert.Empty(t, result.Examples)

	rows = append(rows, statRow("A", 11, 22, 111))
	result, err = p.Build(rows)
	require.NoError(t, err)
	require.Len(t, result.Examples, 1)
	assert.InDelta(t, 45.0/80.0, result.Examples[0].Features.AvgEFG10, 1e-9)
	for _, v := range result.Examples[0].Features.Values() {
		assert.False(t, math.IsNaN(v))
	}
}

// TestBuildRejectsUnorderedRows tests the chronological precondition
func TestBuildRejectsUnorderedRows(t *testing.T) {
	p := newTestPipeline(t)
	rows := teamSeries("A", 3)
	rows[0], rows[2] = rows[2], rows[0]

	_, err := p.Build(rows)
	assert.ErrorIs(t, err, ErrUnorderedInput)
}

// TestLatestVector tests inference vectors with nine and ten prior games
func TestLatestVector(t *testing.T) {
	p := newTestPipeline(t)
	ratings := fakeRatings{"A": 1555}

	result, err := p.Build(teamSeries("A", 9))
	require.NoError(t, err)
	assert.Empty(t, result.Examples)

	asOf := seasonStart.AddDate(0, 0, 30)
	_, err = result.Snapshot.LatestVector("A", true, asOf, ratings)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientHistory))

	result, err = p.Build(teamSeries("A", 10))
	require.NoError(t, err)

	// last game was on day 18
	vector, err := result.Snapshot.LatestVector("A", true, seasonStart.AddDate(0, 0, 20), ratings)
	require.NoError(t, err)
	assert.Equal(t, 1.0, vector.IsHome)
	assert.Equal(t, 2.0, vector.RestDays)
	assert.Equal(t, 1555.0, vector.RatingPre)
	assert.InDelta(t, 104.5, vector.AvgPts10, 1e-9)

	vector, err = result.Snapshot.LatestVector("A", false, asOf, ratings)
	require.NoError(t, err)
	assert.Equal(t, 0.0, vector.IsHome)
	assert.Equal(t, 7.0, vector.RestDays)
}

func TestLatestVectorUnknownTeam(t *testing.T) {
	p := newTestPipeline(t)
	result, err := p.Build(teamSeries("A", 10))
	require.NoError(t, err)

	_, err = result.Snapshot.LatestVector("Z", true, seasonStart, fakeRatings{})
	assert.ErrorIs(t, err, ErrUnknownTeam)

	_, err = result.Snapshot.LatestVector("A", true, seasonStart, fakeRatings{})
	assert.ErrorIs(t, err, ErrUnknownTeam)
}

// TestLatestVectorRejectsEarlierFixture tests that later games never feed an earlier fixture
func TestLatestVectorRejectsEarlierFixture(t *testing.T) {
	p := newTestPipeline(t)
	ratings := fakeRatings{"A": 1540}

	// twenty games on days 0..38
	result, err := p.Build(teamSeries("A", 20))
	require.NoError(t, err)

	for _, day := range []int{21, 38} {
		_, err = result.Snapshot.LatestVector("A", true, seasonStart.AddDate(0, 0, day), ratings)
		assert.ErrorIs(t, err, ErrFixtureBeforeHistory, "day %d", day)
	}

	// a fixture later on the day after the last game is still the next game
	vector, err := result.Snapshot.LatestVector("A", true, seasonStart.AddDate(0, 0, 39).Add(19*time.Hour), ratings)
	require.NoError(t, err)
	assert.Equal(t, 1.0, vector.RestDays)
	assert.InDelta(t, 114.5, vector.AvgPts10, 1e-9)
}

func TestSnapshotTeams(t *testing.T) {
	p := newTestPipeline(t)
	rows := append(teamSeries("B", 4), teamSeries("A", 10)...)
	result, err := p.Build(rows)
	require.NoError(t, err)

	teams := result.Snapshot.Teams()
	require.Len(t, teams, 2)
	assert.Equal(t, "A", teams[0].TeamID)
	assert.True(t, teams[0].Ready)
	assert.Equal(t, "Team A", teams[0].TeamName)
	assert.Equal(t, 4, teams[1].Games)
	assert.False(t, teams[1].Ready)

	last, ok := result.Snapshot.LastSeen("A")
	require.True(t, ok)
	assert.Equal(t, seasonStart.AddDate(0, 0, 18), last)
}

// TestWriteCSV tests the exported column order
func TestWriteCSV(t *testing.T) {
	p := newTestPipeline(t)
	result, err := p.Build(teamSeries("A", 11))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, result.Examples))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{
		"TEAM_ID", "TEAM_NAME", "GAME_ID", "GAME_DATE", "WIN",
		"is_home", "rest_days", "rating_pre", "avg_efg_10", "avg_tov_10", "avg_ftrate_10", "avg_oreb_10", "avg_pts_10",
	}, records[0])
	assert.Equal(t, "G010", records[1][2])
	assert.Equal(t, "2023-11-13", records[1][3])
	assert.Equal(t, "1", records[1][4])
	assert.Equal(t, "104.5", records[1][12])
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.DefaultRestDays = 9
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.WindowSize = 0
	_, err := NewPipeline(cfg)
	assert.Error(t, err)
}
