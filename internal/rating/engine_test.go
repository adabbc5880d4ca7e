package rating

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/nba-oracle/internal/models"
)

var day0 = time.Date(2023, time.October, 24, 0, 0, 0, 0, time.UTC)

func floatPtr(v float64) *float64 {
	return &v
}

func gameRow(gameID, teamID string, dayOffset int, home bool, result models.Result, margin *float64) models.GameRow {
	return models.GameRow{
		GameID:    gameID,
		TeamID:    teamID,
		GameDate:  day0.AddDate(0, 0, dayOffset),
		IsHome:    home,
		Result:    result,
		PlusMinus: margin,
	}
}

// pairedGame builds both rows of a game where home wins by margin
func pairedGame(gameID, home, away string, dayOffset int, margin float64) []models.GameRow {
	return []models.GameRow{
		gameRow(gameID, home, dayOffset, true, models.ResultWin, floatPtr(margin)),
		gameRow(gameID, away, dayOffset, false, models.ResultLoss, floatPtr(-margin)),
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(DefaultConfig())
	require.NoError(t, err)
	return engine
}

// TestRateWinThenLoss checks the worked example 1500 -> 1511 -> 1500.5
func TestRateWinThenLoss(t *testing.T) {
	engine := newTestEngine(t)
	rows := []models.GameRow{
		gameRow("001", "A", 0, true, models.ResultWin, floatPtr(10)),
		gameRow("001", "B", 0, false, models.ResultLoss, floatPtr(-10)),
		gameRow("002", "A", 2, false, models.ResultLoss, floatPtr(-5)),
		gameRow("002", "C", 2, true, models.ResultWin, floatPtr(5)),
	}

	rated, state, _, err := engine.Rate(rows)
	require.NoError(t, err)
	require.Len(t, rated, 4)

	assert.Equal(t, "A", rated[0].TeamID)
	assert.InDelta(t, 1500.0, rated[0].RatingPre, 1e-9)
	assert.Equal(t, "A", rated[2].TeamID)
	assert.InDelta(t, 1511.0, rated[2].RatingPre, 1e-9)

	final, ok := state.Lookup("A")
	require.True(t, ok)
	assert.InDelta(t, 1500.5, final, 1e-9)
	assert.Equal(t, 2, state.GamesPlayed("A"))
}

// TestRateMissingMarginCountsAsZero tests that an absent plus/minus contributes nothing
func TestRateMissingMarginCountsAsZero(t *testing.T) {
	engine := newTestEngine(t)
	rows := []models.GameRow{
		gameRow("001", "A", 0, true, models.ResultWin, nil),
		gameRow("001", "B", 0, false, models.ResultLoss, nil),
	}

	_, state, _, err := engine.Rate(rows)
	require.NoError(t, err)
	assert.InDelta(t, 1510.0, state.Get("A"), 1e-9)
	assert.InDelta(t, 1490.0, state.Get("B"), 1e-9)
}

// TestRateDeterministic tests that input order does not change the rating sequence
func TestRateDeterministic(t *testing.T) {
	engine := newTestEngine(t)
	var rows []models.GameRow
	rows = append(rows, pairedGame("001", "A", "B", 0, 7)...)
	rows = append(rows, pairedGame("002", "C", "A", 1, 3)...)
	rows = append(rows, pairedGame("003", "B", "C", 1, 12)...)
	rows = append(rows, pairedGame("004", "A", "C", 4, 1)...)

	first, _, _, err := engine.Rate(rows)
	require.NoError(t, err)

	reversed := make([]models.GameRow, len(rows))
	for i := range rows {
		reversed[len(rows)-1-i] = rows[i]
	}
	second, _, _, err := engine.Rate(reversed)
	require.NoError(t, err)

	again, _, _, err := engine.Rate(rows)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Key(), second[i].Key())
		assert.Equal(t, first[i].RatingPre, second[i].RatingPre)
		assert.Equal(t, first[i].RatingPre, again[i].RatingPre)
	}
}

// TestRateOrdering tests the (date, game, team) sort order
func TestRateOrdering(t *testing.T) {
	engine := newTestEngine(t)
	rows := []models.GameRow{
		gameRow("010", "Z", 3, true, models.ResultWin, nil),
		gameRow("002", "B", 3, false, models.ResultLoss, nil),
		gameRow("002", "A", 3, true, models.ResultWin, nil),
		gameRow("010", "Y", 3, false, models.ResultLoss, nil),
		gameRow("099", "Q", 1, true, models.ResultWin, nil),
		gameRow("099", "R", 1, false, models.ResultLoss, nil),
	}

	rated, _, report, err := engine.Rate(rows)
	require.NoError(t, err)

	var got []string
	for _, r := range rated {
		got = append(got, r.GameID+"/"+r.TeamID)
	}
	assert.Equal(t, []string{"099/Q", "099/R", "002/A", "002/B", "010/Y", "010/Z"}, got)
	assert.Equal(t, 3, report.Games)
	assert.Equal(t, 6, report.Teams)
	assert.Empty(t, report.UnpairedGames)
}

// TestRateUpdatesAreIndependent tests that a team's update ignores the opponent's rating
func TestRateUpdatesAreIndependent(t *testing.T) {
	engine := newTestEngine(t)
	var rows []models.GameRow
	// B builds a large rating before meeting A
	rows = append(rows, pairedGame("001", "B", "X", 0, 30)...)
	rows = append(rows, pairedGame("002", "B", "Y", 1, 30)...)
	rows = append(rows, pairedGame("003", "A", "B", 2, 4)...)

	_, state, _, err := engine.Rate(rows)
	require.NoError(t, err)
	assert.InDelta(t, 1500+10+0.4, state.Get("A"), 1e-9)
}

// TestRateInvalidResult tests that unrecognized results are rejected with identifiers
func TestRateInvalidResult(t *testing.T) {
	engine := newTestEngine(t)
	rows := []models.GameRow{
		gameRow("001", "A", 0, true, models.ResultWin, nil),
		gameRow("001", "B", 0, false, models.Result("T"), nil),
	}

	_, _, _, err := engine.Rate(rows)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidResult))

	var integrity *models.DataIntegrityError
	require.True(t, errors.As(err, &integrity))
	assert.Equal(t, "001", integrity.GameID)
	assert.Equal(t, "B", integrity.TeamID)
	assert.Equal(t, "T", integrity.Value)
}

// TestOrderRowsIntegrity tests duplicate and inconsistent game detection
func TestOrderRowsIntegrity(t *testing.T) {
	tests := []struct {
		name     string
		rows     []models.GameRow
		wantErr  error
		unpaired []string
	}{
		{
			name: "duplicate team row",
			rows: []models.GameRow{
				gameRow("001", "A", 0, true, models.ResultWin, nil),
				gameRow("001", "A", 0, true, models.ResultWin, nil),
			},
			wantErr: models.ErrDuplicateRow,
		},
		{
			name: "both rows home",
			rows: []models.GameRow{
				gameRow("001", "A", 0, true, models.ResultWin, nil),
				gameRow("001", "B", 0, true, models.ResultLoss, nil),
			},
			wantErr: models.ErrInconsistentGame,
		},
		{
			name: "three rows",
			rows: []models.GameRow{
				gameRow("001", "A", 0, true, models.ResultWin, nil),
				gameRow("001", "B", 0, false, models.ResultLoss, nil),
				gameRow("001", "C", 0, false, models.ResultLoss, nil),
			},
			wantErr: models.ErrInconsistentGame,
		},
		{
			name: "single row tolerated",
			rows: []models.GameRow{
				gameRow("001", "A", 0, true, models.ResultWin, nil),
			},
			unpaired: []string{"001"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, report, err := OrderRows(tt.rows)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.unpaired, report.UnpairedGames)
		})
	}
}

// TestOrderRowsDoesNotMutateInput tests that the caller's slice keeps its order
func TestOrderRowsDoesNotMutateInput(t *testing.T) {
	rows := []models.GameRow{
		gameRow("002", "A", 5, true, models.ResultWin, nil),
		gameRow("001", "A", 1, true, models.ResultWin, nil),
	}
	_, _, err := OrderRows(rows)
	require.NoError(t, err)
	assert.Equal(t, "002", rows[0].GameID)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.K = 0
	assert.Error(t, cfg.Validate())

	_, err := NewEngine(cfg)
	assert.Error(t, err)
}
