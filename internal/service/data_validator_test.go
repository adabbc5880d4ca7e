package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/nba-oracle/internal/models"
)

const errorContainsMsg = "expected error containing %q, got %v"

func newTestValidator() *DataValidator {
	return NewDataValidator(quietLogger())
}

func containsMessage(errors []string, want string) bool {
	for _, e := range errors {
		if strings.Contains(e, want) {
			return true
		}
	}
	return false
}

// TestGameRowValidation tests box score validation rules
func TestGameRowValidation(t *testing.T) {
	validator := newTestValidator()

	tests := []struct {
		name        string
		mutate      func(r *models.GameRow)
		expectValid bool
		shouldHave  string
	}{
		{name: "Valid row", mutate: func(r *models.GameRow) {}, expectValid: true},
		{name: "Missing game id", mutate: func(r *models.GameRow) { r.GameID = "" }, shouldHave: "gameid is required"},
		{name: "Blank team id", mutate: func(r *models.GameRow) { r.TeamID = "  " }, shouldHave: "teamid is required"},
		{name: "Missing date", mutate: func(r *models.GameRow) { r.GameDate = time.Time{} }, shouldHave: "gamedate is required"},
		{name: "Negative points", mutate: func(r *models.GameRow) { r.PTS = -1 }, shouldHave: "pts must be >= 0"},
		{name: "Makes exceed attempts", mutate: func(r *models.GameRow) { r.FGM = 90 }, shouldHave: "fgm must not exceed fga"},
		{name: "Threes exceed makes", mutate: func(r *models.GameRow) { r.FG3M = 41 }, shouldHave: "fg3m must not exceed fgm"},
		{name: "Free throws exceed attempts", mutate: func(r *models.GameRow) { r.FTM = 30 }, shouldHave: "ftm must not exceed fta"},
		{name: "Unknown result", mutate: func(r *models.GameRow) { r.Result = "T" }, shouldHave: "result must be W or L"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := boxScore("g1", "A", "AAA", seasonStart, true, true)
			tt.mutate(&row)

			errors := validator.ValidateGameRow(&row)
			if tt.expectValid {
				assert.Empty(t, errors)
				return
			}
			require.NotEmpty(t, errors, "expected validation errors")
			assert.True(t, containsMessage(errors, tt.shouldHave), errorContainsMsg, tt.shouldHave, errors)
		})
	}
}

// TestFixtureValidation tests fixture validation
func TestFixtureValidation(t *testing.T) {
	validator := newTestValidator()

	ok := models.Fixture{GameDate: seasonStart, HomeTeamID: "A", AwayTeamID: "B"}
	assert.Empty(t, validator.ValidateFixture(&ok))

	self := models.Fixture{GameDate: seasonStart, HomeTeamID: "A", AwayTeamID: "A"}
	assert.True(t, containsMessage(validator.ValidateFixture(&self), "must differ"))

	undated := models.Fixture{HomeTeamID: "A", AwayTeamID: "B"}
	assert.True(t, containsMessage(validator.ValidateFixture(&undated), "gamedate is required"))
}

// TestFindDuplicates tests duplicate key detection
func TestFindDuplicates(t *testing.T) {
	rows := pairedGame("g1", "A", "B", seasonStart, true)
	rows = append(rows, rows[0], rows[0])

	dups := newTestValidator().FindDuplicates(rows)
	require.Len(t, dups, 1)
	assert.Equal(t, models.RowKey{GameID: "g1", TeamID: "A"}, dups[0])
}

// TestDataNormalizer tests canonical forms of identifiers and matchups
func TestDataNormalizer(t *testing.T) {
	n := NewDataNormalizer(quietLogger())

	row := boxScore(" g1 ", " 1610612751 ", "njn", time.Date(2012, 1, 3, 19, 30, 0, 0, time.UTC), false, true)
	row.Matchup = "njn  VS  bos"
	row.TeamName = "  New Jersey   Nets "
	row.Result = " w"

	got := n.NormalizeGameRow(row)
	assert.Equal(t, "g1", got.GameID)
	assert.Equal(t, "1610612751", got.TeamID)
	assert.Equal(t, "BKN", got.TeamAbbreviation)
	assert.Equal(t, "New Jersey Nets", got.TeamName)
	assert.Equal(t, "NJN vs. BOS", got.Matchup)
	assert.True(t, got.IsHome)
	assert.Equal(t, models.ResultWin, got.Result)
	assert.Equal(t, time.Date(2012, 1, 3, 0, 0, 0, 0, time.UTC), got.GameDate)

	assert.Equal(t, "LAL", n.NormalizeAbbreviation(" lal "))

	fx := n.NormalizeFixture(models.Fixture{HomeTeamID: " A", AwayTeamID: "B ", GameDate: time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)})
	assert.Equal(t, "A", fx.HomeTeamID)
	assert.Equal(t, "B", fx.AwayTeamID)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), fx.GameDate)
}
