package models

import (
	"strings"
	"time"
)

// Result is the outcome of a game from one team's perspective
type Result string

const (
	ResultWin  Result = "W"
	ResultLoss Result = "L"
)

// ParseResult converts a raw W/L marker into a Result
func ParseResult(raw string) (Result, error) {
	switch Result(strings.ToUpper(strings.TrimSpace(raw))) {
	case ResultWin:
		return ResultWin, nil
	case ResultLoss:
		return ResultLoss, nil
	default:
		return "", ErrInvalidResult
	}
}

// Score returns 1 for a win and 0 for a loss. ok is false for anything else.
func (r Result) Score() (score float64, ok bool) {
	switch r {
	case ResultWin:
		return 1, true
	case ResultLoss:
		return 0, true
	default:
		return 0, false
	}
}

// GameRow is one team's box score line for one game
type GameRow struct {
	SeasonID         string    `db:"season_id" json:"season_id"`
	GameID           string    `db:"game_id" json:"game_id" validate:"required"`
	TeamID           string    `db:"team_id" json:"team_id" validate:"required"`
	TeamAbbreviation string    `db:"team_abbreviation" json:"team_abbreviation"`
	TeamName         string    `db:"team_name" json:"team_name"`
	GameDate         time.Time `db:"game_date" json:"game_date" validate:"required"`
	Matchup          string    `db:"matchup" json:"matchup"`
	IsHome           bool      `db:"is_home" json:"is_home"`
	FGM              int       `db:"fgm" json:"fgm" validate:"gte=0"`
	FGA              int       `db:"fga" json:"fga" validate:"gte=0"`
	FG3M             int       `db:"fg3m" json:"fg3m" validate:"gte=0"`
	FTM              int       `db:"ftm" json:"ftm" validate:"gte=0"`
	FTA              int       `db:"fta" json:"fta" validate:"gte=0"`
	OREB             int       `db:"oreb" json:"oreb" validate:"gte=0"`
	DREB             int       `db:"dreb" json:"dreb" validate:"gte=0"`
	TOV              int       `db:"tov" json:"tov" validate:"gte=0"`
	PTS              int       `db:"pts" json:"pts" validate:"gte=0"`
	PlusMinus        *float64  `db:"plus_minus" json:"plus_minus"`
	Result           Result    `db:"result" json:"result"`
}

// Margin returns the point margin, treating a missing plus/minus as zero
func (g *GameRow) Margin() float64 {
	if g.PlusMinus == nil {
		return 0
	}
	return *g.PlusMinus
}

// Won reports whether the row records a win
func (g *GameRow) Won() bool {
	return g.Result == ResultWin
}

// Key identifies the row within a game log
func (g *GameRow) Key() RowKey {
	return RowKey{GameID: g.GameID, TeamID: g.TeamID}
}

// RowKey is the (game, team) identity of a GameRow
type RowKey struct {
	GameID string
	TeamID string
}

// RatedRow is a GameRow annotated with the team's rating before the game was played
type RatedRow struct {
	GameRow
	RatingPre float64 `db:"rating_pre" json:"rating_pre"`
}

// IsHomeFromMatchup derives home/away from matchup notation. "LAL vs. BOS" is a home
// game for LAL, "LAL @ BOS" is an away game.
func IsHomeFromMatchup(matchup string) bool {
	return !strings.Contains(matchup, "@")
}

// DateOnly truncates t to its calendar date in UTC
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from a to b
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}
