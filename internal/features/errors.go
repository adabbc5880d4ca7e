package features

import "errors"

var (
	// ErrInsufficientHistory is returned when a team has fewer prior games than the window needs
	ErrInsufficientHistory = errors.New("insufficient history")
	// ErrUnknownTeam is returned when a team never appears in the game log
	ErrUnknownTeam = errors.New("unknown team")
	// ErrFixtureBeforeHistory is returned when a fixture is not dated after the team's last processed game
	ErrFixtureBeforeHistory = errors.New("fixture is not after the team's last game")
	// ErrUnorderedInput is returned when rated rows are not in chronological order per team
	ErrUnorderedInput = errors.New("rated rows are not in chronological order")
)
