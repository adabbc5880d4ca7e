package models

import (
	"errors"
	"fmt"
)

// Custom errors
var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicateKey     = errors.New("duplicate key violation")
	ErrInvalidResult    = errors.New("unrecognized game result")
	ErrDuplicateRow     = errors.New("duplicate game row for team")
	ErrInconsistentGame = errors.New("game rows are inconsistent")
)

// DataIntegrityError reports a game row that cannot be processed as-is.
type DataIntegrityError struct {
	GameID string
	TeamID string
	Field  string
	Value  string
	Err    error
}

// NewDataIntegrityError builds a DataIntegrityError wrapping one of the sentinel errors above.
func NewDataIntegrityError(err error, gameID, teamID, field, value string) *DataIntegrityError {
	return &DataIntegrityError{
		GameID: gameID,
		TeamID: teamID,
		Field:  field,
		Value:  value,
		Err:    err,
	}
}

func (e *DataIntegrityError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("game %s team %s: %v", e.GameID, e.TeamID, e.Err)
	}
	return fmt.Sprintf("game %s team %s: %s=%q: %v", e.GameID, e.TeamID, e.Field, e.Value, e.Err)
}

func (e *DataIntegrityError) Unwrap() error {
	return e.Err
}
