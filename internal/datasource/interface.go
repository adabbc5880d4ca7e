package datasource

import (
	"context"
	"errors"
	"fmt"

	"github.com/yourusername/nba-oracle/internal/models"
)

// GameSource supplies the historical game log
type GameSource interface {
	// LoadGames returns every game row known to the source, in no particular order
	LoadGames(ctx context.Context) ([]models.GameRow, error)

	// Name returns the name of the data source
	Name() string
}

// FixtureSource supplies upcoming games to predict
type FixtureSource interface {
	LoadFixtures(ctx context.Context) ([]models.Fixture, error)
	Name() string
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "invalid_data")
	Line    int    // 1-based input line, zero when not applicable
	Message string
	Err     error
}

func (e DataSourceError) Error() string {
	msg := e.Source + ": " + e.Code + ": " + e.Message
	if e.Line > 0 {
		msg = fmt.Sprintf("%s: %s: line %d: %s", e.Source, e.Code, e.Line, e.Message)
	}
	if e.Err != nil {
		return msg + " (" + e.Err.Error() + ")"
	}
	return msg
}

func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeNotFound       = "not_found"
	ErrCodeInvalidData    = "invalid_data"
	ErrCodeMissingColumn  = "missing_column"
	ErrCodeStorageFailure = "storage_failure"
	ErrCodeUnknown        = "unknown"
)

var (
	ErrNotFound      = errors.New("data not found")
	ErrInvalidData   = errors.New("invalid data format")
	ErrMissingColumn = errors.New("missing column")
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
