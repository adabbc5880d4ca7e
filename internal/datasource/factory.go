package datasource

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/nba-oracle/internal/config"
)

// SourceType represents the type of data source
type SourceType string

const (
	// CSVSourceType reads the game log from a file
	CSVSourceType SourceType = "csv"
	// DatabaseSourceType reads previously ingested rows from Postgres
	DatabaseSourceType SourceType = "database"
)

// Factory creates sources based on configuration
type Factory struct {
	config config.DataConfig
	games  GameRowLister
	logger *logrus.Logger
}

// NewFactory creates a new data source factory. games may be nil when no database is configured.
func NewFactory(cfg config.DataConfig, games GameRowLister, logger *logrus.Logger) *Factory {
	return &Factory{config: cfg, games: games, logger: orDiscard(logger)}
}

// GameSource returns the configured history source
func (f *Factory) GameSource() (GameSource, error) {
	return f.Create(SourceType(f.config.Source))
}

// Create creates a game source of the given type
func (f *Factory) Create(sourceType SourceType) (GameSource, error) {
	switch sourceType {
	case CSVSourceType:
		if f.config.GamesCSV == "" {
			return nil, fmt.Errorf("csv source requires data.games_csv")
		}
		return NewCSVGameSource(f.config.GamesCSV, f.logger), nil
	case DatabaseSourceType:
		if f.games == nil {
			return nil, fmt.Errorf("database source requires a database connection")
		}
		return NewRepositoryGameSource(f.games), nil
	default:
		return nil, fmt.Errorf("unknown data source type: %s", sourceType)
	}
}

// IngestSource returns the file source used to load new rows into the database
func (f *Factory) IngestSource(path string) GameSource {
	if path == "" {
		path = f.config.GamesCSV
	}
	return NewCSVGameSource(path, f.logger)
}

// FixtureSource returns the fixture file source, overriding the configured path when path is set
func (f *Factory) FixtureSource(path string) (FixtureSource, error) {
	if path == "" {
		path = f.config.FixturesCSV
	}
	if path == "" {
		return nil, fmt.Errorf("no fixtures file configured")
	}
	return NewCSVFixtureSource(path, f.logger), nil
}
