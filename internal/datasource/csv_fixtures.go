package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/nba-oracle/internal/models"
)

const (
	colHomeTeamID       = "HOME_TEAM_ID"
	colVisitorTeamID    = "VISITOR_TEAM_ID"
	colHomeKeyPlayerOut = "HOME_KEY_PLAYER_OUT"
	colAwayKeyPlayerOut = "AWAY_KEY_PLAYER_OUT"
)

var requiredFixtureColumns = []string{colGameDate, colHomeTeamID, colVisitorTeamID}

// CSVFixtureSource reads upcoming fixtures from a CSV file
type CSVFixtureSource struct {
	path   string
	open   func() (io.ReadCloser, error)
	logger *logrus.Logger
}

// NewCSVFixtureSource creates a fixture source reading the file at path
func NewCSVFixtureSource(path string, logger *logrus.Logger) *CSVFixtureSource {
	return &CSVFixtureSource{
		path:   path,
		open:   func() (io.ReadCloser, error) { return os.Open(path) },
		logger: orDiscard(logger),
	}
}

// NewCSVFixtureSourceFromReader creates a fixture source over an in-memory reader
func NewCSVFixtureSourceFromReader(name string, r io.Reader, logger *logrus.Logger) *CSVFixtureSource {
	return &CSVFixtureSource{
		path:   name,
		open:   func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
		logger: orDiscard(logger),
	}
}

// Name implements FixtureSource
func (s *CSVFixtureSource) Name() string {
	return csvSourceName
}

// LoadFixtures implements FixtureSource. Key player columns are optional and default to false.
func (s *CSVFixtureSource) LoadFixtures(ctx context.Context) ([]models.Fixture, error) {
	f, err := s.open()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, NewDataSourceError(csvSourceName, ErrCodeNotFound, s.path, ErrNotFound)
		}
		return nil, NewDataSourceError(csvSourceName, ErrCodeUnknown, "failed to open "+s.path, err)
	}
	defer f.Close()

	r := newReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData, "failed to read header", err)
	}
	cols, err := indexColumns(header, requiredFixtureColumns)
	if err != nil {
		return nil, err
	}

	var fixtures []models.Fixture
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData, "malformed record", err)
		}
		line, _ := r.FieldPos(0)

		fx, err := parseFixture(cols, record)
		if err != nil {
			return nil, DataSourceError{Source: csvSourceName, Code: ErrCodeInvalidData, Line: line, Message: err.Error(), Err: ErrInvalidData}
		}
		fixtures = append(fixtures, fx)
	}

	s.logger.WithFields(logrus.Fields{
		"path":     s.path,
		"fixtures": len(fixtures),
	}).Info("Loaded fixtures")
	return fixtures, nil
}

func parseFixture(cols columns, record []string) (models.Fixture, error) {
	fx := models.Fixture{
		GameID:     cols.get(record, colGameID),
		HomeTeamID: cols.get(record, colHomeTeamID),
		AwayTeamID: cols.get(record, colVisitorTeamID),
	}
	if fx.HomeTeamID == "" || fx.AwayTeamID == "" {
		return fx, fmt.Errorf("fixture needs both %s and %s", colHomeTeamID, colVisitorTeamID)
	}
	if fx.HomeTeamID == fx.AwayTeamID {
		return fx, fmt.Errorf("team %s cannot play itself", fx.HomeTeamID)
	}

	var err error
	if fx.GameDate, err = parseDate(cols.get(record, colGameDate)); err != nil {
		return fx, err
	}
	if fx.Overrides.HomeKeyPlayerOut, err = parseFlag(cols.get(record, colHomeKeyPlayerOut)); err != nil {
		return fx, fmt.Errorf("%s: %w", colHomeKeyPlayerOut, err)
	}
	if fx.Overrides.AwayKeyPlayerOut, err = parseFlag(cols.get(record, colAwayKeyPlayerOut)); err != nil {
		return fx, fmt.Errorf("%s: %w", colAwayKeyPlayerOut, err)
	}
	return fx, nil
}

// parseFlag accepts blank, 0/1, true/false and yes/no
func parseFlag(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "":
		return false, nil
	case "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	}
	return strconv.ParseBool(raw)
}
