package datasource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/nba-oracle/internal/models"
)

// Game log columns, as published by the league stats endpoint
const (
	colSeasonID   = "SEASON_ID"
	colTeamID     = "TEAM_ID"
	colTeamAbbr   = "TEAM_ABBREVIATION"
	colTeamName   = "TEAM_NAME"
	colGameID     = "GAME_ID"
	colGameDate   = "GAME_DATE"
	colMatchup    = "MATCHUP"
	colWL         = "WL"
	colFGM        = "FGM"
	colFGA        = "FGA"
	colFG3M       = "FG3M"
	colFTM        = "FTM"
	colFTA        = "FTA"
	colOREB       = "OREB"
	colDREB       = "DREB"
	colTOV        = "TOV"
	colPTS        = "PTS"
	colPlusMinus  = "PLUS_MINUS"
	csvSourceName = "csv"
)

var requiredGameColumns = []string{
	colTeamID, colGameID, colGameDate, colMatchup, colWL,
	colFGM, colFGA, colFG3M, colFTM, colFTA, colOREB, colDREB, colTOV, colPTS,
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"Jan 02, 2006",
	"01/02/2006",
}

// CSVGameSource reads a game log CSV. Columns are located by header name so extra or
// reordered columns are accepted.
type CSVGameSource struct {
	path   string
	open   func() (io.ReadCloser, error)
	logger *logrus.Logger
}

// NewCSVGameSource creates a source reading the file at path
func NewCSVGameSource(path string, logger *logrus.Logger) *CSVGameSource {
	return &CSVGameSource{
		path:   path,
		open:   func() (io.ReadCloser, error) { return os.Open(path) },
		logger: orDiscard(logger),
	}
}

// NewCSVGameSourceFromReader creates a source over an in-memory reader
func NewCSVGameSourceFromReader(name string, r io.Reader, logger *logrus.Logger) *CSVGameSource {
	return &CSVGameSource{
		path:   name,
		open:   func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
		logger: orDiscard(logger),
	}
}

// Name implements GameSource
func (s *CSVGameSource) Name() string {
	return csvSourceName
}

// LoadGames implements GameSource
func (s *CSVGameSource) LoadGames(ctx context.Context) ([]models.GameRow, error) {
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
	cols, err := indexColumns(header, requiredGameColumns)
	if err != nil {
		return nil, err
	}

	var rows []models.GameRow
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

		row, err := parseGameRow(cols, record)
		if err != nil {
			return nil, DataSourceError{Source: csvSourceName, Code: ErrCodeInvalidData, Line: line, Message: err.Error(), Err: ErrInvalidData}
		}
		rows = append(rows, row)
	}

	s.logger.WithFields(logrus.Fields{
		"path": s.path,
		"rows": len(rows),
	}).Info("Loaded game log")
	return rows, nil
}

func parseGameRow(cols columns, record []string) (models.GameRow, error) {
	var err error
	row := models.GameRow{
		SeasonID:         cols.get(record, colSeasonID),
		GameID:           cols.get(record, colGameID),
		TeamID:           cols.get(record, colTeamID),
		TeamAbbreviation: cols.get(record, colTeamAbbr),
		TeamName:         cols.get(record, colTeamName),
		Matchup:          cols.get(record, colMatchup),
		Result:           models.Result(strings.ToUpper(cols.get(record, colWL))),
	}
	row.IsHome = models.IsHomeFromMatchup(row.Matchup)

	if row.GameDate, err = parseDate(cols.get(record, colGameDate)); err != nil {
		return row, err
	}

	counts := []struct {
		col string
		dst *int
	}{
		{colFGM, &row.FGM},
		{colFGA, &row.FGA},
		{colFG3M, &row.FG3M},
		{colFTM, &row.FTM},
		{colFTA, &row.FTA},
		{colOREB, &row.OREB},
		{colDREB, &row.DREB},
		{colTOV, &row.TOV},
		{colPTS, &row.PTS},
	}
	for _, c := range counts {
		if *c.dst, err = parseCount(cols.get(record, c.col)); err != nil {
			return row, fmt.Errorf("%s: %w", c.col, err)
		}
	}

	if raw := cols.get(record, colPlusMinus); raw != "" {
		pm, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return row, fmt.Errorf("%s: %w", colPlusMinus, err)
		}
		if !math.IsNaN(pm) {
			row.PlusMinus = &pm
		}
	}
	return row, nil
}

// parseCount accepts integer counts written either as "42" or "42.0"
func parseCount(raw string) (int, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%q is not a whole number", raw)
	}
	return int(f), nil
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return models.DateOnly(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized game date %q", raw)
}

// columns maps header names to record positions
type columns map[string]int

func indexColumns(header, required []string) (columns, error) {
	cols := make(columns, len(header))
	for i, h := range header {
		cols[strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	var missing []string
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, NewDataSourceError(csvSourceName, ErrCodeMissingColumn, strings.Join(missing, ", "), ErrMissingColumn)
	}
	return cols, nil
}

func (c columns) get(record []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	return cr
}

func orDiscard(logger *logrus.Logger) *logrus.Logger {
	if logger != nil {
		return logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
