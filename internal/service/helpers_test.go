package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/nba-oracle/internal/models"
	"github.com/yourusername/nba-oracle/internal/repository"
)

var seasonStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func boxScore(gameID, teamID, abbr string, date time.Time, home, win bool) models.GameRow {
	pm := 8.0
	result := models.ResultWin
	if !win {
		pm = -8
		result = models.ResultLoss
	}
	sep := "@"
	if home {
		sep = "vs."
	}
	return models.GameRow{
		SeasonID: "22023", GameID: gameID, TeamID: teamID, TeamAbbreviation: abbr, TeamName: "Team " + abbr,
		GameDate: date, Matchup: abbr + " " + sep + " OPP", IsHome: home,
		FGM: 40, FGA: 86, FG3M: 12, FTM: 16, FTA: 21, OREB: 10, DREB: 34, TOV: 13, PTS: 108,
		PlusMinus: &pm, Result: result,
	}
}

// pairedGame returns both rows of a game the home side wins
func pairedGame(gameID, home, away string, date time.Time, homeWins bool) []models.GameRow {
	return []models.GameRow{
		boxScore(gameID, home, home, date, true, homeWins),
		boxScore(gameID, away, away, date, false, !homeWins),
	}
}

// rivalry plays n games between A and B with A winning every one, plus two games between C and D
func rivalry(n int) []models.GameRow {
	var rows []models.GameRow
	for i := 0; i < n; i++ {
		date := seasonStart.AddDate(0, 0, 2*i)
		id := fmt.Sprintf("g%03d", i)
		if i%2 == 0 {
			rows = append(rows, pairedGame(id, "A", "B", date, true)...)
		} else {
			rows = append(rows, pairedGame(id, "B", "A", date, false)...)
		}
	}
	rows = append(rows, pairedGame("c001", "C", "D", seasonStart, true)...)
	rows = append(rows, pairedGame("c002", "D", "C", seasonStart.AddDate(0, 0, 3), true)...)
	return rows
}

type fakeGameSource struct {
	rows []models.GameRow
	err  error
}

func (f *fakeGameSource) Name() string { return "fake" }

func (f *fakeGameSource) LoadGames(ctx context.Context) ([]models.GameRow, error) {
	return f.rows, f.err
}

type fakeFixtureSource struct {
	fixtures []models.Fixture
}

func (f *fakeFixtureSource) Name() string { return "fake-fixtures" }

func (f *fakeFixtureSource) LoadFixtures(ctx context.Context) ([]models.Fixture, error) {
	return f.fixtures, nil
}

type fakeWriter struct {
	mu      sync.Mutex
	stored  map[models.RowKey]models.GameRow
	batches int
	failOn  int
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{stored: make(map[models.RowKey]models.GameRow), failOn: -1}
}

func (f *fakeWriter) UpsertBatch(ctx context.Context, rows []models.GameRow) (repository.UpsertResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.batches++
	if f.batches-1 == f.failOn {
		return repository.UpsertResult{}, fmt.Errorf("connection reset")
	}

	var res repository.UpsertResult
	for _, r := range rows {
		if _, ok := f.stored[r.Key()]; ok {
			res.Updated++
		} else {
			res.Inserted++
		}
		f.stored[r.Key()] = r
	}
	return res, nil
}

type fakeStore struct {
	saved []*models.FixturePrediction
	err   error
}

func (f *fakeStore) InsertBatch(ctx context.Context, predictions []*models.FixturePrediction) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, predictions...)
	return nil
}

type fakePublisher struct {
	published []*models.FixturePrediction
}

func (f *fakePublisher) Publish(p *models.FixturePrediction) {
	f.published = append(f.published, p)
}

type stubPredictor struct {
	p   float64
	err error
}

func (s *stubPredictor) PredictWinProbability(ctx context.Context, fv models.FeatureVector) (float64, error) {
	return s.p, s.err
}
