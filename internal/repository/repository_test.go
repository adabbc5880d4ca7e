package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/nba-oracle/internal/database"
	"github.com/yourusername/nba-oracle/internal/models"
)

func setupRepositories(t *testing.T) (*Repositories, context.Context) {
	t.Helper()
	db := database.SetupTestDB(t)
	t.Cleanup(func() { database.TeardownTestDB(t, db) })

	repos, err := NewRepositories(db)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return repos, ctx
}

func testGameRow(gameID, teamID string, date time.Time, home bool, result models.Result) models.GameRow {
	pm := 4.0
	if result == models.ResultLoss {
		pm = -4
	}
	return models.GameRow{
		SeasonID: "22023", GameID: gameID, TeamID: teamID, TeamName: "Team " + teamID,
		GameDate: date, Matchup: "A vs. B", IsHome: home,
		FGM: 40, FGA: 85, FG3M: 12, FTM: 15, FTA: 20, OREB: 10, DREB: 33, TOV: 13, PTS: 107,
		PlusMinus: &pm, Result: result,
	}
}

// TestNewRepositoriesRequiresDB tests constructor validation
func TestNewRepositoriesRequiresDB(t *testing.T) {
	_, err := NewRepositories(nil)
	assert.Error(t, err)
}

// TestDecimalRoundTrip tests the text conversion used for fair odds columns
func TestDecimalRoundTrip(t *testing.T) {
	assert.Nil(t, decimalText(nil))
	d, err := parseDecimal(nil)
	require.NoError(t, err)
	assert.Nil(t, d)

	odds := decimal.RequireFromString("1.54")
	d, err = parseDecimal(decimalText(&odds))
	require.NoError(t, err)
	assert.True(t, odds.Equal(*d))

	bad := "n/a"
	_, err = parseDecimal(&bad)
	assert.Error(t, err)
}

// TestGameRowArgs tests that dates are stored without a time component
func TestGameRowArgs(t *testing.T) {
	row := testGameRow("g1", "A", time.Date(2024, 1, 5, 19, 30, 0, 0, time.UTC), true, models.ResultWin)
	args := gameRowArgs(&row)
	require.Len(t, args, 19)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), args[5])
	assert.Equal(t, "W", args[18])
}

// TestGameRowRepositoryUpsert tests insert, update and ordered listing
func TestGameRowRepositoryUpsert(t *testing.T) {
	repos, ctx := setupRepositories(t)
	d1 := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 2)

	rows := []models.GameRow{
		testGameRow("g2", "B", d2, false, models.ResultLoss),
		testGameRow("g1", "B", d1, false, models.ResultLoss),
		testGameRow("g1", "A", d1, true, models.ResultWin),
	}
	res, err := repos.Games.UpsertBatch(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, UpsertResult{Inserted: 3}, res)

	rows[0].PTS = 99
	res, err = repos.Games.UpsertBatch(ctx, rows[:1])
	require.NoError(t, err)
	assert.Equal(t, UpsertResult{Updated: 1}, res)

	all, err := repos.Games.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "A", all[0].TeamID)
	assert.Equal(t, "B", all[1].TeamID)
	assert.Equal(t, "g2", all[2].GameID)
	assert.Equal(t, 99, all[2].PTS)

	got, err := repos.Games.Get(ctx, "g1", "A")
	require.NoError(t, err)
	assert.Equal(t, models.ResultWin, got.Result)
	require.NotNil(t, got.PlusMinus)

	_, err = repos.Games.Get(ctx, "missing", "A")
	assert.ErrorIs(t, err, models.ErrNotFound)

	latest, err := repos.Games.LatestGameDate(ctx)
	require.NoError(t, err)
	assert.True(t, latest.Equal(d2))

	n, err := repos.Games.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

// TestPredictionRepository tests storing and reading fixture predictions
func TestPredictionRepository(t *testing.T) {
	repos, ctx := setupRepositories(t)

	runID := uuid.New()
	p := 0.65
	odds := models.FairOdds(p)
	away := models.FairOdds(1 - p)
	available := &models.FixturePrediction{
		ID: uuid.New(), RunID: runID, GameDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		HomeTeamID: "A", AwayTeamID: "B", Status: models.PredictionAvailable,
		ProbHome: &p, ProbAway: &p, HomeWinProb: &p, HomeFairOdds: &odds, AwayFairOdds: &away,
		ModelVersion: "v1", PredictedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	unavailable := &models.FixturePrediction{
		ID: uuid.New(), RunID: runID, GameDate: available.GameDate,
		HomeTeamID: "C", AwayTeamID: "D", Status: models.PredictionUnavailable,
		Reason: "insufficient history", ModelVersion: "v1", PredictedAt: available.PredictedAt,
	}

	require.NoError(t, repos.Predictions.InsertBatch(ctx, []*models.FixturePrediction{available, unavailable}))

	got, err := repos.Predictions.GetByRunID(ctx, runID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].IsAvailable())
	assert.True(t, odds.Equal(*got[0].HomeFairOdds))
	assert.False(t, got[1].IsAvailable())
	assert.Nil(t, got[1].HomeWinProb)

	latest, err := repos.Predictions.GetLatestForFixture(ctx, available.GameDate, "A", "B")
	require.NoError(t, err)
	assert.Equal(t, available.ID, latest.ID)

	_, err = repos.Predictions.GetLatestForFixture(ctx, available.GameDate, "X", "Y")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

// TestBacktestRunRepository tests saving and loading run summaries
func TestBacktestRunRepository(t *testing.T) {
	repos, ctx := setupRepositories(t)

	run := &models.BacktestRun{
		ID: uuid.New(), RunDate: time.Now().UTC().Truncate(time.Microsecond), Method: "holdout", ModelVersion: "v1",
		StartDate: time.Date(2023, 10, 24, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2024, 4, 14, 0, 0, 0, 0, time.UTC),
		TrainExamples: 2000, TestExamples: 350, Accuracy: 0.64, BrierScore: 0.22, LogLoss: 0.63,
		FixtureAccuracy: 0.66, FixtureBrier: 0.21, FullResults: json.RawMessage(`{"buckets":[]}`),
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, repos.BacktestRuns.Save(ctx, run))

	got, err := repos.BacktestRuns.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.Method, got.Method)
	assert.Equal(t, run.TestExamples, got.TestExamples)
	assert.JSONEq(t, `{"buckets":[]}`, string(got.FullResults))

	latest, err := repos.BacktestRuns.GetLatest(ctx, 5)
	require.NoError(t, err)
	require.Len(t, latest, 1)

	_, err = repos.BacktestRuns.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}
