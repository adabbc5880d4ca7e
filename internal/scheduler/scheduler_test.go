package scheduler

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/nba-oracle/internal/datasource"
	"github.com/yourusername/nba-oracle/internal/models"
	"github.com/yourusername/nba-oracle/internal/service"
)

type countingIngester struct {
	calls atomic.Int32
	err   error
}

func (c *countingIngester) Ingest(ctx context.Context, source datasource.GameSource) (*service.IngestionMetrics, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return service.NewIngestionMetrics(), nil
}

type countingRefresher struct {
	calls atomic.Int32
}

func (c *countingRefresher) RefreshAndPredict(ctx context.Context, source datasource.FixtureSource) (*service.PredictionRun, error) {
	c.calls.Add(1)
	return &service.PredictionRun{ID: uuid.New(), Available: 1}, nil
}

type noGames struct{}

func (noGames) Name() string { return "none" }
func (noGames) LoadGames(ctx context.Context) ([]models.GameRow, error) {
	return nil, datasource.ErrNotFound
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// TestSchedulerLifecycle tests scheduling, start, next run and stop
func TestSchedulerLifecycle(t *testing.T) {
	s := NewScheduler(quietLogger())

	assert.Error(t, s.Start(), "start without jobs")

	_, err := s.ScheduleIngestion("not a cron", &countingIngester{}, noGames{})
	assert.Error(t, err)

	_, err = s.ScheduleIngestion("0 6 * * *", &countingIngester{}, noGames{})
	require.NoError(t, err)
	_, err = s.SchedulePrediction("*/30 * * * *", &countingRefresher{}, nil)
	require.NoError(t, err)

	assert.True(t, s.GetNextRun().IsZero())
	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.False(t, s.GetNextRun().IsZero())

	assert.Error(t, s.Start())
	_, err = s.ScheduleIngestion("0 7 * * *", &countingIngester{}, noGames{})
	assert.Error(t, err, "schedule while running")

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.NoError(t, s.Stop())
}

// TestRunJob tests running scheduled jobs immediately
func TestRunJob(t *testing.T) {
	s := NewScheduler(quietLogger())
	ingester := &countingIngester{err: errors.New("source unavailable")}
	refresher := &countingRefresher{}

	ingestID, err := s.ScheduleIngestion("0 6 * * *", ingester, noGames{})
	require.NoError(t, err)
	predictID, err := s.SchedulePrediction("0 8 * * *", refresher, nil)
	require.NoError(t, err)

	require.NoError(t, s.RunJob(ingestID))
	require.NoError(t, s.RunJob(predictID))
	assert.Equal(t, int32(1), ingester.calls.Load())
	assert.Equal(t, int32(1), refresher.calls.Load())

	require.NoError(t, s.RemoveJob(ingestID))
	assert.Error(t, s.RunJob(ingestID))
	assert.Len(t, s.jobIDs, 1)
}
