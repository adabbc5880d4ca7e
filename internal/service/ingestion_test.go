package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/nba-oracle/internal/models"
)

func newTestIngestion(w GameRowWriter, batchSize int) *IngestionService {
	log := quietLogger()
	return NewIngestionService(w, NewDataValidator(log), NewDataNormalizer(log), log, batchSize)
}

// TestIngestStoresValidRows tests batching, duplicate and validation accounting
func TestIngestStoresValidRows(t *testing.T) {
	rows := rivalry(3)
	invalid := boxScore("bad", "X", "XXX", seasonStart, true, true)
	invalid.FGM = 100
	rows = append(rows, rows[0], invalid)

	writer := newFakeWriter()
	svc := newTestIngestion(writer, 4)

	m, err := svc.Ingest(context.Background(), &fakeGameSource{rows: rows})
	require.NoError(t, err)

	assert.Equal(t, len(rows), m.TotalRows)
	assert.Equal(t, 10, m.Inserted)
	assert.Equal(t, 0, m.Updated)
	assert.Equal(t, 1, m.Duplicates)
	assert.Equal(t, 1, m.ValidationErrors)
	assert.Equal(t, 3, writer.batches)
	assert.Len(t, writer.stored, 10)
	assert.Contains(t, m.String(), "Inserted=10")

	// a second run refreshes what is already stored
	m, err = svc.Ingest(context.Background(), &fakeGameSource{rows: rivalry(3)})
	require.NoError(t, err)
	assert.Equal(t, 0, m.Inserted)
	assert.Equal(t, 10, m.Updated)
}

// TestIngestNormalizesBeforeStoring tests that stored rows are canonical
func TestIngestNormalizesBeforeStoring(t *testing.T) {
	row := boxScore("g1", "A", "noh", seasonStart.Add(20*time.Hour), false, true)
	row.Matchup = "noh vs. bos"

	writer := newFakeWriter()
	_, err := newTestIngestion(writer, 10).Ingest(context.Background(), &fakeGameSource{rows: []models.GameRow{row}})
	require.NoError(t, err)

	stored := writer.stored[models.RowKey{GameID: "g1", TeamID: "A"}]
	assert.Equal(t, "NOP", stored.TeamAbbreviation)
	assert.True(t, stored.IsHome)
	assert.Equal(t, seasonStart, stored.GameDate)
}

// TestIngestContinuesAfterBatchFailure tests that one failing batch does not stop the run
func TestIngestContinuesAfterBatchFailure(t *testing.T) {
	writer := newFakeWriter()
	writer.failOn = 0

	m, err := newTestIngestion(writer, 4).Ingest(context.Background(), &fakeGameSource{rows: rivalry(3)})
	require.NoError(t, err)
	assert.Equal(t, 1, m.Errors)
	assert.Equal(t, 6, m.Inserted)
}

// TestIngestErrors tests source failures and empty input
func TestIngestErrors(t *testing.T) {
	svc := newTestIngestion(newFakeWriter(), 10)

	_, err := svc.Ingest(context.Background(), &fakeGameSource{err: errors.New("disk gone")})
	assert.ErrorContains(t, err, "disk gone")
	assert.Equal(t, 1, svc.Metrics().Errors)

	invalid := boxScore("bad", "X", "XXX", seasonStart, true, true)
	invalid.Result = "T"
	_, err = svc.Ingest(context.Background(), &fakeGameSource{rows: []models.GameRow{invalid}})
	assert.ErrorIs(t, err, ErrNoValidRows)

	writer := newFakeWriter()
	writer.failOn = 0
	_, err = newTestIngestion(writer, 100).Ingest(context.Background(), &fakeGameSource{rows: rivalry(1)})
	assert.Error(t, err)
}
