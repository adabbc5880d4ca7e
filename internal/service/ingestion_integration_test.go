package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/nba-oracle/internal/database"
	"github.com/yourusername/nba-oracle/internal/datasource"
	"github.com/yourusername/nba-oracle/internal/repository"
)

// TestIngestionIntoPostgres tests ingestion followed by a rebuild from the stored history
func TestIngestionIntoPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := repository.NewRepositories(db)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	m, err := newTestIngestion(repos.Games, 8).Ingest(ctx, &fakeGameSource{rows: rivalry(12)})
	require.NoError(t, err)
	assert.Equal(t, 28, m.Inserted)

	builder, err := NewDatasetBuilder(testPipelineConfig(), quietLogger())
	require.NoError(t, err)
	oracle := NewOracle(datasource.NewRepositoryGameSource(repos.Games), builder, nil, quietLogger())

	ds, err := oracle.Rebuild(ctx)
	require.NoError(t, err)
	assert.Len(t, ds.Examples(), 4)
}
