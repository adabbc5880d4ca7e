package datasource

import (
	"context"

	"github.com/yourusername/nba-oracle/internal/models"
)

const repositorySourceName = "database"

// GameRowLister is the part of the game row repository a source needs
type GameRowLister interface {
	ListAll(ctx context.Context) ([]models.GameRow, error)
}

// RepositoryGameSource serves the full stored history from Postgres
type RepositoryGameSource struct {
	games GameRowLister
}

// NewRepositoryGameSource creates a source backed by the game row repository
func NewRepositoryGameSource(games GameRowLister) *RepositoryGameSource {
	return &RepositoryGameSource{games: games}
}

// Name implements GameSource
func (s *RepositoryGameSource) Name() string {
	return repositorySourceName
}

// LoadGames implements GameSource
func (s *RepositoryGameSource) LoadGames(ctx context.Context) ([]models.GameRow, error) {
	rows, err := s.games.ListAll(ctx)
	if err != nil {
		return nil, NewDataSourceError(repositorySourceName, ErrCodeStorageFailure, "failed to list game rows", err)
	}
	if len(rows) == 0 {
		return nil, NewDataSourceError(repositorySourceName, ErrCodeNotFound, "no game rows stored", ErrNotFound)
	}
	return rows, nil
}
