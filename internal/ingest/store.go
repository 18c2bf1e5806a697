package ingest

import (
	"context"

	"nba_stats/ingestion/internal/models"
	"nba_stats/ingestion/internal/repository"
)

// DatabaseStore persists through the repository layer
type DatabaseStore struct {
	DB *repository.Database
}

func (s DatabaseStore) UpsertTeams(ctx context.Context, teams []models.Team) (int, error) {
	return s.DB.Teams.Upsert(ctx, teams)
}

func (s DatabaseStore) UpsertPlayers(ctx context.Context, players []models.Player) (int, error) {
	return s.DB.Players.Upsert(ctx, players)
}

func (s DatabaseStore) UpsertStats(ctx context.Context, stats []models.PlayerGameStat) (int, error) {
	return s.DB.Stats.Upsert(ctx, stats)
}
