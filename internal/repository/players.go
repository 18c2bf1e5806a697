package repository

import (
	"context"
	"errors"
	"fmt"

	"nba_stats/ingestion/internal/metrics"
	"nba_stats/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

const (
	playerExistsQuery = `SELECT EXISTS(SELECT 1 FROM players WHERE id = $1)`

	insertPlayerQuery = `
		INSERT INTO players (id, team_id, name, position, comment)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`

	getPlayerQuery   = `SELECT id, team_id, name, position, comment FROM players WHERE id = $1`
	countPlayerQuery = `SELECT COUNT(*) FROM players`
)

// PlayerRepository handles player database operations
type PlayerRepository struct {
	db *Database
}

// Upsert inserts the players that are not stored yet and returns how many
// were inserted. A stored player keeps its original team, position and comment.
func (r *PlayerRepository) Upsert(ctx context.Context, players []models.Player) (int, error) {
	if len(players) == 0 {
		return 0, nil
	}

	inserted := 0
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		for _, p := range players {
			var exists bool
			if err := tx.QueryRow(ctx, playerExistsQuery, p.ID).Scan(&exists); err != nil {
				return fmt.Errorf("failed to check player %d: %w", p.ID, err)
			}
			if exists {
				continue
			}

			tag, err := tx.Exec(ctx, insertPlayerQuery, p.ID, p.TeamID, p.Name, p.StartPosition, p.Comment)
			if err != nil {
				return fmt.Errorf("failed to insert player %d: %w", p.ID, err)
			}
			inserted += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		metrics.RecordDBQuery("upsert", "players", "error")
		return 0, err
	}

	metrics.RecordDBQuery("upsert", "players", "success")
	metrics.RecordRowsInserted("players", inserted)
	log.Debug().
		Int("received", len(players)).
		Int("inserted", inserted).
		Msg("Players saved")

	return inserted, nil
}

// GetByID retrieves a player by its stats.nba.com id
func (r *PlayerRepository) GetByID(ctx context.Context, id int64) (*models.Player, error) {
	var p models.Player
	err := r.db.conn.QueryRow(ctx, getPlayerQuery, id).Scan(&p.ID, &p.TeamID, &p.Name, &p.StartPosition, &p.Comment)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("player not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return &p, nil
}

// Count returns the total number of players
func (r *PlayerRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.conn.QueryRow(ctx, countPlayerQuery).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return count, nil
}
