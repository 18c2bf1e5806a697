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
	teamExistsQuery = `SELECT EXISTS(SELECT 1 FROM teams WHERE id = $1)`

	insertTeamQuery = `
		INSERT INTO teams (id, abbreviation, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`

	getTeamQuery   = `SELECT id, abbreviation, name FROM teams WHERE id = $1`
	countTeamQuery = `SELECT COUNT(*) FROM teams`
)

// TeamRepository handles team database operations
type TeamRepository struct {
	db *Database
}

// Upsert inserts the teams that are not stored yet and returns how many were
// inserted. Existing teams are left untouched.
func (r *TeamRepository) Upsert(ctx context.Context, teams []models.Team) (int, error) {
	if len(teams) == 0 {
		return 0, nil
	}

	inserted := 0
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		for _, team := range teams {
			var exists bool
			if err := tx.QueryRow(ctx, teamExistsQuery, team.ID).Scan(&exists); err != nil {
				return fmt.Errorf("failed to check team %d: %w", team.ID, err)
			}
			if exists {
				continue
			}

			tag, err := tx.Exec(ctx, insertTeamQuery, team.ID, team.Abbreviation, team.Name)
			if err != nil {
				return fmt.Errorf("failed to insert team %d: %w", team.ID, err)
			}
			inserted += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		metrics.RecordDBQuery("upsert", "teams", "error")
		return 0, err
	}

	metrics.RecordDBQuery("upsert", "teams", "success")
	metrics.RecordRowsInserted("teams", inserted)
	log.Debug().
		Int("received", len(teams)).
		Int("inserted", inserted).
		Msg("Teams saved")

	return inserted, nil
}

// GetByID retrieves a team by its stats.nba.com id
func (r *TeamRepository) GetByID(ctx context.Context, id int64) (*models.Team, error) {
	var team models.Team
	err := r.db.conn.QueryRow(ctx, getTeamQuery, id).Scan(&team.ID, &team.Abbreviation, &team.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("team not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return &team, nil
}

// Count returns the total number of teams
func (r *TeamRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.conn.QueryRow(ctx, countTeamQuery).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count teams: %w", err)
	}
	return count, nil
}
