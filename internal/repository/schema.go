package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

const (
	statsKeyIndex = "player_history_stats_game_player_key"

	// SQLSTATE unique_violation
	uniqueViolation = "23505"
)

// schemaStatements create the three tables and the natural key index on
// player_history_stats. Every statement is safe to repeat.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS teams (
		id BIGINT PRIMARY KEY,
		name VARCHAR(100),
		abbreviation VARCHAR(3) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS players (
		id BIGINT PRIMARY KEY,
		team_id BIGINT REFERENCES teams(id),
		name VARCHAR(100) NOT NULL,
		position VARCHAR(10),
		comment TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS player_history_stats (
		id SERIAL PRIMARY KEY,
		season VARCHAR(10),
		game_id BIGINT NOT NULL,
		player_id BIGINT NOT NULL REFERENCES players(id),
		start_position VARCHAR(10),
		minute FLOAT,
		fg_made INTEGER,
		fg_attempts INTEGER,
		fg_pct FLOAT,
		three_p_made INTEGER,
		three_p_attempts INTEGER,
		three_p_pct FLOAT,
		ft_made INTEGER,
		ft_attempts INTEGER,
		ft_pct FLOAT,
		offensive_rebounds INTEGER,
		defensive_rebounds INTEGER,
		rebounds INTEGER,
		assists INTEGER,
		steals INTEGER,
		blocks INTEGER,
		turnovers INTEGER,
		personal_fouls INTEGER,
		points INTEGER,
		plus_minus FLOAT,
		double_double BOOLEAN,
		triple_double BOOLEAN
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ` + statsKeyIndex + `
		ON player_history_stats (game_id, player_id)`,
}

// EnsureSchema creates any missing tables in a single transaction
func (db *Database) EnsureSchema(ctx context.Context) error {
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		for _, stmt := range schemaStatements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
					log.Error().
						Str("index", statsKeyIndex).
						Msg("player_history_stats holds duplicate (game_id, player_id) rows; delete the duplicates, keeping the lowest id, then restart")
					return fmt.Errorf("failed to create %s: duplicate stats rows exist: %w", statsKeyIndex, err)
				}
				return fmt.Errorf("failed to create schema: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().Msg("Database tables ready")
	return nil
}
