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
	statExistsQuery = `
		SELECT EXISTS(
			SELECT 1 FROM player_history_stats WHERE game_id = $1 AND player_id = $2
		)
	`

	insertStatQuery = `
		INSERT INTO player_history_stats (
			season, game_id, player_id, start_position, minute,
			fg_made, fg_attempts, fg_pct,
			three_p_made, three_p_attempts, three_p_pct,
			ft_made, ft_attempts, ft_pct,
			offensive_rebounds, defensive_rebounds, rebounds,
			assists, steals, blocks, turnovers, personal_fouls, points, plus_minus,
			double_double, triple_double
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)
		ON CONFLICT (game_id, player_id) DO NOTHING
	`

	getStatQuery = `
		SELECT
			season, game_id, player_id, start_position, minute,
			fg_made, fg_attempts, fg_pct,
			three_p_made, three_p_attempts, three_p_pct,
			ft_made, ft_attempts, ft_pct,
			offensive_rebounds, defensive_rebounds, rebounds,
			assists, steals, blocks, turnovers, personal_fouls, points, plus_minus,
			double_double, triple_double
		FROM player_history_stats
		WHERE game_id = $1 AND player_id = $2
	`

	countStatsByGameQuery = `SELECT COUNT(*) FROM player_history_stats WHERE game_id = $1`
)

// StatsRepository handles per-game player stat database operations
type StatsRepository struct {
	db *Database
}

// Upsert inserts the stat lines whose (game, player) pair is not stored yet
// and returns how many were inserted
func (r *StatsRepository) Upsert(ctx context.Context, stats []models.PlayerGameStat) (int, error) {
	if len(stats) == 0 {
		return 0, nil
	}

	inserted := 0
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		for _, s := range stats {
			var exists bool
			if err := tx.QueryRow(ctx, statExistsQuery, s.GameID, s.PlayerID).Scan(&exists); err != nil {
				return fmt.Errorf("failed to check stats for game %d player %d: %w", s.GameID, s.PlayerID, err)
			}
			if exists {
				continue
			}

			tag, err := tx.Exec(
				ctx, insertStatQuery,
				s.Season, s.GameID, s.PlayerID, s.StartPosition, s.Minute,
				s.FGMade, s.FGAttempts, s.FGPct,
				s.ThreePMade, s.ThreePAttempts, s.ThreePPct,
				s.FTMade, s.FTAttempts, s.FTPct,
				s.OffensiveRebounds, s.DefensiveRebounds, s.Rebounds,
				s.Assists, s.Steals, s.Blocks, s.Turnovers, s.PersonalFouls, s.Points, s.PlusMinus,
				s.DoubleDouble, s.TripleDouble,
			)
			if err != nil {
				return fmt.Errorf("failed to insert stats for game %d player %d: %w", s.GameID, s.PlayerID, err)
			}
			inserted += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		metrics.RecordDBQuery("upsert", "player_history_stats", "error")
		return 0, err
	}

	metrics.RecordDBQuery("upsert", "player_history_stats", "success")
	metrics.RecordRowsInserted("player_history_stats", inserted)
	log.Debug().
		Int("received", len(stats)).
		Int("inserted", inserted).
		Msg("Player game stats saved")

	return inserted, nil
}

// GetByGameAndPlayer retrieves one player's stat line for a game
func (r *StatsRepository) GetByGameAndPlayer(ctx context.Context, gameID, playerID int64) (*models.PlayerGameStat, error) {
	var s models.PlayerGameStat
	err := r.db.conn.QueryRow(ctx, getStatQuery, gameID, playerID).Scan(
		&s.Season, &s.GameID, &s.PlayerID, &s.StartPosition, &s.Minute,
		&s.FGMade, &s.FGAttempts, &s.FGPct,
		&s.ThreePMade, &s.ThreePAttempts, &s.ThreePPct,
		&s.FTMade, &s.FTAttempts, &s.FTPct,
		&s.OffensiveRebounds, &s.DefensiveRebounds, &s.Rebounds,
		&s.Assists, &s.Steals, &s.Blocks, &s.Turnovers, &s.PersonalFouls, &s.Points, &s.PlusMinus,
		&s.DoubleDouble, &s.TripleDouble,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("stats not found for game %d player %d", gameID, playerID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return &s, nil
}

// CountByGame returns the number of stat lines stored for a game
func (r *StatsRepository) CountByGame(ctx context.Context, gameID int64) (int, error) {
	var count int
	if err := r.db.conn.QueryRow(ctx, countStatsByGameQuery, gameID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count stats: %w", err)
	}
	return count, nil
}
