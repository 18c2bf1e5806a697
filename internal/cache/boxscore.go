package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nba_stats/ingestion/internal/metrics"
	"nba_stats/ingestion/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DefaultBoxScoreTTL applies when no TTL is configured
const DefaultBoxScoreTTL = 7 * 24 * time.Hour

// Fetcher fetches the raw box score rows of a game
type Fetcher interface {
	FetchBoxScore(ctx context.Context, gameID string) ([]models.BoxScoreRow, error)
}

// BoxScoreCache serves box scores from Redis and falls back to the wrapped
// fetcher on a miss. Only non-empty box scores are stored, so games that had
// no data yet are fetched again next time.
type BoxScoreCache struct {
	client *redis.Client
	next   Fetcher
	ttl    time.Duration
}

// NewBoxScoreCache wraps next with a Redis-backed cache
func NewBoxScoreCache(client *redis.Client, next Fetcher, ttl time.Duration) *BoxScoreCache {
	if ttl <= 0 {
		ttl = DefaultBoxScoreTTL
	}
	return &BoxScoreCache{
		client: client,
		next:   next,
		ttl:    ttl,
	}
}

// BoxScoreKey returns the Redis key of a game's box score
func BoxScoreKey(gameID string) string {
	return fmt.Sprintf("nba:boxscore:%s", gameID)
}

// FetchBoxScore returns the cached rows for gameID, fetching and storing them on a miss.
// Redis errors are logged and never fail the fetch.
func (c *BoxScoreCache) FetchBoxScore(ctx context.Context, gameID string) ([]models.BoxScoreRow, error) {
	key := BoxScoreKey(gameID)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var rows []models.BoxScoreRow
		if err := json.Unmarshal(data, &rows); err == nil {
			metrics.RecordCacheHit()
			log.Debug().Str("game_id", gameID).Int("rows", len(rows)).Msg("Box score served from cache")
			return rows, nil
		}
		log.Warn().Str("game_id", gameID).Msg("Discarding unreadable cached box score")
	case errors.Is(err, redis.Nil):
	default:
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn().Err(err).Str("game_id", gameID).Msg("Box score cache read failed")
	}
	metrics.RecordCacheMiss()

	rows, err := c.next.FetchBoxScore(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if len(rows) > 0 {
		if err := c.store(ctx, key, rows); err != nil {
			log.Warn().Err(err).Str("game_id", gameID).Msg("Box score cache write failed")
		}
	}

	return rows, nil
}

func (c *BoxScoreCache) store(ctx context.Context, key string, rows []models.BoxScoreRow) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshaling box score: %w", err)
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}
