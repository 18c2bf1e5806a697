// Package app wires configuration, storage, the stats.nba.com client and the
// orchestrator together for the command binaries.
package app

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"nba_stats/ingestion/internal/cache"
	"nba_stats/ingestion/internal/client"
	"nba_stats/ingestion/internal/config"
	"nba_stats/ingestion/internal/ingest"
	"nba_stats/ingestion/internal/repository"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// App holds the long-lived components of a loader process
type App struct {
	Config       *config.Config
	DB           *repository.Database
	Client       *client.Client
	Cache        *cache.RedisCache // nil when Redis is disabled or unreachable
	Orchestrator *ingest.Orchestrator
}

// New connects to PostgreSQL, ensures the schema and builds the orchestrator.
// Redis is optional: when it cannot be reached the loader runs without a cache.
func New(ctx context.Context, cfg *config.Config, opts ...ingest.Option) (*App, error) {
	db, err := repository.NewDatabase(ctx, cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	a := &App{
		Config: cfg,
		DB:     db,
		Client: client.NewClient(cfg.StatsBaseURL, cfg.StatsTimeout, cfg.StatsRequestDelay, cfg.StatsMaxRetries),
	}
	log.Info().
		Str("base_url", cfg.StatsBaseURL).
		Dur("request_delay", cfg.StatsRequestDelay).
		Msg("stats.nba.com client initialized")

	var fetcher ingest.BoxScoreFetcher = a.Client
	if cfg.RedisEnabled {
		redisCache, err := cache.NewRedisCache(cache.Config{
			Host:     cfg.RedisHost,
			Port:     strconv.Itoa(cfg.RedisPort),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
		} else {
			a.Cache = redisCache
			fetcher = cache.NewBoxScoreCache(redisCache.Client(), a.Client, cfg.CacheTTLBoxScore)
			log.Info().Str("addr", cfg.RedisAddr()).Msg("Redis cache connected")
		}
	}

	a.Orchestrator = ingest.New(a.Client, fetcher, ingest.DatabaseStore{DB: db}, opts...)
	return a, nil
}

// Close releases the database pool and the Redis connection
func (a *App) Close() {
	if a.Cache != nil {
		a.Cache.Close()
	}
	a.DB.Close()
}

// ConfiguredScope returns the scope a load started at now should cover
func ConfiguredScope(cfg *config.Config) func(now time.Time) ingest.Scope {
	return func(now time.Time) ingest.Scope {
		if cfg.LoadMode == config.ModeSeason {
			return ingest.SeasonScope(cfg.LoadSeason)
		}
		return ingest.DateScope(cfg.TargetDate(now), cfg.LoadSeason)
	}
}

// SetupLogger configures the global zerolog logger
func SetupLogger(cfg *config.Config) {
	// Pretty console logging in development
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	zerolog.SetGlobalLevel(ParseLevel(cfg.LogLevel))
}

// ParseLevel parses a LOG_LEVEL value, defaulting to info
func ParseLevel(s string) zerolog.Level {
	if s == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
