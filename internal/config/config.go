package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load modes
const (
	ModeDaily  = "daily"
	ModeSeason = "season"
)

// MinRequestDelay is the smallest pause allowed between stats.nba.com calls
const MinRequestDelay = time.Second

// Config holds all application configuration
type Config struct {
	// PostgreSQL
	DatabaseHost     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	DatabaseUser     string `envconfig:"POSTGRES_USER" default:"postgres"`
	DatabasePassword string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	DatabaseName     string `envconfig:"POSTGRES_DB" default:"nba"`
	DatabaseSSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`

	// stats.nba.com
	StatsBaseURL      string        `envconfig:"NBA_STATS_BASE_URL" default:"https://stats.nba.com/stats"`
	StatsTimeout      time.Duration `envconfig:"NBA_STATS_TIMEOUT" default:"30s"`
	StatsRequestDelay time.Duration `envconfig:"NBA_STATS_REQUEST_DELAY" default:"1s"`
	StatsMaxRetries   int           `envconfig:"NBA_STATS_MAX_RETRIES" default:"3"`

	// Redis box score cache
	RedisEnabled     bool          `envconfig:"REDIS_ENABLED" default:"true"`
	RedisHost        string        `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort        int           `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword    string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB          int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTLBoxScore time.Duration `envconfig:"CACHE_TTL_BOXSCORE" default:"168h"`

	// Load scope
	LoadMode          string `envconfig:"LOAD_MODE" default:"daily"`
	LoadSeason        string `envconfig:"LOAD_SEASON" default:""`
	LoadDate          string `envconfig:"LOAD_DATE" default:""`
	DailyLookbackDays int    `envconfig:"DAILY_LOOKBACK_DAYS" default:"1"`

	// Scheduler
	EnableScheduler bool   `envconfig:"ENABLE_SCHEDULER" default:"false"`
	DailyLoadCron   string `envconfig:"DAILY_LOAD_CRON" default:"0 6 * * *"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"false"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if present
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DatabasePassword == "" {
		return fmt.Errorf("POSTGRES_PASSWORD is required")
	}

	if c.StatsRequestDelay < MinRequestDelay {
		return fmt.Errorf("NBA_STATS_REQUEST_DELAY must be at least %s, got %s", MinRequestDelay, c.StatsRequestDelay)
	}

	if c.StatsTimeout <= 0 {
		return fmt.Errorf("NBA_STATS_TIMEOUT must be positive")
	}

	if c.StatsMaxRetries < 0 {
		return fmt.Errorf("NBA_STATS_MAX_RETRIES cannot be negative")
	}

	switch c.LoadMode {
	case ModeDaily:
	case ModeSeason:
		if c.LoadSeason == "" {
			return fmt.Errorf("LOAD_SEASON is required when LOAD_MODE=%s", ModeSeason)
		}
	default:
		return fmt.Errorf("LOAD_MODE must be %q or %q, got %q", ModeDaily, ModeSeason, c.LoadMode)
	}

	if c.LoadDate != "" {
		if _, err := time.Parse(time.DateOnly, c.LoadDate); err != nil {
			return fmt.Errorf("LOAD_DATE must be YYYY-MM-DD: %w", err)
		}
	}

	if c.DailyLookbackDays < 0 {
		return fmt.Errorf("DAILY_LOOKBACK_DAYS cannot be negative")
	}

	return nil
}

// TargetDate returns the game date a daily load should cover:
// LOAD_DATE when set, otherwise today minus the lookback window
func (c *Config) TargetDate(now time.Time) time.Time {
	if c.LoadDate != "" {
		if d, err := time.ParseInLocation(time.DateOnly, c.LoadDate, now.Location()); err == nil {
			return d
		}
	}
	y, m, d := now.AddDate(0, 0, -c.DailyLookbackDays).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// DatabaseDSN returns the PostgreSQL connection URL. User and password are
// escaped so any characters are allowed in them.
func (c *Config) DatabaseDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DatabaseUser, c.DatabasePassword),
		Host:     net.JoinHostPort(c.DatabaseHost, strconv.Itoa(c.DatabasePort)),
		Path:     "/" + c.DatabaseName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DatabaseSSLMode),
	}
	return u.String()
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// MustLoad loads configuration or exits on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
