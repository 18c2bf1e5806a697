package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nba_stats/ingestion/internal/ingest"
	"nba_stats/ingestion/internal/metrics"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Runner executes one box score load
type Runner interface {
	Run(ctx context.Context, scope ingest.Scope) (*ingest.Summary, error)
}

// ScopeFunc picks the scope of a load started at now
type ScopeFunc func(now time.Time) ingest.Scope

// Scheduler triggers box score loads on a cron schedule. A trigger that
// fires while the previous load is still running is skipped.
type Scheduler struct {
	spec   string
	runner Runner
	scope  ScopeFunc
	cron   *cron.Cron

	mu      sync.Mutex
	lastRun time.Time
}

// NewScheduler creates a new scheduler instance
func NewScheduler(spec string, runner Runner, scope ScopeFunc) *Scheduler {
	logger := cronLogger{}
	return &Scheduler{
		spec:   spec,
		runner: runner,
		scope:  scope,
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}
}

// Start schedules the load and starts the cron loop
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.spec, func() {
		if err := s.RunNow(ctx); err != nil {
			log.Error().Err(err).Msg("Scheduled load failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule daily load: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.spec).
		Msg("Daily load scheduled")

	return nil
}

// Stop stops the scheduler and waits for a running load to return
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	<-s.cron.Stop().Done()

	log.Info().Msg("Scheduler stopped")
}

// RunNow runs one load for the scope of the current time
func (s *Scheduler) RunNow(ctx context.Context) error {
	start := time.Now()
	scope := s.scope(start)

	summary, err := s.runner.Run(ctx, scope)
	duration := time.Since(start).Seconds()
	if err != nil {
		metrics.RecordSync(string(scope.Kind), "error", duration)
		return fmt.Errorf("load for %s failed: %w", scope, err)
	}
	metrics.RecordSync(string(scope.Kind), "success", duration)

	s.mu.Lock()
	s.lastRun = start
	s.mu.Unlock()

	log.Info().
		Str("run_id", summary.RunID.String()).
		Str("scope", scope.String()).
		Float64("duration_seconds", duration).
		Msg("Load finished")

	return nil
}

// LastRun returns the start time of the last successful load
func (s *Scheduler) LastRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

// cronLogger routes cron's own logging through zerolog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
