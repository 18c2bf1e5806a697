package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nba_stats/ingestion/internal/app"
	"nba_stats/ingestion/internal/config"
	"nba_stats/ingestion/internal/metrics"
	"nba_stats/ingestion/internal/scheduler"

	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg := config.MustLoad()
	app.SetupLogger(cfg)

	log.Info().Msg("Starting NBA box score loader")
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Str("mode", cfg.LoadMode).
		Bool("scheduler", cfg.EnableScheduler).
		Msg("Configuration loaded")

	// Create context that is cancelled on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize loader")
	}
	defer a.Close()

	if cfg.EnableMetrics {
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.MetricsPort),
			Handler:           newRouter(a.DB),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info().Int("port", cfg.MetricsPort).Msg("Starting metrics server")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("Metrics server failed")
			}
		}()
		defer shutdownServer(srv)
	}

	// Update system uptime metric
	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
			case <-ctx.Done():
				return
			}
		}
	}()

	sched := scheduler.NewScheduler(cfg.DailyLoadCron, a.Orchestrator, app.ConfiguredScope(cfg))

	if !cfg.EnableScheduler {
		// One load, then exit. Per-game failures are in the summary, not the exit code.
		if err := sched.RunNow(ctx); err != nil {
			log.Error().Err(err).Msg("Load failed")
			a.Close()
			os.Exit(1)
		}
		return
	}

	log.Info().Msg("Starting scheduler...")
	if err := sched.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	// Keep running until a shutdown signal arrives
	<-ctx.Done()
	log.Info().Msg("Received shutdown signal, gracefully shutting down...")

	sched.Stop()
	log.Info().Msg("Worker shutdown complete")
}

func shutdownServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("Metrics server shutdown failed")
	}
}
