// Command loadgames runs a one-off box score load outside the scheduler.
//
// Usage:
//
//	loadgames games 0022300001 0022300002 --season 2023-24
//	loadgames date 2024-01-15
//	loadgames season 2023-24
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"nba_stats/ingestion/internal/app"
	"nba_stats/ingestion/internal/config"
	"nba_stats/ingestion/internal/ingest"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "loadgames",
		Short:         "Load NBA box scores into Postgres",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(gamesCmd())
	root.AddCommand(dateCmd())
	root.AddCommand(seasonCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func gamesCmd() *cobra.Command {
	var season string
	cmd := &cobra.Command{
		Use:   "games GAME_ID...",
		Short: "Load specific games by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := gamesScope(season, args, time.Now())
			if err != nil {
				return err
			}
			return runLoad(scope)
		},
	}
	cmd.Flags().StringVar(&season, "season", "", "Season label stored with the stats (derived from today when empty)")
	return cmd
}

func dateCmd() *cobra.Command {
	var season string
	cmd := &cobra.Command{
		Use:   "date YYYY-MM-DD",
		Short: "Load every game played on a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := dateScope(args[0], season)
			if err != nil {
				return err
			}
			return runLoad(scope)
		},
	}
	cmd.Flags().StringVar(&season, "season", "", "Season label stored with the stats (derived from the date when empty)")
	return cmd
}

func seasonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "season SEASON",
		Short: "Load every regular season game of a season (e.g. 2023-24)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(ingest.SeasonScope(args[0]))
		},
	}
}

// runLoad wires the loader from the environment and runs one batch.
// Per-game failures are logged; only setup errors and cancellation fail the command.
func runLoad(scope ingest.Scope) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.SetupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize loader: %w", err)
	}
	defer a.Close()

	summary, err := a.Orchestrator.Run(ctx, scope)
	if err != nil {
		return fmt.Errorf("load interrupted: %w", err)
	}

	for _, g := range summary.Games {
		if g.Outcome == ingest.OutcomeFailed {
			log.Warn().Str("game_id", g.GameID).Err(g.Err).Msg("Game not loaded")
		}
	}
	return nil
}

func gamesScope(season string, args []string, now time.Time) (ingest.Scope, error) {
	ids := make([]string, 0, len(args))
	for _, arg := range args {
		if id := strings.TrimSpace(arg); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return ingest.Scope{}, errors.New("no game ids given")
	}

	if season == "" {
		season = ingest.SeasonForDate(now)
	}
	return ingest.GamesScope(season, ids...), nil
}

func dateScope(arg, season string) (ingest.Scope, error) {
	date, err := time.ParseInLocation(time.DateOnly, arg, time.Local)
	if err != nil {
		return ingest.Scope{}, fmt.Errorf("invalid date %q: %w", arg, err)
	}
	return ingest.DateScope(date, season), nil
}
