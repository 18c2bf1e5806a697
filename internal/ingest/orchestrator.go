// Package ingest drives box score loads: it enumerates the games of a scope
// and takes each one through fetch, normalization and persistence.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nba_stats/ingestion/internal/metrics"
	"nba_stats/ingestion/internal/models"
	"nba_stats/ingestion/internal/normalizer"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// GameLister enumerates game ids from the provider schedule
type GameLister interface {
	FetchScoreboardGameIDs(ctx context.Context, date time.Time) ([]string, error)
	FetchSeasonGameIDs(ctx context.Context, season string) ([]string, error)
}

// BoxScoreFetcher fetches the raw box score rows of one game
type BoxScoreFetcher interface {
	FetchBoxScore(ctx context.Context, gameID string) ([]models.BoxScoreRow, error)
}

// Store persists normalized records. Each call returns the rows inserted.
type Store interface {
	UpsertTeams(ctx context.Context, teams []models.Team) (int, error)
	UpsertPlayers(ctx context.Context, players []models.Player) (int, error)
	UpsertStats(ctx context.Context, stats []models.PlayerGameStat) (int, error)
}

// Outcome is the terminal state of one game in a run
type Outcome string

const (
	OutcomePersisted        Outcome = "persisted"
	OutcomeSkippedEmpty     Outcome = "skipped_empty"
	OutcomeSkippedDuplicate Outcome = "skipped_duplicate"
	OutcomeFailed           Outcome = "failed"
)

// Inserted counts rows inserted per table
type Inserted struct {
	Teams   int
	Players int
	Stats   int
}

func (i *Inserted) add(o Inserted) {
	i.Teams += o.Teams
	i.Players += o.Players
	i.Stats += o.Stats
}

// GameResult is what happened to one game id
type GameResult struct {
	GameID   string
	Outcome  Outcome
	Inserted Inserted
	Dropped  int
	Err      error
}

// Summary describes a finished (or aborted) run
type Summary struct {
	RunID    uuid.UUID
	Scope    Scope
	Started  time.Time
	Finished time.Time
	Games    []GameResult
}

// Count returns the number of games that ended with outcome
func (s *Summary) Count(outcome Outcome) int {
	n := 0
	for _, g := range s.Games {
		if g.Outcome == outcome {
			n++
		}
	}
	return n
}

// Inserted returns the rows inserted across all games
func (s *Summary) Inserted() Inserted {
	var total Inserted
	for _, g := range s.Games {
		total.add(g.Inserted)
	}
	return total
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithReporter replaces the default log reporter
func WithReporter(r Reporter) Option {
	return func(o *Orchestrator) {
		o.reporter = r
	}
}

// Orchestrator runs box score loads. It holds no state between runs.
type Orchestrator struct {
	lister   GameLister
	fetcher  BoxScoreFetcher
	store    Store
	reporter Reporter
}

// New creates an Orchestrator
func New(lister GameLister, fetcher BoxScoreFetcher, store Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		lister:   lister,
		fetcher:  fetcher,
		store:    store,
		reporter: LogReporter{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run loads every game of scope in enumeration order. A failing game is
// recorded and the run moves on; only context cancellation stops it early,
// in which case the partial summary is returned with the context error.
func (o *Orchestrator) Run(ctx context.Context, scope Scope) (*Summary, error) {
	ids, err := o.enumerate(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate games for %s: %w", scope, err)
	}

	summary := &Summary{
		RunID:   uuid.New(),
		Scope:   scope,
		Started: time.Now(),
		Games:   make([]GameResult, 0, len(ids)),
	}
	logger := log.With().Str("run_id", summary.RunID.String()).Logger()

	o.reporter.OnRunStart(summary.RunID, scope, len(ids))

	// Each id is attempted at most once per run
	processed := make(map[string]struct{}, len(ids))

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			summary.Finished = time.Now()
			return summary, err
		}

		var res GameResult
		if _, seen := processed[id]; seen {
			res = GameResult{GameID: id, Outcome: OutcomeSkippedDuplicate}
		} else {
			res = o.processGame(ctx, id, scope.Season)
			processed[id] = struct{}{}

			// A game that failed because the run was cancelled is not a per-game failure
			if res.Err != nil && ctx.Err() != nil {
				logger.Warn().Str("game_id", id).Msg("Run cancelled")
				summary.Games = append(summary.Games, res)
				summary.Finished = time.Now()
				return summary, ctx.Err()
			}
		}

		summary.Games = append(summary.Games, res)
		metrics.RecordGame(string(res.Outcome), res.Dropped)
		o.reporter.OnGameDone(summary.RunID, i, len(ids), res)
	}

	summary.Finished = time.Now()
	o.reporter.OnRunComplete(summary)
	return summary, nil
}

func (o *Orchestrator) enumerate(ctx context.Context, scope Scope) ([]string, error) {
	switch scope.Kind {
	case ScopeDate:
		return o.lister.FetchScoreboardGameIDs(ctx, scope.Date)
	case ScopeSeason:
		if scope.Season == "" {
			return nil, errors.New("season scope requires a season")
		}
		return o.lister.FetchSeasonGameIDs(ctx, scope.Season)
	case ScopeGames:
		return scope.GameIDs, nil
	default:
		return nil, fmt.Errorf("unsupported scope %q", scope.Kind)
	}
}

// processGame takes one game through fetch, normalize and persist
func (o *Orchestrator) processGame(ctx context.Context, gameID, season string) GameResult {
	res := GameResult{GameID: gameID}

	rows, err := o.fetcher.FetchBoxScore(ctx, gameID)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}

	normalized := normalizer.Normalize(rows, season)
	res.Dropped = len(normalized.Dropped)
	for _, d := range normalized.Dropped {
		log.Warn().
			Str("game_id", gameID).
			Int("row", d.Index).
			Str("reason", d.Reason).
			Msg("Dropped box score row")
	}

	if normalized.Empty() {
		res.Outcome = OutcomeSkippedEmpty
		return res
	}

	if err := o.persist(ctx, normalized, &res.Inserted); err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}

	res.Outcome = OutcomePersisted
	return res
}

// persist writes teams, then players, then stats so foreign keys resolve
func (o *Orchestrator) persist(ctx context.Context, n normalizer.Result, inserted *Inserted) error {
	var err error

	if len(n.Teams) > 0 {
		if inserted.Teams, err = o.store.UpsertTeams(ctx, n.Teams); err != nil {
			return fmt.Errorf("failed to save teams: %w", err)
		}
	}
	if len(n.Players) > 0 {
		if inserted.Players, err = o.store.UpsertPlayers(ctx, n.Players); err != nil {
			return fmt.Errorf("failed to save players: %w", err)
		}
	}
	if len(n.Stats) > 0 {
		if inserted.Stats, err = o.store.UpsertStats(ctx, n.Stats); err != nil {
			return fmt.Errorf("failed to save stats: %w", err)
		}
	}
	return nil
}
