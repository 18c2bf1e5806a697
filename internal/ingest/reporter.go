package ingest

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Reporter receives progress callbacks from a run
type Reporter interface {
	OnRunStart(runID uuid.UUID, scope Scope, total int)
	OnGameDone(runID uuid.UUID, index, total int, result GameResult)
	OnRunComplete(summary *Summary)
}

// LogReporter writes progress lines to the global zerolog logger
type LogReporter struct{}

func (LogReporter) OnRunStart(runID uuid.UUID, scope Scope, total int) {
	log.Info().
		Str("run_id", runID.String()).
		Str("scope", scope.String()).
		Str("season", scope.Season).
		Int("games", total).
		Msg("Starting box score load")
}

func (LogReporter) OnGameDone(runID uuid.UUID, index, total int, result GameResult) {
	event := log.Info()
	if result.Err != nil {
		event = log.Warn().Err(result.Err)
	}

	event.
		Str("run_id", runID.String()).
		Str("game_id", result.GameID).
		Str("outcome", string(result.Outcome)).
		Int("teams", result.Inserted.Teams).
		Int("players", result.Inserted.Players).
		Int("stats", result.Inserted.Stats).
		Int("dropped", result.Dropped).
		Msgf("Game %d/%d", index+1, total)
}

func (LogReporter) OnRunComplete(summary *Summary) {
	inserted := summary.Inserted()
	log.Info().
		Str("run_id", summary.RunID.String()).
		Int("persisted", summary.Count(OutcomePersisted)).
		Int("empty", summary.Count(OutcomeSkippedEmpty)).
		Int("duplicate", summary.Count(OutcomeSkippedDuplicate)).
		Int("failed", summary.Count(OutcomeFailed)).
		Int("teams_inserted", inserted.Teams).
		Int("players_inserted", inserted.Players).
		Int("stats_inserted", inserted.Stats).
		Dur("duration", summary.Finished.Sub(summary.Started)).
		Msg("Box score load complete")
}
