// Package normalizer turns raw stats.nba.com box score rows into the team,
// player and per-game stat records stored by the repository.
package normalizer

import (
	"fmt"

	"nba_stats/ingestion/internal/models"
)

// Threshold for a headline category to count toward a double/triple-double
const achievementThreshold = 10

// Result holds the three record groups produced from one game's box score
type Result struct {
	Teams   []models.Team
	Players []models.Player
	Stats   []models.PlayerGameStat

	// Dropped lists rows whose identifiers could not be coerced
	Dropped []DroppedRow
}

// DroppedRow describes an input row that was skipped
type DroppedRow struct {
	Index  int
	Reason string
}

// Empty reports whether the result has no records at all
func (r Result) Empty() bool {
	return len(r.Teams) == 0 && len(r.Players) == 0 && len(r.Stats) == 0
}

// Normalize partitions a box score into teams, players and stat lines.
// Teams and players are deduplicated by id, keeping the first row seen.
// Every row that survives identifier coercion yields exactly one stat line.
func Normalize(rows []models.BoxScoreRow, season string) Result {
	var res Result
	if len(rows) == 0 {
		return res
	}

	seenTeams := make(map[int64]struct{})
	seenPlayers := make(map[int64]struct{})

	for i, raw := range rows {
		rec := Relabel(raw)

		ids, err := coerceIDs(rec)
		if err != nil {
			res.Dropped = append(res.Dropped, DroppedRow{Index: i, Reason: err.Error()})
			continue
		}

		if _, ok := seenTeams[ids.team]; !ok {
			seenTeams[ids.team] = struct{}{}
			res.Teams = append(res.Teams, models.Team{
				ID:           ids.team,
				Abbreviation: stringValue(rec["team_abbreviation"]),
				Name:         nullString(rec["team_name"]),
			})
		}

		startPosition := nullString(rec["start_position"])

		if _, ok := seenPlayers[ids.player]; !ok {
			seenPlayers[ids.player] = struct{}{}
			res.Players = append(res.Players, models.Player{
				ID:            ids.player,
				TeamID:        ids.team,
				Name:          stringValue(rec["player_name"]),
				StartPosition: startPosition,
				Comment:       nullString(rec["comment"]),
			})
		}

		stat := models.PlayerGameStat{
			Season:        season,
			GameID:        ids.game,
			PlayerID:      ids.player,
			StartPosition: startPosition,
			Minute:        parseMinutes(rec["minute"]),

			FGMade:         countOrZero(rec["fg_made"]),
			FGAttempts:     countOrZero(rec["fg_attempts"]),
			FGPct:          floatOrZero(rec["fg_pct"]),
			ThreePMade:     countOrZero(rec["three_p_made"]),
			ThreePAttempts: countOrZero(rec["three_p_attempts"]),
			ThreePPct:      floatOrZero(rec["three_p_pct"]),
			FTMade:         countOrZero(rec["ft_made"]),
			FTAttempts:     countOrZero(rec["ft_attempts"]),
			FTPct:          floatOrZero(rec["ft_pct"]),

			OffensiveRebounds: countOrZero(rec["offensive_rebounds"]),
			DefensiveRebounds: countOrZero(rec["defensive_rebounds"]),
			Rebounds:          countOrZero(rec["rebounds"]),

			Assists:       countOrZero(rec["assists"]),
			Steals:        countOrZero(rec["steals"]),
			Blocks:        countOrZero(rec["blocks"]),
			Turnovers:     countOrZero(rec["turnovers"]),
			PersonalFouls: countOrZero(rec["personal_fouls"]),
			Points:        countOrZero(rec["points"]),
			PlusMinus:     floatOrZero(rec["plus_minus"]),
		}
		stat.DoubleDouble, stat.TripleDouble = Achievements(stat.HeadlineStats())

		res.Stats = append(res.Stats, stat)
	}

	return res
}

// Achievements reports double-double and triple-double status for the five
// headline categories. A value of exactly 10 counts.
func Achievements(headline [5]int) (doubleDouble, tripleDouble bool) {
	met := 0
	for _, v := range headline {
		if v >= achievementThreshold {
			met++
		}
	}
	return met >= 2, met >= 3
}

type rowIDs struct {
	game   int64
	team   int64
	player int64
}

func coerceIDs(rec map[string]any) (rowIDs, error) {
	var ids rowIDs
	var err error

	if ids.game, err = toInt64(rec["game_id"]); err != nil {
		return ids, fmt.Errorf("invalid game_id: %w", err)
	}
	if ids.team, err = toInt64(rec["team_id"]); err != nil {
		return ids, fmt.Errorf("invalid team_id: %w", err)
	}
	if ids.player, err = toInt64(rec["player_id"]); err != nil {
		return ids, fmt.Errorf("invalid player_id: %w", err)
	}

	return ids, nil
}
