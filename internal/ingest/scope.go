package ingest

import (
	"fmt"
	"strings"
	"time"
)

// ScopeKind selects how the games of a run are enumerated
type ScopeKind string

const (
	ScopeDate   ScopeKind = "date"
	ScopeSeason ScopeKind = "season"
	ScopeGames  ScopeKind = "games"
)

// Scope describes which games a run covers
type Scope struct {
	Kind    ScopeKind
	Season  string
	Date    time.Time
	GameIDs []string
}

// DateScope covers the games played on date. An empty season is derived from the date.
func DateScope(date time.Time, season string) Scope {
	if season == "" {
		season = SeasonForDate(date)
	}
	return Scope{Kind: ScopeDate, Season: season, Date: date}
}

// SeasonScope covers every regular season game of season ("2023-24")
func SeasonScope(season string) Scope {
	return Scope{Kind: ScopeSeason, Season: season}
}

// GamesScope covers an explicit list of game ids
func GamesScope(season string, gameIDs ...string) Scope {
	return Scope{Kind: ScopeGames, Season: season, GameIDs: gameIDs}
}

func (s Scope) String() string {
	switch s.Kind {
	case ScopeDate:
		return fmt.Sprintf("date %s", s.Date.Format(time.DateOnly))
	case ScopeSeason:
		return fmt.Sprintf("season %s", s.Season)
	case ScopeGames:
		return fmt.Sprintf("games %s", strings.Join(s.GameIDs, ","))
	default:
		return string(s.Kind)
	}
}

// SeasonForDate returns the season label a game date belongs to.
// Seasons start in October: 2023-10-24 and 2024-04-14 are both "2023-24".
func SeasonForDate(t time.Time) string {
	start := t.Year()
	if t.Month() < time.October {
		start--
	}
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}
