package normalizer

import "nba_stats/ingestion/internal/models"

// ColumnNames maps stats.nba.com box score headers to the field names used
// by the normalized records. Headers not listed here are ignored.
var ColumnNames = map[string]string{
	"SEASON":            "season",
	"GAME_ID":           "game_id",
	"TEAM_ID":           "team_id",
	"TEAM_ABBREVIATION": "team_abbreviation",
	"TEAM_NAME":         "team_name",
	"PLAYER_ID":         "player_id",
	"PLAYER_NAME":       "player_name",
	"START_POSITION":    "start_position",
	"COMMENT":           "comment",
	"MIN":               "minute",
	"FGM":               "fg_made",
	"FGA":               "fg_attempts",
	"FG_PCT":            "fg_pct",
	"FG3M":              "three_p_made",
	"FG3A":              "three_p_attempts",
	"FG3_PCT":           "three_p_pct",
	"FTM":               "ft_made",
	"FTA":               "ft_attempts",
	"FT_PCT":            "ft_pct",
	"OREB":              "offensive_rebounds",
	"DREB":              "defensive_rebounds",
	"REB":               "rebounds",
	"AST":               "assists",
	"STL":               "steals",
	"BLK":               "blocks",
	"TO":                "turnovers",
	"PF":                "personal_fouls",
	"PTS":               "points",
	"PLUS_MINUS":        "plus_minus",
}

// Relabel returns a copy of row keyed by normalized field names
func Relabel(row models.BoxScoreRow) map[string]any {
	out := make(map[string]any, len(row))
	for header, value := range row {
		if name, ok := ColumnNames[header]; ok {
			out[name] = value
		}
	}
	return out
}
