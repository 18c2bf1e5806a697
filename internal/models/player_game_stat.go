package models

import "database/sql"

// PlayerGameStat is one player's traditional box score line for one game.
// (GameID, PlayerID) is the natural key.
type PlayerGameStat struct {
	Season        string         `db:"season"`
	GameID        int64          `db:"game_id"`
	PlayerID      int64          `db:"player_id"`
	StartPosition sql.NullString `db:"start_position"`

	// Minute is NULL when the player has no minutes entry (DNP, missing data)
	Minute sql.NullFloat64 `db:"minute"`

	// Shooting
	FGMade         int     `db:"fg_made"`
	FGAttempts     int     `db:"fg_attempts"`
	FGPct          float64 `db:"fg_pct"`
	ThreePMade     int     `db:"three_p_made"`
	ThreePAttempts int     `db:"three_p_attempts"`
	ThreePPct      float64 `db:"three_p_pct"`
	FTMade         int     `db:"ft_made"`
	FTAttempts     int     `db:"ft_attempts"`
	FTPct          float64 `db:"ft_pct"`

	// Rebounding
	OffensiveRebounds int `db:"offensive_rebounds"`
	DefensiveRebounds int `db:"defensive_rebounds"`
	Rebounds          int `db:"rebounds"`

	Assists       int     `db:"assists"`
	Steals        int     `db:"steals"`
	Blocks        int     `db:"blocks"`
	Turnovers     int     `db:"turnovers"`
	PersonalFouls int     `db:"personal_fouls"`
	Points        int     `db:"points"`
	PlusMinus     float64 `db:"plus_minus"`

	// Derived
	DoubleDouble bool `db:"double_double"`
	TripleDouble bool `db:"triple_double"`
}

// HeadlineStats returns the five categories that count toward
// double-doubles and triple-doubles
func (s *PlayerGameStat) HeadlineStats() [5]int {
	return [5]int{s.Points, s.Rebounds, s.Assists, s.Blocks, s.Steals}
}
