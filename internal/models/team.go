package models

import "database/sql"

// Team represents an NBA team as identified by stats.nba.com
type Team struct {
	ID           int64          `db:"id"`
	Abbreviation string         `db:"abbreviation"`
	Name         sql.NullString `db:"name"`
}
