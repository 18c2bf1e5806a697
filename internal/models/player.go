package models

import "database/sql"

// Player represents an NBA player. The team, position and comment are the
// values first seen for the player; later appearances never update them.
type Player struct {
	ID            int64          `db:"id"`
	TeamID        int64          `db:"team_id"`
	Name          string         `db:"name"`
	StartPosition sql.NullString `db:"position"`
	Comment       sql.NullString `db:"comment"`
}
