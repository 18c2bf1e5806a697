package models

// BoxScoreRow is one player's row from a stats.nba.com box score result set,
// keyed by the provider's column headers (PLAYER_ID, PTS, FG_PCT, MIN, ...).
// Values are whatever the JSON decoder produced: float64, string or nil.
type BoxScoreRow map[string]any

// ResultSet is the tabular payload stats.nba.com returns for every endpoint
type ResultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

// StatsResponse is the envelope around one or more result sets
type StatsResponse struct {
	Resource   string      `json:"resource"`
	ResultSets []ResultSet `json:"resultSets"`
}

// Find returns the result set with the given name
func (r *StatsResponse) Find(name string) (*ResultSet, bool) {
	for i := range r.ResultSets {
		if r.ResultSets[i].Name == name {
			return &r.ResultSets[i], true
		}
	}
	return nil, false
}

// Rows converts the result set into header-keyed rows. Short rows leave the
// missing trailing columns absent.
func (rs *ResultSet) Rows() []BoxScoreRow {
	rows := make([]BoxScoreRow, 0, len(rs.RowSet))
	for _, raw := range rs.RowSet {
		row := make(BoxScoreRow, len(rs.Headers))
		for i, header := range rs.Headers {
			if i < len(raw) {
				row[header] = raw[i]
			}
		}
		rows = append(rows, row)
	}
	return rows
}
