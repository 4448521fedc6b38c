package release

import (
	"fleet-analytics/modernity/internal/scoring"
	"fleet-analytics/modernity/internal/tabular"
)

// ScoresColumns is the layout of airline_scores.csv. The first six columns
// are the published contract; the two variants follow.
var ScoresColumns = []string{
	"airline", "fleet_size", "diversity", "modernity_index", "version_v1", "qa_notes",
	"modernity_index_public", "modernity_index_penalized",
}

// EncodeScores renders scores in ScoresColumns order.
func EncodeScores(scores []scoring.Score) [][]string {
	rows := make([][]string, 0, len(scores))
	for _, s := range scores {
		rows = append(rows, []string{
			s.Airline,
			tabular.FormatFloat(s.FleetSize),
			tabular.FormatFloat(s.Diversity),
			tabular.FormatFloat(s.ModernityIndex),
			s.Version,
			s.QANotes,
			tabular.FormatOptFloat(s.Public),
			tabular.FormatFloat(s.Penalized),
		})
	}
	return rows
}

// DecodeScores reads airline_scores.csv. airline and modernity_index are
// required, plus every column named in extra. Rows whose index cell is blank
// are kept with Public set to nil and a zero raw index.
func DecodeScores(t *tabular.Table, extra ...string) ([]scoring.Score, error) {
	if err := t.Require(append([]string{"airline", "modernity_index"}, extra...)...); err != nil {
		return nil, err
	}
	num := func(i int, col string) float64 {
		if v := t.Float(i, col); v != nil {
			return *v
		}
		return 0
	}

	out := make([]scoring.Score, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		out = append(out, scoring.Score{
			Airline:        t.Get(i, "airline"),
			FleetSize:      num(i, "fleet_size"),
			Diversity:      num(i, "diversity"),
			ModernityIndex: num(i, "modernity_index"),
			Public:         t.Float(i, "modernity_index_public"),
			Penalized:      num(i, "modernity_index_penalized"),
			Version:        t.Get(i, "version_v1"),
			QANotes:        t.Get(i, "qa_notes"),
		})
	}
	return out, nil
}
