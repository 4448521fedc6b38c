package release

import (
	"sort"

	"fleet-analytics/modernity/internal/tabular"
)

// ClusteringColumns is the layout of the clustering feature table.
var ClusteringColumns = []string{
	"airline", "fleet_size", "n_models", "diversity", "modernity_index", "new_gen_share",
	"pct_a220", "pct_787", "pct_a350", "pct_a330neo", "pct_neo", "pct_max",
	"pct_newgen_narrow", "pct_newgen_wide",
}

// JoinClusteringFeatures inner-joins features and scores on the exact airline
// name and keeps ClusteringColumns, sorted by airline. modernity_index comes
// from the scores; every other column from the features. Cells are copied
// verbatim. A repeated airline in scores joins its first row.
func JoinClusteringFeatures(features, scores *tabular.Table) ([][]string, error) {
	need := make([]string, 0, len(ClusteringColumns)-1)
	for _, c := range ClusteringColumns {
		if c != "modernity_index" {
			need = append(need, c)
		}
	}
	if err := features.Require(need...); err != nil {
		return nil, err
	}
	if err := scores.Require("airline", "modernity_index"); err != nil {
		return nil, err
	}

	index := make(map[string]int, scores.Len())
	for i := 0; i < scores.Len(); i++ {
		name := scores.Get(i, "airline")
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	var out [][]string
	for i := 0; i < features.Len(); i++ {
		j, ok := index[features.Get(i, "airline")]
		if !ok {
			continue
		}
		row := make([]string, len(ClusteringColumns))
		for k, c := range ClusteringColumns {
			if c == "modernity_index" {
				row[k] = scores.Get(j, c)
			} else {
				row[k] = features.Get(i, c)
			}
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a][0] < out[b][0] })
	return out, nil
}

// Assignment is one airline's cluster label.
type Assignment struct {
	Airline string
	Cluster int
}

// DecodeClusters reads the clustering output (airline, cluster). Rows whose
// cluster is not an integer are skipped.
func DecodeClusters(t *tabular.Table) ([]Assignment, error) {
	if err := t.Require("airline", "cluster"); err != nil {
		return nil, err
	}
	out := make([]Assignment, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		c, ok := t.Int(i, "cluster")
		if !ok {
			continue
		}
		out = append(out, Assignment{Airline: t.Get(i, "airline"), Cluster: c})
	}
	return out, nil
}

// WithColumn returns t's header and rows with one extra column appended.
// values must have one entry per row.
func WithColumn(t *tabular.Table, name string, values []string) ([]string, [][]string) {
	header := append(append([]string{}, t.Header...), name)
	rows := make([][]string, t.Len())
	for i, r := range t.Rows {
		row := make([]string, 0, len(header))
		row = append(row, r[:min(len(r), len(t.Header))]...)
		for len(row) < len(t.Header) {
			row = append(row, "")
		}
		rows[i] = append(row, values[i])
	}
	return header, rows
}
