// Package regions summarizes airline modernity scores per world region.
package regions

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"fleet-analytics/modernity/internal/geo"
	"fleet-analytics/modernity/internal/scoring"
)

// TopN is how many airlines are listed per region.
const TopN = 3

// IndexVariant selects which modernity index column feeds the summary.
type IndexVariant string

const (
	VariantRaw       IndexVariant = "raw"
	VariantPublic    IndexVariant = "public"
	VariantPenalized IndexVariant = "penalized"
)

// ParseVariant accepts raw, public or penalized; empty means raw.
func ParseVariant(s string) (IndexVariant, error) {
	switch v := IndexVariant(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return VariantRaw, nil
	case VariantRaw, VariantPublic, VariantPenalized:
		return v, nil
	default:
		return "", fmt.Errorf("unknown index variant %q (want raw, public or penalized)", s)
	}
}

// Column is the scores-table column holding this variant.
func (v IndexVariant) Column() string {
	switch v {
	case VariantPublic:
		return "modernity_index_public"
	case VariantPenalized:
		return "modernity_index_penalized"
	default:
		return "modernity_index"
	}
}

// Pick returns the variant's value from a score, nil when it is withheld.
func (v IndexVariant) Pick(s scoring.Score) *float64 {
	switch v {
	case VariantPublic:
		return s.Public
	case VariantPenalized:
		p := s.Penalized
		return &p
	default:
		idx := s.ModernityIndex
		return &idx
	}
}

// Row is one airline with its resolved region.
type Row struct {
	Airline string
	Region  geo.Region
	Index   *float64
}

// Summary is one output row.
type Summary struct {
	Region             geo.Region
	NAirlines          int
	MeanModernityIndex float64
	TopAirlines        string
}

// Summarize groups rows by region. Rows with a nil index or an empty region are
// skipped. Regions are ordered by mean descending; equal means fall back to the
// region name.
func Summarize(rows []Row) []Summary {
	groups := make(map[geo.Region][]Row)
	for _, r := range rows {
		if r.Index == nil || r.Region == "" {
			continue
		}
		groups[r.Region] = append(groups[r.Region], r)
	}

	names := make([]geo.Region, 0, len(groups))
	for region := range groups {
		names = append(names, region)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	out := make([]Summary, 0, len(names))
	for _, region := range names {
		group := groups[region]

		values := make([]float64, len(group))
		distinct := make(map[string]struct{}, len(group))
		for i, r := range group {
			values[i] = *r.Index
			distinct[r.Airline] = struct{}{}
		}

		out = append(out, Summary{
			Region:             region,
			NAirlines:          len(distinct),
			MeanModernityIndex: stat.Mean(values, nil),
			TopAirlines:        topAirlines(group, TopN),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MeanModernityIndex > out[j].MeanModernityIndex
	})
	return out
}

func topAirlines(group []Row, n int) string {
	ranked := make([]Row, len(group))
	copy(ranked, group)
	sort.SliceStable(ranked, func(i, j int) bool { return *ranked[i].Index > *ranked[j].Index })
	if len(ranked) > n {
		ranked = ranked[:n]
	}

	parts := make([]string, len(ranked))
	for i, r := range ranked {
		parts[i] = fmt.Sprintf("%s (%.3f)", r.Airline, *r.Index)
	}
	return strings.Join(parts, "; ")
}
