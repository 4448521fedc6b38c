package release

import (
	"fleet-analytics/modernity/internal/geo"
	"fleet-analytics/modernity/internal/regions"
	"fleet-analytics/modernity/internal/tabular"
)

// MappingColumns is the layout of country_region_mapping.csv.
var MappingColumns = []string{"country", "country_code", "region"}

// DecodeMapping reads the curated mapping. country and region are required;
// country_code is optional.
func DecodeMapping(t *tabular.Table) ([]geo.MappingRow, error) {
	if err := t.Require("country", "region"); err != nil {
		return nil, err
	}
	out := make([]geo.MappingRow, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		out = append(out, geo.MappingRow{
			Country:     t.Get(i, "country"),
			CountryCode: t.Get(i, "country_code"),
			Region:      t.Get(i, "region"),
		})
	}
	return out, nil
}

// EncodeMapping renders mapping rows in MappingColumns order.
func EncodeMapping(rows []geo.MappingRow) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{r.Country, r.CountryCode, r.Region})
	}
	return out
}

// MissingRegionColumns is the layout of the unresolved side file.
var MissingRegionColumns = []string{"airline", "country", "stage", "reason"}

// EncodeMissingRegions lists the assignments without a region, once per
// (airline, country) pair.
func EncodeMissingRegions(assignments []geo.Assignment) [][]string {
	type key struct{ airline, country string }
	seen := make(map[key]struct{})

	var out [][]string
	for _, a := range assignments {
		if a.HasRegion {
			continue
		}
		k := key{a.Airline, a.Country}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, []string{a.Airline, a.Country, string(a.Stage), a.Reason})
	}
	return out
}

// RegionSummaryColumns is the layout of region_summary.csv.
var RegionSummaryColumns = []string{"region", "n_airlines", "mean_modernity_index", "top_airlines"}

// EncodeRegionSummary renders summaries in RegionSummaryColumns order.
func EncodeRegionSummary(summaries []regions.Summary) [][]string {
	out := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, []string{
			string(s.Region),
			tabular.FormatInt(s.NAirlines),
			tabular.FormatFloat(s.MeanModernityIndex),
			s.TopAirlines,
		})
	}
	return out
}

// DecodeRegionSummary reads region_summary.csv back.
func DecodeRegionSummary(t *tabular.Table) ([]regions.Summary, error) {
	if err := t.Require(RegionSummaryColumns...); err != nil {
		return nil, err
	}
	out := make([]regions.Summary, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		s := regions.Summary{
			Region:      geo.Region(t.Get(i, "region")),
			TopAirlines: t.Get(i, "top_airlines"),
		}
		s.NAirlines, _ = t.Int(i, "n_airlines")
		if v := t.Float(i, "mean_modernity_index"); v != nil {
			s.MeanModernityIndex = *v
		}
		out = append(out, s)
	}
	return out, nil
}
