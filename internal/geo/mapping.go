package geo

import (
	"sort"
	"strings"

	"fleet-analytics/modernity/internal/reference"
	"fleet-analytics/modernity/internal/textnorm"
)

// MappingRow is one row of the editable country/region mapping table.
type MappingRow struct {
	Country     string
	CountryCode string
	Region      string
}

// MergeStats reports what MergeMapping changed.
type MergeStats struct {
	Added         int
	FilledCodes   int
	FilledRegions int
}

// MergeMapping upserts the observed countries into the curated mapping.
// Existing rows keep their position and curated values, unseen countries are
// appended in sorted order, blank codes and regions are filled from the
// reference defaults, and nothing is ever deleted.
func MergeMapping(existing []MappingRow, observed []string, ref *reference.Data) ([]MappingRow, MergeStats) {
	var stats MergeStats

	out := make([]MappingRow, 0, len(existing)+len(observed))
	known := make(map[string]struct{}, len(existing))
	for _, row := range existing {
		row.Country = strings.TrimSpace(row.Country)
		row.CountryCode = strings.TrimSpace(row.CountryCode)
		row.Region = strings.TrimSpace(row.Region)
		known[row.Country] = struct{}{}
		out = append(out, row)
	}

	for _, c := range DistinctCountries(observed) {
		if _, ok := known[c]; ok {
			continue
		}
		known[c] = struct{}{}
		out = append(out, MappingRow{Country: c})
		stats.Added++
	}

	if ref == nil {
		return out, stats
	}
	for i := range out {
		if out[i].Region == "" {
			if r, ok := ref.DefaultRegion(out[i].Country); ok {
				out[i].Region = r
				stats.FilledRegions++
			}
		}
		if out[i].CountryCode == "" {
			if code, ok := ref.ISOCode(out[i].Country); ok {
				out[i].CountryCode = code
				stats.FilledCodes++
			}
		}
	}
	return out, stats
}

// DistinctCountries trims, deduplicates and sorts country names, dropping blanks.
func DistinctCountries(countries []string) []string {
	seen := make(map[string]struct{}, len(countries))
	var out []string
	for _, c := range countries {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

type countryToken struct {
	country string
	token   string
}

// RegionTable resolves normalized country names to regions and carries the
// country-name tokens used by the airline-name heuristic. Row order is kept
// as given; the heuristic's tie-break depends on it.
type RegionTable struct {
	regions map[string]Region
	tokens  []countryToken
	invalid []MappingRow
}

// NewRegionTable indexes rows followed by extras. For a normalized country the
// first row carrying a valid region wins. Rows whose region is set but not one
// of Regions are reported by Invalid.
func NewRegionTable(rows []MappingRow, extras []reference.CountryEntry, stopwords map[string]struct{}) *RegionTable {
	all := make([]MappingRow, 0, len(rows)+len(extras))
	all = append(all, rows...)
	for _, e := range extras {
		all = append(all, MappingRow{Country: e.Name, CountryCode: e.Code, Region: e.Region})
	}

	t := &RegionTable{regions: make(map[string]Region)}
	seenTokens := make(map[countryToken]struct{})

	for _, row := range all {
		norm := textnorm.Country(row.Country)
		if norm == "" {
			continue
		}

		if strings.TrimSpace(row.Region) != "" {
			region, ok := ParseRegion(row.Region)
			if !ok {
				t.invalid = append(t.invalid, row)
			} else if _, dup := t.regions[norm]; !dup {
				t.regions[norm] = region
			}
		}

		for _, tok := range countryTokens(norm, stopwords) {
			ct := countryToken{country: row.Country, token: tok}
			if _, dup := seenTokens[ct]; dup {
				continue
			}
			seenTokens[ct] = struct{}{}
			t.tokens = append(t.tokens, ct)
		}
	}
	return t
}

// countryTokens keeps tokens of at least four letters that are not stopwords,
// falling back to every token when none qualifies.
func countryTokens(normCountry string, stopwords map[string]struct{}) []string {
	all := strings.Fields(normCountry)
	var good []string
	for _, tok := range all {
		if len(tok) < 4 {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		good = append(good, tok)
	}
	if len(good) == 0 {
		return all
	}
	return good
}

// RegionOf looks a country up by its normalized name.
func (t *RegionTable) RegionOf(country string) (Region, bool) {
	r, ok := t.regions[textnorm.Country(country)]
	return r, ok
}

// Invalid lists the rows whose region is not a known region.
func (t *RegionTable) Invalid() []MappingRow {
	return t.invalid
}
