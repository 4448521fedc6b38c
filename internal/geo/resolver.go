// Package geo resolves airlines to a home country and countries to world regions.
package geo

import (
	"fmt"
	"sort"
	"strings"

	"fleet-analytics/modernity/internal/fleet"
	"fleet-analytics/modernity/internal/reference"
	"fleet-analytics/modernity/internal/textnorm"
)

// Stage names the resolver that produced a country.
type Stage string

const (
	StageModeJoin       Stage = "mode_join"
	StageManualOverride Stage = "manual_override"
	StageNameHeuristic  Stage = "name_heuristic"
)

// Resolution is the tagged outcome of resolving one airline.
type Resolution struct {
	Airline  string
	Country  string
	Stage    Stage
	Resolved bool
	Reason   string
}

func resolved(airline, country string, stage Stage) Resolution {
	return Resolution{Airline: airline, Country: country, Stage: stage, Resolved: true}
}

func unresolved(airline string, stage Stage, reason string) Resolution {
	return Resolution{Airline: airline, Stage: stage, Reason: reason}
}

// CountryResolver attempts to find an airline's country.
type CountryResolver interface {
	Stage() Stage
	Resolve(airline string) Resolution
}

// ModeJoinResolver picks the country an airline co-occurs with most often in
// the raw data. Ties go to the alphabetically first country.
type ModeJoinResolver struct {
	countries map[string]string
}

// NewModeJoinResolver counts (airline, country) pairs over records.
func NewModeJoinResolver(records []fleet.AircraftRecord) *ModeJoinResolver {
	counts := make(map[string]map[string]int)
	for _, rec := range records {
		country := strings.TrimSpace(rec.Country)
		if country == "" {
			continue
		}
		key := textnorm.AirlineKey(rec.Airline)
		if counts[key] == nil {
			counts[key] = make(map[string]int)
		}
		counts[key][country]++
	}

	r := &ModeJoinResolver{countries: make(map[string]string, len(counts))}
	for key, byCountry := range counts {
		names := make([]string, 0, len(byCountry))
		for c := range byCountry {
			names = append(names, c)
		}
		sort.Strings(names)

		best, bestN := "", 0
		for _, c := range names {
			if byCountry[c] > bestN {
				best, bestN = c, byCountry[c]
			}
		}
		r.countries[key] = best
	}
	return r
}

func (r *ModeJoinResolver) Stage() Stage { return StageModeJoin }

func (r *ModeJoinResolver) Resolve(airline string) Resolution {
	if c, ok := r.countries[textnorm.AirlineKey(airline)]; ok {
		return resolved(airline, c, StageModeJoin)
	}
	return unresolved(airline, StageModeJoin, "airline has no country in raw data")
}

// ManualOverrideResolver looks the airline up in the curated override table.
type ManualOverrideResolver struct {
	countries map[string]string
}

// NewManualOverrideResolver indexes overrides by normalized airline name.
func NewManualOverrideResolver(overrides []reference.AirlineOverride) *ManualOverrideResolver {
	r := &ManualOverrideResolver{countries: make(map[string]string, len(overrides))}
	for _, o := range overrides {
		key := textnorm.Country(o.Airline)
		if _, dup := r.countries[key]; !dup {
			r.countries[key] = strings.TrimSpace(o.Country)
		}
	}
	return r
}

func (r *ManualOverrideResolver) Stage() Stage { return StageManualOverride }

func (r *ManualOverrideResolver) Resolve(airline string) Resolution {
	if c, ok := r.countries[textnorm.Country(airline)]; ok {
		return resolved(airline, c, StageManualOverride)
	}
	return unresolved(airline, StageManualOverride, "airline not in override table")
}

// NameTokenResolver guesses the country from country-name tokens contained in
// the airline name. The first matching token in table order wins.
type NameTokenResolver struct {
	table *RegionTable
}

// NewNameTokenResolver uses the tokens of table.
func NewNameTokenResolver(table *RegionTable) *NameTokenResolver {
	return &NameTokenResolver{table: table}
}

func (r *NameTokenResolver) Stage() Stage { return StageNameHeuristic }

func (r *NameTokenResolver) Resolve(airline string) Resolution {
	name := textnorm.Country(airline)
	if name == "" {
		return unresolved(airline, StageNameHeuristic, "empty airline name")
	}
	for _, ct := range r.table.tokens {
		if ct.token != "" && strings.Contains(name, ct.token) {
			return resolved(airline, ct.country, StageNameHeuristic)
		}
	}
	return unresolved(airline, StageNameHeuristic, "no country token in airline name")
}

// Chain applies resolvers in order; each one only sees airlines the previous
// ones left unresolved.
type Chain struct {
	resolvers []CountryResolver
}

// NewChain builds a chain from resolvers in priority order.
func NewChain(resolvers ...CountryResolver) *Chain {
	return &Chain{resolvers: resolvers}
}

// NewDefaultChain wires mode join, manual overrides and the name heuristic.
func NewDefaultChain(records []fleet.AircraftRecord, ref *reference.Data, table *RegionTable) *Chain {
	return NewChain(
		NewModeJoinResolver(records),
		NewManualOverrideResolver(ref.AirlineOverrides),
		NewNameTokenResolver(table),
	)
}

// Resolve runs one airline through the chain.
func (c *Chain) Resolve(airline string) Resolution {
	last := Resolution{Airline: airline, Reason: "no resolver configured"}
	for _, r := range c.resolvers {
		res := r.Resolve(airline)
		if res.Resolved {
			return res
		}
		last = res
	}
	last.Reason = "no stage matched: " + last.Reason
	return last
}

// ResolveAll resolves every airline stage by stage and returns results in input order.
func (c *Chain) ResolveAll(airlines []string) []Resolution {
	out := make([]Resolution, len(airlines))
	pending := make([]int, len(airlines))
	for i, a := range airlines {
		out[i] = Resolution{Airline: a, Reason: "no resolver configured"}
		pending[i] = i
	}

	for _, r := range c.resolvers {
		var still []int
		for _, i := range pending {
			res := r.Resolve(airlines[i])
			out[i] = res
			if !res.Resolved {
				still = append(still, i)
			}
		}
		pending = still
	}
	for _, i := range pending {
		out[i].Reason = "no stage matched: " + out[i].Reason
	}
	return out
}

// Assignment is a resolution joined to the region table.
type Assignment struct {
	Resolution
	Region    Region
	HasRegion bool
}

// AssignRegions maps each resolved country to its region. Airlines without a
// region keep HasRegion=false and a reason; no default region is ever assigned.
func AssignRegions(resolutions []Resolution, table *RegionTable) []Assignment {
	out := make([]Assignment, 0, len(resolutions))
	for _, res := range resolutions {
		a := Assignment{Resolution: res}
		if res.Resolved {
			if region, ok := table.RegionOf(res.Country); ok {
				a.Region = region
				a.HasRegion = true
			} else {
				a.Reason = fmt.Sprintf("country %q has no region mapping", res.Country)
			}
		}
		out = append(out, a)
	}
	return out
}

// StageCounts tallies resolutions per stage; unresolved ones are counted under "".
func StageCounts(resolutions []Resolution) map[Stage]int {
	counts := make(map[Stage]int)
	for _, r := range resolutions {
		if r.Resolved {
			counts[r.Stage]++
		} else {
			counts[""]++
		}
	}
	return counts
}
