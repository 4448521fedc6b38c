// Package fleet classifies aircraft designations into new-generation families and
// aggregates per-airline fleet statistics.
package fleet

import (
	"math"
	"sort"
	"strings"

	"fleet-analytics/modernity/internal/textnorm"
)

// MinFleet is the fleet size below which an airline's score is unreliable.
const MinFleet = 5

// AircraftRecord is one aircraft observation from the raw dataset.
type AircraftRecord struct {
	Airline string
	Model   string
	Country string
}

// AirlineFeatures is the per-airline fleet summary.
type AirlineFeatures struct {
	Airline   string
	Key       string
	FleetSize int
	NModels   int
	Diversity float64

	NA220    int
	N787     int
	NA350    int
	NA330neo int
	NNeo     int
	NMax     int

	PctA220    float64
	Pct787     float64
	PctA350    float64
	PctA330neo float64
	PctNeo     float64
	PctMax     float64

	PctNewgenNarrow float64
	PctNewgenWide   float64

	// Legacy v0 block, driven by the coarse new_gen flag.
	NewGenShare          float64
	LegacyIndexV0        float64
	LegacyIndexPublic    *float64
	LegacyIndexPenalized float64
}

// Clamp01 bounds v to [0,1]; NaN becomes 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Ratio divides num by den, returning 0 instead of NaN or Inf, clamped to [0,1].
func Ratio(num, den float64) float64 {
	if den == 0 || math.IsNaN(den) || math.IsNaN(num) {
		return 0
	}
	r := num / den
	if math.IsInf(r, 0) {
		return 0
	}
	return Clamp01(r)
}

// ReliabilityFactor is min(1, fleetSize/MinFleet), floored at 0.
func ReliabilityFactor(fleetSize float64) float64 {
	if fleetSize <= 0 || math.IsNaN(fleetSize) {
		return 0
	}
	return math.Min(1, fleetSize/MinFleet)
}

type airlineAcc struct {
	display   string
	rows      int
	newGen    int
	models    map[string]struct{}
	famCounts map[Family]int
}

// Aggregate groups records by normalized airline name. Every record counts
// toward fleet_size; family counts use distinct (airline, model) pairs only.
// Output order is the order in which airlines first appear.
func Aggregate(records []AircraftRecord) []AirlineFeatures {
	accs := make(map[string]*airlineAcc)
	var order []string

	for _, rec := range records {
		key := textnorm.AirlineKey(rec.Airline)
		acc, ok := accs[key]
		if !ok {
			acc = &airlineAcc{
				display:   strings.TrimSpace(rec.Airline),
				models:    make(map[string]struct{}),
				famCounts: make(map[Family]int),
			}
			accs[key] = acc
			order = append(order, key)
		}

		acc.rows++
		if IsLegacyNewGen(rec.Model) {
			acc.newGen++
		}

		model := strings.TrimSpace(rec.Model)
		if model == "" {
			continue
		}
		if _, seen := acc.models[model]; seen {
			continue
		}
		acc.models[model] = struct{}{}

		c := Classify(model)
		for _, f := range Families {
			if c.Has(f) {
				acc.famCounts[f]++
			}
		}
	}

	out := make([]AirlineFeatures, 0, len(order))
	for _, key := range order {
		acc := accs[key]
		out = append(out, buildFeatures(key, acc))
	}
	return out
}

func buildFeatures(key string, acc *airlineAcc) AirlineFeatures {
	fleet := float64(acc.rows)
	f := AirlineFeatures{
		Airline:   acc.display,
		Key:       key,
		FleetSize: acc.rows,
		NModels:   len(acc.models),

		NA220:    acc.famCounts[FamilyA220],
		N787:     acc.famCounts[Family787],
		NA350:    acc.famCounts[FamilyA350],
		NA330neo: acc.famCounts[FamilyA330neo],
		NNeo:     acc.famCounts[FamilyNeo],
		NMax:     acc.famCounts[FamilyMax],
	}

	f.Diversity = Ratio(float64(f.NModels), fleet)
	f.PctA220 = Ratio(float64(f.NA220), fleet)
	f.Pct787 = Ratio(float64(f.N787), fleet)
	f.PctA350 = Ratio(float64(f.NA350), fleet)
	f.PctA330neo = Ratio(float64(f.NA330neo), fleet)
	f.PctNeo = Ratio(float64(f.NNeo), fleet)
	f.PctMax = Ratio(float64(f.NMax), fleet)

	f.PctNewgenNarrow = Clamp01(f.PctNeo + f.PctMax + f.PctA220)
	f.PctNewgenWide = Clamp01(f.Pct787 + f.PctA350 + f.PctA330neo)

	f.NewGenShare = Ratio(float64(acc.newGen), fleet)
	f.LegacyIndexV0 = f.NewGenShare
	if acc.rows >= MinFleet {
		v := f.LegacyIndexV0
		f.LegacyIndexPublic = &v
	}
	f.LegacyIndexPenalized = f.LegacyIndexV0 * ReliabilityFactor(fleet)
	return f
}

// ModelFrequency counts how often a normalized designation appears.
type ModelFrequency struct {
	Model string
	Count int
}

// ModelFrequencies lists normalized model strings by descending count, then
// alphabetically. It is used to maintain the pattern lists.
func ModelFrequencies(records []AircraftRecord) []ModelFrequency {
	counts := make(map[string]int)
	for _, rec := range records {
		counts[textnorm.ModelKey(rec.Model)]++
	}

	out := make([]ModelFrequency, 0, len(counts))
	for m, n := range counts {
		out = append(out, ModelFrequency{Model: m, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Model < out[j].Model
	})
	return out
}
