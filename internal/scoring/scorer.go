// Package scoring turns per-airline fleet features into the v1 modernity index.
package scoring

import (
	"math"
	"strings"

	"fleet-analytics/modernity/internal/fleet"
	"fleet-analytics/modernity/internal/textnorm"
)

// Version is written to the version_v1 column of every score row.
const Version = "v1"

// Component weights. They are never renormalized when a component is missing.
const (
	WeightNarrow = 0.4
	WeightWide   = 0.4
	WeightA220   = 0.2
)

// QA note values.
const (
	QAFleetTooSmall    = "fleet_too_small"
	QAMissingComponent = "missing_component"
)

// Input is one airline row as read from the features table. Nil pointers mark
// absent or unparseable cells.
type Input struct {
	Airline   string
	FleetSize *float64
	NModels   *float64
	Diversity *float64

	PctNewgenNarrow *float64
	PctNewgenWide   *float64
	PctA220         *float64
}

// Score is one row of the scores table.
type Score struct {
	Airline        string
	FleetSize      float64
	Diversity      float64
	ModernityIndex float64
	// Public is withheld (nil) for fleets below fleet.MinFleet.
	Public *float64
	// Penalized scales the index by min(1, fleet_size/MinFleet).
	Penalized float64
	Version   string
	QANotes   string
}

// FleetSizeLookup is a secondary source of fleet sizes keyed by airline name.
type FleetSizeLookup interface {
	FleetSize(airline string) (float64, bool)
}

// FleetSizeEntry is one (airline, fleet size) row of the secondary source.
type FleetSizeEntry struct {
	Airline   string
	FleetSize float64
}

// FleetSizeTable is a FleetSizeLookup backed by a map keyed on the normalized airline name.
type FleetSizeTable map[string]float64

// NewFleetSizeTable indexes entries by normalized airline name. When several
// names normalize to the same key the earliest entry wins.
func NewFleetSizeTable(entries []FleetSizeEntry) FleetSizeTable {
	t := make(FleetSizeTable, len(entries))
	for _, e := range entries {
		key := textnorm.AirlineKey(e.Airline)
		if key == "" {
			continue
		}
		if _, dup := t[key]; !dup {
			t[key] = e.FleetSize
		}
	}
	return t
}

func (t FleetSizeTable) FleetSize(airline string) (float64, bool) {
	v, ok := t[textnorm.AirlineKey(airline)]
	return v, ok
}

// QANotes accumulates data-quality flags for one airline.
type QANotes []string

// Add appends note unless it is empty or already present.
func (q *QANotes) Add(note string) {
	note = strings.Trim(strings.TrimSpace(note), ";")
	if note == "" {
		return
	}
	for _, n := range *q {
		if n == note {
			return
		}
	}
	*q = append(*q, note)
}

// String joins the notes with ";". No notes gives the empty string.
func (q QANotes) String() string {
	return strings.Join(q, ";")
}

// ToProportion reads v as a share: values above 1 are percentages and are
// divided by 100. The result is clamped to [0,1].
func ToProportion(v float64) float64 {
	if v > 1 {
		v = v / 100.0
	}
	return fleet.Clamp01(v)
}

// Index combines the three components with the fixed weights.
func Index(narrow, wide, a220 float64) float64 {
	return fleet.Clamp01(WeightNarrow*narrow + WeightWide*wide + WeightA220*a220)
}

// Scorer computes scores; Fallback, when set, supplies missing fleet sizes.
type Scorer struct {
	Fallback FleetSizeLookup
}

// NewScorer creates a scorer with an optional secondary fleet-size source.
func NewScorer(fallback FleetSizeLookup) *Scorer {
	return &Scorer{Fallback: fallback}
}

// ScoreAll scores every input row, preserving order.
func (s *Scorer) ScoreAll(inputs []Input) []Score {
	out := make([]Score, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, s.Score(in))
	}
	return out
}

// Score computes the index, both public variants and the QA notes for one airline.
func (s *Scorer) Score(in Input) Score {
	var notes QANotes

	fleetSize := s.fleetSize(in)

	var diversity float64
	if finite(in.Diversity) {
		diversity = ToProportion(*in.Diversity)
	} else {
		var nModels float64
		if in.NModels != nil {
			nModels = *in.NModels
		}
		diversity = fleet.Ratio(nModels, fleetSize)
	}

	missing := false
	component := func(v *float64) float64 {
		if !finite(v) {
			missing = true
			return 0
		}
		return ToProportion(*v)
	}
	narrow := component(in.PctNewgenNarrow)
	wide := component(in.PctNewgenWide)
	a220 := component(in.PctA220)

	index := Index(narrow, wide, a220)

	if fleetSize < fleet.MinFleet {
		notes.Add(QAFleetTooSmall)
	}
	if missing {
		notes.Add(QAMissingComponent)
	}

	score := Score{
		Airline:        in.Airline,
		FleetSize:      fleetSize,
		Diversity:      diversity,
		ModernityIndex: index,
		Penalized:      index * fleet.ReliabilityFactor(fleetSize),
		Version:        Version,
		QANotes:        notes.String(),
	}
	if fleetSize >= fleet.MinFleet {
		v := index
		score.Public = &v
	}
	return score
}

// fleetSize treats a NaN or infinite size like a missing one.
func (s *Scorer) fleetSize(in Input) float64 {
	if finite(in.FleetSize) {
		return *in.FleetSize
	}
	if s.Fallback != nil {
		if v, ok := s.Fallback.FleetSize(in.Airline); ok && finite(&v) {
			return v
		}
	}
	return 0
}

func finite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

// InputFromFeatures builds a complete scorer input from an aggregated row.
func InputFromFeatures(f fleet.AirlineFeatures) Input {
	fs := float64(f.FleetSize)
	nm := float64(f.NModels)
	div := f.Diversity
	narrow := f.PctNewgenNarrow
	wide := f.PctNewgenWide
	a220 := f.PctA220
	return Input{
		Airline:         f.Airline,
		FleetSize:       &fs,
		NModels:         &nm,
		Diversity:       &div,
		PctNewgenNarrow: &narrow,
		PctNewgenWide:   &wide,
		PctA220:         &a220,
	}
}
