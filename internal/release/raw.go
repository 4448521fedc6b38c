package release

import (
	"fleet-analytics/modernity/internal/fleet"
	"fleet-analytics/modernity/internal/scoring"
	"fleet-analytics/modernity/internal/tabular"
)

// Raw dataset columns.
const (
	ColAirlineName = "airline_name"
	ColCountry     = "country"
)

// ModelColumns are the accepted model columns, most detailed first.
var ModelColumns = []string{"detailed_aircraft_type", "aircraft_type"}

// DecodeAircraft reads the raw per-aircraft table. The country column is
// required only when withCountry is set.
func DecodeAircraft(t *tabular.Table, withCountry bool) ([]fleet.AircraftRecord, error) {
	if err := t.Require(ColAirlineName); err != nil {
		return nil, err
	}
	modelCol, err := t.FirstOf(ModelColumns...)
	if err != nil {
		return nil, err
	}
	if withCountry {
		if err := t.Require(ColCountry); err != nil {
			return nil, err
		}
	}

	out := make([]fleet.AircraftRecord, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		out = append(out, fleet.AircraftRecord{
			Airline: t.Get(i, ColAirlineName),
			Model:   t.Get(i, modelCol),
			Country: t.Get(i, ColCountry),
		})
	}
	return out, nil
}

// DecodeFleetSizes reads the secondary per-airline aggregate (airline,
// fleet_size) used when a features row lacks a fleet size.
func DecodeFleetSizes(t *tabular.Table) (scoring.FleetSizeTable, error) {
	if err := t.Require("airline", "fleet_size"); err != nil {
		return nil, err
	}
	entries := make([]scoring.FleetSizeEntry, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		name := t.Get(i, "airline")
		v := t.Float(i, "fleet_size")
		if name == "" || v == nil {
			continue
		}
		entries = append(entries, scoring.FleetSizeEntry{Airline: name, FleetSize: *v})
	}
	return scoring.NewFleetSizeTable(entries), nil
}

// ModelsFrequencyColumns is the layout of the model frequency export.
var ModelsFrequencyColumns = []string{"model", "count"}

// EncodeModelFrequencies renders the model frequency export.
func EncodeModelFrequencies(freqs []fleet.ModelFrequency) [][]string {
	rows := make([][]string, 0, len(freqs))
	for _, f := range freqs {
		rows = append(rows, []string{f.Model, tabular.FormatInt(f.Count)})
	}
	return rows
}
