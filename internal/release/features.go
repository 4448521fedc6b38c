package release

import (
	"fleet-analytics/modernity/internal/fleet"
	"fleet-analytics/modernity/internal/scoring"
	"fleet-analytics/modernity/internal/tabular"
)

// FeaturesColumns is the layout of features_by_airline.csv.
var FeaturesColumns = []string{
	"airline", "fleet_size", "n_models", "diversity",
	"n_a220", "n_787", "n_a350", "n_a330neo", "n_neo", "n_max",
	"pct_a220", "pct_787", "pct_a350", "pct_a330neo", "pct_neo", "pct_max",
	"pct_newgen_narrow", "pct_newgen_wide",
	"new_gen_share", "modernity_index_v0", "modernity_index_v0_public", "modernity_index_v0_penalized",
}

// EncodeFeatures renders aggregated rows in FeaturesColumns order.
func EncodeFeatures(features []fleet.AirlineFeatures) [][]string {
	rows := make([][]string, 0, len(features))
	for _, f := range features {
		rows = append(rows, []string{
			f.Airline,
			tabular.FormatInt(f.FleetSize),
			tabular.FormatInt(f.NModels),
			tabular.FormatFloat(f.Diversity),
			tabular.FormatInt(f.NA220),
			tabular.FormatInt(f.N787),
			tabular.FormatInt(f.NA350),
			tabular.FormatInt(f.NA330neo),
			tabular.FormatInt(f.NNeo),
			tabular.FormatInt(f.NMax),
			tabular.FormatFloat(f.PctA220),
			tabular.FormatFloat(f.Pct787),
			tabular.FormatFloat(f.PctA350),
			tabular.FormatFloat(f.PctA330neo),
			tabular.FormatFloat(f.PctNeo),
			tabular.FormatFloat(f.PctMax),
			tabular.FormatFloat(f.PctNewgenNarrow),
			tabular.FormatFloat(f.PctNewgenWide),
			tabular.FormatFloat(f.NewGenShare),
			tabular.FormatFloat(f.LegacyIndexV0),
			tabular.FormatOptFloat(f.LegacyIndexPublic),
			tabular.FormatFloat(f.LegacyIndexPenalized),
		})
	}
	return rows
}

// DecodeFeatures reads features_by_airline.csv back. Only the airline column
// is required; absent numeric cells read as zero.
func DecodeFeatures(t *tabular.Table) ([]fleet.AirlineFeatures, error) {
	if err := t.Require("airline"); err != nil {
		return nil, err
	}
	num := func(i int, col string) float64 {
		if v := t.Float(i, col); v != nil {
			return *v
		}
		return 0
	}
	count := func(i int, col string) int {
		n, _ := t.Int(i, col)
		return n
	}

	out := make([]fleet.AirlineFeatures, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		out = append(out, fleet.AirlineFeatures{
			Airline:              t.Get(i, "airline"),
			FleetSize:            count(i, "fleet_size"),
			NModels:              count(i, "n_models"),
			Diversity:            num(i, "diversity"),
			NA220:                count(i, "n_a220"),
			N787:                 count(i, "n_787"),
			NA350:                count(i, "n_a350"),
			NA330neo:             count(i, "n_a330neo"),
			NNeo:                 count(i, "n_neo"),
			NMax:                 count(i, "n_max"),
			PctA220:              num(i, "pct_a220"),
			Pct787:               num(i, "pct_787"),
			PctA350:              num(i, "pct_a350"),
			PctA330neo:           num(i, "pct_a330neo"),
			PctNeo:               num(i, "pct_neo"),
			PctMax:               num(i, "pct_max"),
			PctNewgenNarrow:      num(i, "pct_newgen_narrow"),
			PctNewgenWide:        num(i, "pct_newgen_wide"),
			NewGenShare:          num(i, "new_gen_share"),
			LegacyIndexV0:        num(i, "modernity_index_v0"),
			LegacyIndexPublic:    t.Float(i, "modernity_index_v0_public"),
			LegacyIndexPenalized: num(i, "modernity_index_v0_penalized"),
		})
	}
	return out, nil
}

// DecodeScorerInputs reads a features table into scorer inputs. Missing
// columns and blank cells stay nil so the scorer can flag or rebuild them.
// When the grouped narrow/wide shares are absent they are rebuilt from the
// per-family shares, each missing family counting as zero. An absent
// pct_a220 column also counts as zero.
func DecodeScorerInputs(t *tabular.Table) ([]scoring.Input, error) {
	if err := t.Require("airline"); err != nil {
		return nil, err
	}
	rebuild := !t.Has("pct_newgen_narrow") || !t.Has("pct_newgen_wide")
	hasA220 := t.Has("pct_a220")

	out := make([]scoring.Input, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		in := scoring.Input{
			Airline:         t.Get(i, "airline"),
			FleetSize:       t.Float(i, "fleet_size"),
			NModels:         t.Float(i, "n_models"),
			Diversity:       t.Float(i, "diversity"),
			PctNewgenNarrow: t.Float(i, "pct_newgen_narrow"),
			PctNewgenWide:   t.Float(i, "pct_newgen_wide"),
			PctA220:         t.Float(i, "pct_a220"),
		}
		if rebuild {
			share := func(cols ...string) *float64 {
				var sum float64
				for _, c := range cols {
					if v := t.Float(i, c); v != nil {
						sum += scoring.ToProportion(*v)
					}
				}
				v := fleet.Clamp01(sum)
				return &v
			}
			in.PctNewgenNarrow = share("pct_neo", "pct_max", "pct_a220")
			in.PctNewgenWide = share("pct_787", "pct_a350", "pct_a330neo")
		}
		if !hasA220 {
			zero := 0.0
			in.PctA220 = &zero
		}
		out = append(out, in)
	}
	return out, nil
}
