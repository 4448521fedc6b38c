package release

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-analytics/modernity/internal/fleet"
	"fleet-analytics/modernity/internal/geo"
	"fleet-analytics/modernity/internal/scoring"
	"fleet-analytics/modernity/internal/tabular"
)

func decode(t *testing.T, name, content string) *tabular.Table {
	t.Helper()
	tbl, err := tabular.DecodeCSV(name, strings.NewReader(content))
	require.NoError(t, err)
	return tbl
}

func TestDecodeAircraft(t *testing.T) {
	tbl := decode(t, "dataset", "airline_name,aircraft_type,detailed_aircraft_type,country\nAIR FRANCE,A320,A320neo,France\n")

	recs, err := DecodeAircraft(tbl, true)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "A320neo", recs[0].Model, "the detailed model column wins")
	assert.Equal(t, "France", recs[0].Country)

	noCountry := decode(t, "dataset", "airline_name,aircraft_type\nAIR FRANCE,A320\n")
	_, err = DecodeAircraft(noCountry, false)
	require.NoError(t, err)

	_, err = DecodeAircraft(noCountry, true)
	var colErr *tabular.MissingColumnError
	require.True(t, errors.As(err, &colErr))
	assert.Equal(t, "country", colErr.Column)

	_, err = DecodeAircraft(decode(t, "dataset", "airline_name,country\nX,France\n"), true)
	require.True(t, errors.As(err, &colErr))
	assert.Equal(t, "detailed_aircraft_type|aircraft_type", colErr.Column)
}

func TestDecodeFleetSizes_KeepsFirstRowPerAirline(t *testing.T) {
	tbl := decode(t, "AIR3", "airline,fleet_size\nAir France,10\nAIR FRANCE,20\nAir Austral,\n air france ,30\n")
	for i := 0; i < 50; i++ {
		sizes, err := DecodeFleetSizes(tbl)
		require.NoError(t, err)

		v, ok := sizes.FleetSize("AIR FRANCE")
		require.True(t, ok)
		assert.Equal(t, 10.0, v)

		_, ok = sizes.FleetSize("Air Austral")
		assert.False(t, ok, "blank fleet sizes are skipped")
	}
}

func TestFeaturesRoundTrip(t *testing.T) {
	features := fleet.Aggregate([]fleet.AircraftRecord{
		{Airline: "AIR FRANCE", Model: "A320neo"},
		{Airline: "AIR FRANCE", Model: "A320neo"},
		{Airline: "AIR FRANCE", Model: "A321"},
	})

	var sb strings.Builder
	require.NoError(t, tabular.EncodeCSV(&sb, FeaturesColumns, EncodeFeatures(features), tabular.WriteOptions{}))

	back, err := DecodeFeatures(decode(t, FeaturesFile, sb.String()))
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.Equal(t, 3, back[0].FleetSize)
	assert.Equal(t, 1, back[0].NNeo)
	assert.InDelta(t, 1.0/3.0, back[0].PctNeo, 1e-12)
	assert.Nil(t, back[0].LegacyIndexPublic, "withheld below the fleet threshold")
}

func TestDecodeScorerInputs_RebuildsGroupedShares(t *testing.T) {
	tbl := decode(t, FeaturesFile, "airline,fleet_size,pct_neo,pct_max,pct_787\nA,10,20,0.1,0.5\n")

	inputs, err := DecodeScorerInputs(tbl)
	require.NoError(t, err)
	require.Len(t, inputs, 1)

	in := inputs[0]
	require.NotNil(t, in.PctNewgenNarrow)
	assert.InDelta(t, 0.3, *in.PctNewgenNarrow, 1e-12, "20 is read as a percentage")
	require.NotNil(t, in.PctNewgenWide)
	assert.InDelta(t, 0.5, *in.PctNewgenWide, 1e-12)
	require.NotNil(t, in.PctA220)
	assert.Equal(t, 0.0, *in.PctA220)
	assert.Nil(t, in.Diversity)

	s := scoring.NewScorer(nil).Score(in)
	assert.Empty(t, s.QANotes)
}

func TestDecodeScorerInputs_BlankComponentStaysNil(t *testing.T) {
	tbl := decode(t, FeaturesFile, "airline,fleet_size,pct_newgen_narrow,pct_newgen_wide,pct_a220\nA,10,0.5,,0.1\n")

	inputs, err := DecodeScorerInputs(tbl)
	require.NoError(t, err)
	assert.Nil(t, inputs[0].PctNewgenWide)
	assert.Equal(t, scoring.QAMissingComponent, scoring.NewScorer(nil).Score(inputs[0]).QANotes)
}

func TestScoresRoundTrip(t *testing.T) {
	fs := 3.0
	narrow, wide, a220 := 1.0, 0.0, 0.5
	scores := scoring.NewScorer(nil).ScoreAll([]scoring.Input{{
		Airline: "TINY", FleetSize: &fs, PctNewgenNarrow: &narrow, PctNewgenWide: &wide, PctA220: &a220,
	}})

	var sb strings.Builder
	require.NoError(t, tabular.EncodeCSV(&sb, ScoresColumns, EncodeScores(scores), tabular.WriteOptions{}))
	assert.True(t, strings.HasPrefix(sb.String(), "airline,fleet_size,diversity,modernity_index,version_v1,qa_notes,"))

	back, err := DecodeScores(decode(t, ScoresFile, sb.String()), "modernity_index_public")
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.Nil(t, back[0].Public)
	assert.InDelta(t, scores[0].Penalized, back[0].Penalized, 1e-12)
	assert.Equal(t, "fleet_too_small", back[0].QANotes)
	assert.Equal(t, "v1", back[0].Version)

	_, err = DecodeScores(decode(t, ScoresFile, "airline,modernity_index\nA,0.5\n"), "modernity_index_public")
	var colErr *tabular.MissingColumnError
	assert.True(t, errors.As(err, &colErr))
}

func TestEncodeMissingRegions(t *testing.T) {
	rows := EncodeMissingRegions([]geo.Assignment{
		{Resolution: geo.Resolution{Airline: "A", Country: "France", Resolved: true}, Region: geo.Europe, HasRegion: true},
		{Resolution: geo.Resolution{Airline: "B", Country: "Belgique", Resolved: true, Stage: geo.StageModeJoin, Reason: "no mapping"}},
		{Resolution: geo.Resolution{Airline: "B", Country: "Belgique", Resolved: true, Stage: geo.StageModeJoin, Reason: "no mapping"}},
	})
	assert.Equal(t, [][]string{{"B", "Belgique", "mode_join", "no mapping"}}, rows)
}

func TestJoinClusteringFeatures(t *testing.T) {
	header := strings.Join([]string{
		"airline", "fleet_size", "n_models", "diversity", "new_gen_share",
		"pct_a220", "pct_787", "pct_a350", "pct_a330neo", "pct_neo", "pct_max",
		"pct_newgen_narrow", "pct_newgen_wide",
	}, ",")
	features := decode(t, FeaturesFile, header+"\nZETA,5,1,0.2,0,0,0,0,0,0,0,0,0\nALPHA,9,2,0.2,0,0,0,0,0,0,0,0,0\nGHOST,1,1,1,0,0,0,0,0,0,0,0,0\n")
	scores := decode(t, ScoresFile, "airline,modernity_index\nALPHA,0.25\nZETA,0.5\n")

	rows, err := JoinClusteringFeatures(features, scores)
	require.NoError(t, err)
	require.Len(t, rows, 2, "inner join drops GHOST")
	assert.Equal(t, "ALPHA", rows[0][0])
	assert.Equal(t, "0.25", rows[0][4])
	assert.Equal(t, "ZETA", rows[1][0])
	assert.Len(t, rows[0], len(ClusteringColumns))
}

func TestDecodeClusters(t *testing.T) {
	got, err := DecodeClusters(decode(t, ClustersFile, "airline,cluster\nA,1\nB,2.0\nC,\n"))
	require.NoError(t, err)
	assert.Equal(t, []Assignment{{"A", 1}, {"B", 2}}, got)
}

func TestWithColumn(t *testing.T) {
	tbl := decode(t, "x", "a,b\n1,2\n3\n")
	header, rows := WithColumn(tbl, "c", []string{"x", "y"})
	assert.Equal(t, []string{"a", "b", "c"}, header)
	assert.Equal(t, [][]string{{"1", "2", "x"}, {"3", "", "y"}}, rows)
}
