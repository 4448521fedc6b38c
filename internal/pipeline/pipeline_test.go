package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-analytics/modernity/internal/db/repositories"
	"fleet-analytics/modernity/internal/metrics"
	"fleet-analytics/modernity/internal/regions"
	"fleet-analytics/modernity/internal/release"
	"fleet-analytics/modernity/internal/tabular"
)

const rawDataset = `airline_name,detailed_aircraft_type,country
AIR FRANCE,A320neo,France
AIR FRANCE,A320neo,France
AIR FRANCE,A321,France
BRUSSELS AIRLINES,A320-200,Belgique
BRUSSELS AIRLINES,A330-300,Belgique
AIR FRANCE,787-9,France
AIR FRANCE,A350-900,France
AIR FRANCE,A220-300,France
`

type fakeSyncer struct {
	sources []string
}

func (f *fakeSyncer) Run(ctx context.Context, source string) (repositories.LoadStats, error) {
	f.sources = append(f.sources, source)
	return repositories.LoadStats{"airline_scores": 2}, nil
}

func setup(t *testing.T, opts Options) (*Pipeline, release.Layout) {
	t.Helper()
	dir := t.TempDir()
	layout := release.Layout{
		SourceDir:  filepath.Join(dir, "source"),
		ReleaseDir: filepath.Join(dir, "release"),
		RawFile:    filepath.Join(dir, "source", "dataset.csv"),
	}
	writeFile(t, layout.RawFile, rawDataset)

	opts.Layout = layout
	p, err := New(opts)
	require.NoError(t, err)
	return p, layout
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readTable(t *testing.T, path string) *tabular.Table {
	t.Helper()
	tbl, err := tabular.ReadCSV(path)
	require.NoError(t, err)
	return tbl
}

func rowOf(t *testing.T, tbl *tabular.Table, col, value string) int {
	t.Helper()
	for i := 0; i < tbl.Len(); i++ {
		if tbl.Get(i, col) == value {
			return i
		}
	}
	t.Fatalf("no row with %s=%q in %s", col, value, tbl.Name)
	return -1
}

func TestFeaturesStage(t *testing.T) {
	p, layout := setup(t, Options{})
	require.NoError(t, p.Run(context.Background(), StageFeatures))

	tbl := readTable(t, layout.Release(release.FeaturesFile))
	assert.Equal(t, release.FeaturesColumns, tbl.Header)
	require.Equal(t, 2, tbl.Len())

	i := rowOf(t, tbl, "airline", "AIR FRANCE")
	assert.Equal(t, "6", tbl.Get(i, "fleet_size"))
	assert.Equal(t, "5", tbl.Get(i, "n_models"))
	assert.Equal(t, "1", tbl.Get(i, "n_neo"), "duplicate (airline, model) pairs count once")
	assert.Equal(t, "1", tbl.Get(i, "n_787"))

	freqs := readTable(t, layout.Release(release.ModelsFrequencyFile))
	assert.Equal(t, []string{"model", "count"}, freqs.Header)
	assert.Equal(t, "2", freqs.Get(0, "count"))
}

func TestScoresStage(t *testing.T) {
	p, layout := setup(t, Options{})
	ctx := context.Background()
	require.NoError(t, p.Run(ctx, StageFeatures))
	require.NoError(t, p.Run(ctx, StageScores))

	tbl := readTable(t, layout.Release(release.ScoresFile))
	assert.Equal(t, release.ScoresColumns, tbl.Header)

	af := rowOf(t, tbl, "airline", "AIR FRANCE")
	assert.Equal(t, "v1", tbl.Get(af, "version_v1"))
	assert.Empty(t, tbl.Get(af, "qa_notes"))
	// narrow = (neo + a220)/6, wide = (787 + a350)/6, a220 = 1/6
	index := 0.4*(2.0/6) + 0.4*(2.0/6) + 0.2*(1.0/6)
	assert.InDelta(t, index, *tbl.Float(af, "modernity_index"), 1e-12)
	assert.InDelta(t, index, *tbl.Float(af, "modernity_index_public"), 1e-12)

	sn := rowOf(t, tbl, "airline", "BRUSSELS AIRLINES")
	assert.Equal(t, "fleet_too_small", tbl.Get(sn, "qa_notes"))
	assert.Empty(t, tbl.Get(sn, "modernity_index_public"))
}

func TestScoresStage_FleetSizeFallback(t *testing.T) {
	p, layout := setup(t, Options{})
	writeFile(t, layout.Release(release.FeaturesFile),
		"airline,fleet_size,pct_newgen_narrow,pct_newgen_wide,pct_a220\nAir Austral,,0.5,0.5,0\n")

	require.NoError(t, p.Run(context.Background(), StageScores))
	tbl := readTable(t, layout.Release(release.ScoresFile))
	assert.Equal(t, "0", tbl.Get(0, "fleet_size"), "no aggregate: missing fleet size falls back to 0")
	assert.Equal(t, "fleet_too_small", tbl.Get(0, "qa_notes"))
}

func TestRegionsStage(t *testing.T) {
	reg := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	p, layout := setup(t, Options{Metrics: reg})

	writeFile(t, layout.Mapping(), "country,country_code,region\nFrance,FR,Europe\n")
	writeFile(t, layout.Release(release.ScoresFile),
		"airline,fleet_size,diversity,modernity_index,version_v1,qa_notes\n"+
			"AIR FRANCE,6,0.8,0.6,v1,\n"+
			"BRUSSELS AIRLINES,2,1,0.9,v1,fleet_too_small\n")

	require.NoError(t, p.Run(context.Background(), StageRegions))

	summary := readTable(t, layout.Release(release.RegionSummaryFile))
	assert.Equal(t, release.RegionSummaryColumns, summary.Header)
	require.Equal(t, 1, summary.Len())
	assert.Equal(t, "Europe", summary.Get(0, "region"))
	assert.Equal(t, "1", summary.Get(0, "n_airlines"))
	assert.Equal(t, "0.6", summary.Get(0, "mean_modernity_index"))
	assert.Equal(t, "AIR FRANCE (0.600)", summary.Get(0, "top_airlines"))

	missing := readTable(t, layout.Release(release.MissingRegionFile))
	require.Equal(t, 1, missing.Len())
	assert.Equal(t, "BRUSSELS AIRLINES", missing.Get(0, "airline"))
	assert.Equal(t, "Belgique", missing.Get(0, "country"))

	assert.Equal(t, 1.0, testutil.ToFloat64(reg.UnresolvedTotal))
}

func TestRegionsStage_PublicVariantRequiresColumn(t *testing.T) {
	p, layout := setup(t, Options{Variant: regions.VariantPublic})
	writeFile(t, layout.Mapping(), "country,country_code,region\nFrance,FR,Europe\n")
	writeFile(t, layout.Release(release.ScoresFile), "airline,modernity_index\nAIR FRANCE,0.6\n")

	err := p.Run(context.Background(), StageRegions)
	var colErr *tabular.MissingColumnError
	require.True(t, errors.As(err, &colErr))
	assert.Equal(t, "modernity_index_public", colErr.Column)
}

func TestRegionsStage_NothingResolved(t *testing.T) {
	p, layout := setup(t, Options{})
	writeFile(t, layout.Mapping(), "country,country_code,region\nPérou,PE,South America\n")
	writeFile(t, layout.Release(release.ScoresFile), "airline,modernity_index\nBRUSSELS AIRLINES,0.9\n")

	err := p.Run(context.Background(), StageRegions)
	assert.ErrorIs(t, err, ErrNoResolvedAirlines)
	assert.True(t, tabular.Exists(layout.Release(release.MissingRegionFile)), "the side file is written before failing")
}

func TestMappingStage_IsAdditive(t *testing.T) {
	p, layout := setup(t, Options{})
	writeFile(t, layout.Mapping(), "country,country_code,region\nFrance,XX,Europe\nNarnia,,\n")

	require.NoError(t, p.Run(context.Background(), StageMapping))

	raw, err := os.ReadFile(layout.Mapping())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "\ufeffcountry,country_code,region\n"))

	tbl := readTable(t, layout.Mapping())
	require.Equal(t, 3, tbl.Len())
	assert.Equal(t, "XX", tbl.Get(0, "country_code"), "curated values are kept")
	assert.Equal(t, "Narnia", tbl.Get(1, "country"), "rows are never deleted")
	assert.Equal(t, "Belgique", tbl.Get(2, "country"))
	assert.Equal(t, "BE", tbl.Get(2, "country_code"))
	assert.Equal(t, "Europe", tbl.Get(2, "region"))
}

func TestBucketsStage(t *testing.T) {
	p, layout := setup(t, Options{})
	writeFile(t, layout.Release(release.FeaturesFile), "airline,fleet_size\nA,1\nB,2\nC,3\nD,\n")

	require.NoError(t, p.Run(context.Background(), StageBuckets))

	tbl := readTable(t, layout.Release(release.FleetBucketsFile))
	assert.Equal(t, []string{"airline", "fleet_size", "fleet_bucket"}, tbl.Header)
	assert.Equal(t, "Small", tbl.Get(0, "fleet_bucket"))
	assert.Equal(t, "Medium", tbl.Get(1, "fleet_bucket"))
	assert.Equal(t, "Large", tbl.Get(2, "fleet_bucket"))
	assert.Empty(t, tbl.Get(3, "fleet_bucket"))
}

func TestRunAll_IsIdempotent(t *testing.T) {
	syncer := &fakeSyncer{}
	p, layout := setup(t, Options{Syncer: syncer})
	ctx := context.Background()

	outputs := []string{
		layout.Release(release.FeaturesFile),
		layout.Release(release.ScoresFile),
		layout.Release(release.RegionSummaryFile),
		layout.Release(release.FleetBucketsFile),
		layout.Release(release.ClusteringFeaturesFile),
		layout.Mapping(),
	}

	require.NoError(t, p.Run(ctx, StageAll))
	first := make(map[string]string)
	for _, path := range outputs {
		b, err := os.ReadFile(path)
		require.NoError(t, err, path)
		first[path] = string(b)
	}

	require.NoError(t, p.Run(ctx, StageAll))
	for _, path := range outputs {
		b, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, first[path], string(b), path)
	}

	assert.Equal(t, []string{"PIPELINE", "PIPELINE"}, syncer.sources)

	clustering := readTable(t, layout.Release(release.ClusteringFeaturesFile))
	assert.Equal(t, release.ClusteringColumns, clustering.Header)
	assert.Equal(t, 2, clustering.Len())
}

func TestRun_MissingRawFile(t *testing.T) {
	p, layout := setup(t, Options{})
	require.NoError(t, os.Remove(layout.RawFile))

	err := p.Run(context.Background(), StageAll)
	var fileErr *tabular.MissingFileError
	require.True(t, errors.As(err, &fileErr))
	assert.Equal(t, layout.RawFile, fileErr.Path)
}

func TestParseStage(t *testing.T) {
	st, err := ParseStage("clustering-features")
	require.NoError(t, err)
	assert.Equal(t, StageClusteringFeatures, st)

	st, err = ParseStage("all")
	require.NoError(t, err)
	assert.Equal(t, StageAll, st)

	_, err = ParseStage("charts")
	assert.Error(t, err)
}
