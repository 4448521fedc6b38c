package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-analytics/modernity/internal/constants"
	"fleet-analytics/modernity/internal/db"
	"fleet-analytics/modernity/internal/db/repositories"
	"fleet-analytics/modernity/internal/metrics"
	gormModels "fleet-analytics/modernity/internal/models/gorm"
	"fleet-analytics/modernity/internal/release"
	"fleet-analytics/modernity/internal/tabular"
)

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(ctx context.Context) error {
	c.calls++
	return nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testLayout(t *testing.T) release.Layout {
	dir := t.TempDir()
	layout := release.Layout{SourceDir: filepath.Join(dir, "source"), ReleaseDir: filepath.Join(dir, "release")}

	writeFile(t, layout.Release(release.FeaturesFile),
		"airline,fleet_size,n_models,diversity,pct_newgen_narrow,pct_newgen_wide,new_gen_share\n"+
			"AIR FRANCE,10,3,0.3,0.4,0.1,0.5\n"+
			"TINY AIR,2,1,0.5,1,0,1\n")
	writeFile(t, layout.Release(release.ScoresFile),
		"airline,fleet_size,diversity,modernity_index,version_v1,qa_notes,modernity_index_public,modernity_index_penalized\n"+
			"AIR FRANCE,10,0.3,0.2,v1,,0.2,0.2\n"+
			"TINY AIR,2,0.5,0.4,v1,fleet_too_small,,0.16\n")
	return layout
}

type fixture struct {
	handles *db.Handles
	job     *WarehouseSyncJob
	inv     *countingInvalidator
	metrics *metrics.MetricsRegistry
	history *repositories.SyncHistoryRepo
}

func newFixture(t *testing.T, layout release.Layout) fixture {
	t.Helper()
	h, err := db.InitSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	history := repositories.NewSyncHistoryRepo(h.Write)
	require.NoError(t, history.Migrate(context.Background()))

	inv := &countingInvalidator{}
	reg := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	job := NewWarehouseSyncJob(layout, repositories.NewWarehouseRepository(h.Write), history, inv, reg)
	return fixture{handles: h, job: job, inv: inv, metrics: reg, history: history}
}

func TestWarehouseSyncJob_Run(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testLayout(t))

	stats, err := f.job.Run(ctx, constants.SyncSourcePipeline)
	require.NoError(t, err)
	assert.Equal(t, 2, stats["airline_features"])
	assert.Equal(t, 2, stats["airline_scores"])
	assert.Equal(t, 0, stats["airline_clusters"], "optional tables load empty")
	assert.Equal(t, 1, f.inv.calls)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.SyncRowsLoaded.WithLabelValues("airline_scores")))

	rows, err := repositories.NewAirlineRepository(f.handles.Read, nil).ListTop(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "TINY AIR", rows[0].Airline)
	require.NotNil(t, rows[0].ModernityIndexScore)
	assert.InDelta(t, 0.4, *rows[0].ModernityIndexScore, 1e-12)

	last, err := f.history.LastSuccess(ctx)
	require.NoError(t, err)
	assert.NotNil(t, last)
}

func TestWarehouseSyncJob_OptionalTables(t *testing.T) {
	ctx := context.Background()
	layout := testLayout(t)
	writeFile(t, layout.Release(release.ClustersFile), "airline,cluster\nAIR FRANCE,2\nTINY AIR,0\n")
	writeFile(t, layout.Release(release.RegionSummaryFile),
		"region,n_airlines,mean_modernity_index,top_airlines\nEurope,1,0.2,AIR FRANCE (0.200)\n")
	writeFile(t, layout.Mapping(), "\ufeffcountry,country_code,region\nFrance,FR,Europe\n,,\n")

	f := newFixture(t, layout)
	stats, err := f.job.Run(ctx, constants.SyncSourcePipeline)
	require.NoError(t, err)
	assert.Equal(t, 2, stats["airline_clusters"])
	assert.Equal(t, 1, stats["region_summary"])
	assert.Equal(t, 1, stats["country_region_mapping"])

	reader := repositories.NewAirlineRepository(f.handles.Read, nil)
	cluster, err := reader.ListByCluster(ctx, 2)
	require.NoError(t, err)
	require.Len(t, cluster, 1)
	assert.Equal(t, "AIR FRANCE", cluster[0].Airline)

	var mapping []gormModels.CountryRegionMapping
	require.NoError(t, f.handles.Write.Find(&mapping).Error)
	assert.Equal(t, "FR", mapping[0].CountryCode)
}

func TestWarehouseSyncJob_MissingScoresFails(t *testing.T) {
	ctx := context.Background()
	layout := testLayout(t)
	require.NoError(t, os.Remove(layout.Release(release.ScoresFile)))

	f := newFixture(t, layout)
	_, err := f.job.Run(ctx, constants.SyncSourcePipeline)

	var fileErr *tabular.MissingFileError
	require.True(t, errors.As(err, &fileErr))
	assert.Equal(t, 0, f.inv.calls)

	var entries []gormModels.SyncHistory
	require.NoError(t, f.handles.Write.Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, constants.SyncStatusFailed, entries[0].Status)
	assert.Contains(t, entries[0].Error, release.ScoresFile)
}

func TestWarehouseSyncJob_RunScheduledRejectsBadSpec(t *testing.T) {
	f := newFixture(t, testLayout(t))
	err := f.job.RunScheduled(context.Background(), "every now and then")
	assert.Error(t, err)
}

func TestWarehouseSyncJob_RunScheduledStopsOnCancel(t *testing.T) {
	f := newFixture(t, testLayout(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, f.job.RunScheduled(ctx, "*/5 * * * *"))
}

func TestInitializeJobs_StartupSyncOnlyOnce(t *testing.T) {
	ctx := context.Background()
	layout := testLayout(t)
	f := newFixture(t, layout)
	warehouse := repositories.NewWarehouseRepository(f.handles.Write)

	InitializeJobs(ctx, layout, warehouse, f.history, f.inv, nil)
	assert.Equal(t, 1, f.inv.calls)

	InitializeJobs(ctx, layout, warehouse, f.history, f.inv, nil)
	assert.Equal(t, 1, f.inv.calls, "a loaded warehouse is not reloaded at startup")
}
