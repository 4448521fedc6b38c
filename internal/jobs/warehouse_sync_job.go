package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"fleet-analytics/modernity/internal/constants"
	"fleet-analytics/modernity/internal/db/repositories"
	"fleet-analytics/modernity/internal/logging"
	"fleet-analytics/modernity/internal/metrics"
	gormModels "fleet-analytics/modernity/internal/models/gorm"
	"fleet-analytics/modernity/internal/release"
	"fleet-analytics/modernity/internal/tabular"
)

const jobName = "warehouse_sync"

// ErrSyncInProgress is returned when a load is requested while one is running.
var ErrSyncInProgress = errors.New("warehouse sync already running")

// Invalidator drops cached API responses after a load.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// WarehouseSyncJob loads the release tables into the SQL warehouse
type WarehouseSyncJob struct {
	layout      release.Layout
	warehouse   *repositories.WarehouseRepository
	history     *repositories.SyncHistoryRepo
	invalidator Invalidator
	metrics     *metrics.MetricsRegistry

	running sync.Mutex
}

// NewWarehouseSyncJob creates a sync job. invalidator and metricsReg may be nil.
func NewWarehouseSyncJob(
	layout release.Layout,
	warehouse *repositories.WarehouseRepository,
	history *repositories.SyncHistoryRepo,
	invalidator Invalidator,
	metricsReg *metrics.MetricsRegistry,
) *WarehouseSyncJob {
	return &WarehouseSyncJob{
		layout:      layout,
		warehouse:   warehouse,
		history:     history,
		invalidator: invalidator,
		metrics:     metricsReg,
	}
}

// Run replaces the warehouse content with the current release files and
// records the outcome under source.
func (j *WarehouseSyncJob) Run(ctx context.Context, source string) (repositories.LoadStats, error) {
	if !j.running.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer j.running.Unlock()

	start := time.Now()
	logging.Info("[WarehouseSyncJob] Starting warehouse sync", "source", source, "release_dir", j.layout.ReleaseDir)

	entryID, err := j.history.Start(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to record sync start: %w", err)
	}

	stats, runErr := j.load(ctx)

	if err := j.history.Finish(ctx, entryID, stats.Total(), runErr); err != nil {
		logging.Error("[WarehouseSyncJob] Failed to record sync outcome", "error", err.Error())
	}
	if j.metrics != nil {
		j.metrics.SyncJobDuration.WithLabelValues(jobName).Observe(time.Since(start).Seconds())
	}
	if runErr != nil {
		logging.Error("[WarehouseSyncJob] Sync failed", "source", source, "error", runErr.Error())
		return nil, runErr
	}

	if j.invalidator != nil {
		if err := j.invalidator.Invalidate(ctx); err != nil {
			logging.Warn("[WarehouseSyncJob] Failed to invalidate response cache", "error", err.Error())
		}
	}

	logging.Info("[WarehouseSyncJob] Completed warehouse sync",
		"source", source,
		"rows", stats.Total(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return stats, nil
}

func (j *WarehouseSyncJob) load(ctx context.Context) (repositories.LoadStats, error) {
	snap, err := LoadSnapshot(j.layout)
	if err != nil {
		return nil, err
	}
	stats, err := j.warehouse.Replace(ctx, snap)
	if err != nil {
		return nil, err
	}
	if j.metrics != nil {
		for table, n := range stats {
			j.metrics.SyncRowsLoaded.WithLabelValues(table).Add(float64(n))
		}
	}
	return stats, nil
}

// RunScheduled runs the job on a standard five-field cron spec until ctx is
// cancelled. Overlapping triggers are skipped.
func (j *WarehouseSyncJob) RunScheduled(ctx context.Context, spec string) error {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("invalid sync schedule %q: %w", spec, err)
	}

	c := cron.New()
	c.Schedule(schedule, cron.FuncJob(func() {
		if _, err := j.Run(ctx, constants.SyncSourceScheduled); err != nil {
			if errors.Is(err, ErrSyncInProgress) {
				logging.Warn("[WarehouseSyncJob] Skipping scheduled run, previous run still active")
				return
			}
			logging.Error("[WarehouseSyncJob] Error in scheduled run", "error", err.Error())
		}
	}))
	c.Start()
	logging.Info("[WarehouseSyncJob] Scheduled warehouse sync", "cron", spec)

	<-ctx.Done()
	stopped := c.Stop()
	<-stopped.Done()
	logging.Info("[WarehouseSyncJob] Shutting down scheduled sync")
	return nil
}

// LoadSnapshot reads the release tables. Features and scores are required;
// the cluster labels, the region summary and the country mapping are loaded
// when present.
func LoadSnapshot(layout release.Layout) (repositories.Snapshot, error) {
	var snap repositories.Snapshot

	featTable, err := tabular.ReadCSV(layout.Release(release.FeaturesFile))
	if err != nil {
		return snap, err
	}
	features, err := release.DecodeFeatures(featTable)
	if err != nil {
		return snap, err
	}
	for _, f := range features {
		snap.Features = append(snap.Features, gormModels.AirlineFeature{
			Airline:         f.Airline,
			FleetSize:       f.FleetSize,
			NModels:         f.NModels,
			Diversity:       f.Diversity,
			NA220:           f.NA220,
			N787:            f.N787,
			NA350:           f.NA350,
			NA330neo:        f.NA330neo,
			NNeo:            f.NNeo,
			NMax:            f.NMax,
			PctA220:         f.PctA220,
			Pct787:          f.Pct787,
			PctA350:         f.PctA350,
			PctA330neo:      f.PctA330neo,
			PctNeo:          f.PctNeo,
			PctMax:          f.PctMax,
			PctNewgenNarrow: f.PctNewgenNarrow,
			PctNewgenWide:   f.PctNewgenWide,
			NewGenShare:     f.NewGenShare,
		})
	}

	scoreTable, err := tabular.ReadCSV(layout.Release(release.ScoresFile))
	if err != nil {
		return snap, err
	}
	scores, err := release.DecodeScores(scoreTable)
	if err != nil {
		return snap, err
	}
	for _, s := range scores {
		snap.Scores = append(snap.Scores, gormModels.AirlineScore{
			Airline:                 s.Airline,
			FleetSize:               s.FleetSize,
			Diversity:               s.Diversity,
			ModernityIndex:          s.ModernityIndex,
			ModernityIndexPublic:    s.Public,
			ModernityIndexPenalized: s.Penalized,
			VersionV1:               s.Version,
			QANotes:                 s.QANotes,
		})
	}

	if t, ok, err := readOptional(layout.Release(release.ClustersFile)); err != nil {
		return snap, err
	} else if ok {
		assignments, err := release.DecodeClusters(t)
		if err != nil {
			return snap, err
		}
		for _, a := range assignments {
			snap.Clusters = append(snap.Clusters, gormModels.AirlineCluster{Airline: a.Airline, Cluster: a.Cluster})
		}
	}

	if t, ok, err := readOptional(layout.Release(release.RegionSummaryFile)); err != nil {
		return snap, err
	} else if ok {
		summaries, err := release.DecodeRegionSummary(t)
		if err != nil {
			return snap, err
		}
		for _, s := range summaries {
			snap.Regions = append(snap.Regions, gormModels.RegionSummary{
				Region:             string(s.Region),
				NAirlines:          s.NAirlines,
				MeanModernityIndex: s.MeanModernityIndex,
				TopAirlines:        s.TopAirlines,
			})
		}
	}

	if t, ok, err := readOptional(layout.Mapping()); err != nil {
		return snap, err
	} else if ok {
		rows, err := release.DecodeMapping(t)
		if err != nil {
			return snap, err
		}
		for _, r := range rows {
			if r.Country == "" {
				continue
			}
			snap.Mapping = append(snap.Mapping, gormModels.CountryRegionMapping{
				Country:     r.Country,
				CountryCode: r.CountryCode,
				Region:      r.Region,
			})
		}
	}

	return snap, nil
}

func readOptional(path string) (*tabular.Table, bool, error) {
	if !tabular.Exists(path) {
		logging.Info("[WarehouseSyncJob] Optional table not found, loading it empty", "path", path)
		return nil, false, nil
	}
	t, err := tabular.ReadCSV(path)
	if err != nil {
		return nil, false, err
	}
	return t, true, nil
}
