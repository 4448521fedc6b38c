package jobs

import (
	"context"

	"fleet-analytics/modernity/internal/constants"
	"fleet-analytics/modernity/internal/db/repositories"
	"fleet-analytics/modernity/internal/logging"
	"fleet-analytics/modernity/internal/metrics"
	"fleet-analytics/modernity/internal/release"
)

// InitializeJobs builds the warehouse sync job and, when the warehouse has
// never been loaded, runs a first load from the release files.
func InitializeJobs(
	ctx context.Context,
	layout release.Layout,
	warehouse *repositories.WarehouseRepository,
	history *repositories.SyncHistoryRepo,
	invalidator Invalidator,
	metricsReg *metrics.MetricsRegistry,
) *WarehouseSyncJob {
	job := NewWarehouseSyncJob(layout, warehouse, history, invalidator, metricsReg)

	last, err := history.LastSuccess(ctx)
	if err != nil {
		logging.Warn("[WarehouseSyncJob] Could not read sync history", "error", err.Error())
		return job
	}
	if last != nil {
		logging.Info("[WarehouseSyncJob] Warehouse already loaded, skipping startup sync", "last_sync", last)
		return job
	}

	if _, err := job.Run(ctx, constants.SyncSourceStartup); err != nil {
		logging.Warn("[WarehouseSyncJob] Startup sync failed, serving empty warehouse", "error", err.Error())
		if err := warehouse.Migrate(ctx); err != nil {
			logging.Error("[WarehouseSyncJob] Failed to create warehouse schema", "error", err.Error())
		}
	}
	return job
}
