package repositories

import (
	"context"
	"time"

	"fleet-analytics/modernity/internal/constants"
	"fleet-analytics/modernity/internal/metrics"
	"fleet-analytics/modernity/internal/models/entities"

	"github.com/jmoiron/sqlx"
)

// AirlineRepository reads the warehouse views.
type AirlineRepository struct {
	db      *sqlx.DB
	metrics *metrics.MetricsRegistry
}

// NewAirlineRepository wraps db; metricsReg may be nil.
func NewAirlineRepository(db *sqlx.DB, metricsReg *metrics.MetricsRegistry) *AirlineRepository {
	return &AirlineRepository{db: db, metrics: metricsReg}
}

// ListTop returns at most limit airlines by modernity index descending.
func (r *AirlineRepository) ListTop(ctx context.Context, limit int) ([]entities.AirlineView, error) {
	rows := []entities.AirlineView{}
	err := r.observe("list_top_airlines", func() error {
		return r.db.SelectContext(ctx, &rows, r.db.Rebind(constants.ListTopAirlines), limit)
	})
	return rows, err
}

// ListByCluster returns the airlines assigned to cluster.
func (r *AirlineRepository) ListByCluster(ctx context.Context, cluster int) ([]entities.AirlineView, error) {
	rows := []entities.AirlineView{}
	err := r.observe("list_cluster_airlines", func() error {
		return r.db.SelectContext(ctx, &rows, r.db.Rebind(constants.ListAirlinesByCluster), cluster)
	})
	return rows, err
}

// ListRegionSummary returns the per-region summary ordered by mean index.
func (r *AirlineRepository) ListRegionSummary(ctx context.Context) ([]entities.RegionView, error) {
	rows := []entities.RegionView{}
	err := r.observe("list_region_summary", func() error {
		return r.db.SelectContext(ctx, &rows, constants.ListRegionSummary)
	})
	return rows, err
}

// Ping checks the connection.
func (r *AirlineRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *AirlineRepository) observe(query string, fn func() error) error {
	start := time.Now()
	err := fn()
	if r.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		r.metrics.DBQueriesTotal.WithLabelValues(query, outcome).Inc()
		r.metrics.DBQueryDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
	}
	return err
}
