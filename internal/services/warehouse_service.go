package services

import (
	"context"
	"fmt"
	"time"

	"fleet-analytics/modernity/internal/common"
	"fleet-analytics/modernity/internal/constants"
	"fleet-analytics/modernity/internal/metrics"
	"fleet-analytics/modernity/internal/models/entities"
)

// WarehouseStore is the read side of the warehouse.
type WarehouseStore interface {
	ListTop(ctx context.Context, limit int) ([]entities.AirlineView, error)
	ListByCluster(ctx context.Context, cluster int) ([]entities.AirlineView, error)
	ListRegionSummary(ctx context.Context) ([]entities.RegionView, error)
}

// WarehouseService serves warehouse reads through the response cache.
type WarehouseService struct {
	store   WarehouseStore
	cache   common.CacheInterface
	ttl     time.Duration
	metrics *metrics.MetricsRegistry
}

// NewWarehouseService caches results for ttl; a zero ttl disables caching.
// metricsReg may be nil.
func NewWarehouseService(store WarehouseStore, cache common.CacheInterface, ttl time.Duration, metricsReg *metrics.MetricsRegistry) *WarehouseService {
	return &WarehouseService{store: store, cache: cache, ttl: ttl, metrics: metricsReg}
}

func (s *WarehouseService) TopAirlines(ctx context.Context, limit int) ([]entities.AirlineView, error) {
	key := fmt.Sprintf("%s%d", constants.CachePrefixAirlines, limit)
	return cached(ctx, s, key, string(constants.CachePrefixAirlines), func() ([]entities.AirlineView, error) {
		return s.store.ListTop(ctx, limit)
	})
}

func (s *WarehouseService) ClusterAirlines(ctx context.Context, cluster int) ([]entities.AirlineView, error) {
	key := fmt.Sprintf("%s%d", constants.CachePrefixCluster, cluster)
	return cached(ctx, s, key, string(constants.CachePrefixCluster), func() ([]entities.AirlineView, error) {
		return s.store.ListByCluster(ctx, cluster)
	})
}

func (s *WarehouseService) RegionSummary(ctx context.Context) ([]entities.RegionView, error) {
	key := string(constants.CachePrefixRegions)
	return cached(ctx, s, key, key, func() ([]entities.RegionView, error) {
		return s.store.ListRegionSummary(ctx)
	})
}

// Invalidate drops every cached response, after a warehouse load.
func (s *WarehouseService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Flush(ctx)
}

func cached[T any](ctx context.Context, s *WarehouseService, key, pattern string, load func() (T, error)) (T, error) {
	if s.cache == nil || s.ttl <= 0 {
		return load()
	}
	val, hit, err := common.GetOrLoad(ctx, s.cache, key, s.ttl, load)
	if err == nil && s.metrics != nil {
		if hit {
			s.metrics.CacheHitsTotal.WithLabelValues(pattern).Inc()
		} else {
			s.metrics.CacheMissesTotal.WithLabelValues(pattern).Inc()
		}
	}
	return val, err
}
