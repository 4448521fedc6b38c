package api

import (
	"time"

	"fleet-analytics/modernity/internal/common"
	"fleet-analytics/modernity/internal/db"
	"fleet-analytics/modernity/internal/db/repositories"
	"fleet-analytics/modernity/internal/metrics"
	"fleet-analytics/modernity/internal/services"
)

type Repositories struct {
	Airlines    *repositories.AirlineRepository
	Warehouse   *repositories.WarehouseRepository
	SyncHistory *repositories.SyncHistoryRepo
}

type Services struct {
	Cache     common.CacheInterface
	Warehouse *services.WarehouseService
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
	Metrics  *metrics.MetricsRegistry
}

// InitDependencies wires repositories and services over the open database.
func InitDependencies(handles *db.Handles, cache common.CacheInterface, cacheTTL time.Duration, metricsReg *metrics.MetricsRegistry) *Dependencies {
	repos := &Repositories{
		Airlines:    repositories.NewAirlineRepository(handles.Read, metricsReg),
		Warehouse:   repositories.NewWarehouseRepository(handles.Write),
		SyncHistory: repositories.NewSyncHistoryRepo(handles.Write),
	}

	svcs := &Services{
		Cache:     cache,
		Warehouse: services.NewWarehouseService(repos.Airlines, cache, cacheTTL, metricsReg),
	}

	return &Dependencies{
		Repo:     repos,
		Services: svcs,
		Metrics:  metricsReg,
	}
}
