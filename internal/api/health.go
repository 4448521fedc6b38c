package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"fleet-analytics/modernity/internal/constants"
	"fleet-analytics/modernity/internal/logging"
	"fleet-analytics/modernity/internal/models/entities"
)

// Pinger checks that the warehouse is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SyncHistory reports the last successful warehouse load.
type SyncHistory interface {
	LastSuccess(ctx context.Context) (*time.Time, error)
}

// HealthCheckHandler handles GET /health. It always answers 200 while the
// process is up; the warehouse state is reported in the body.
func HealthCheckHandler(db Pinger, history SyncHistory, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		services := make(map[string]entities.ServiceStatus)

		dbStatus := "ok"
		dbDetails := "Warehouse connected"
		if err := db.Ping(ctx); err != nil {
			dbStatus = "down"
			dbDetails = err.Error()
		}
		services["warehouse"] = entities.ServiceStatus{
			Status:  dbStatus,
			Details: dbDetails,
		}

		resp := entities.HealthCheckResponse{
			Status:   "ok",
			Message:  constants.MsgServiceAlive,
			Services: services,
			UpSince:  upSince,
			Uptime:   time.Since(upSince).Round(time.Second).String(),
		}
		if dbStatus != "ok" {
			resp.Status = "degraded"
			resp.Message = constants.MsgServiceDegraded
		} else if history != nil {
			last, err := history.LastSuccess(ctx)
			if err != nil {
				logging.Warn("Failed to read sync history", "error", err.Error())
			}
			resp.LastSync = last
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
