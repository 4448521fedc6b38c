package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"fleet-analytics/modernity/internal/constants"
	"fleet-analytics/modernity/internal/logging"
	"fleet-analytics/modernity/internal/middleware"
	"fleet-analytics/modernity/internal/models/dtos/responses"
	"fleet-analytics/modernity/internal/models/entities"
)

// WarehouseReader is what the handlers need from the service layer.
type WarehouseReader interface {
	TopAirlines(ctx context.Context, limit int) ([]entities.AirlineView, error)
	ClusterAirlines(ctx context.Context, cluster int) ([]entities.AirlineView, error)
	RegionSummary(ctx context.Context) ([]entities.RegionView, error)
}

type Handlers struct {
	warehouse WarehouseReader
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(warehouse WarehouseReader) *Handlers {
	return &Handlers{warehouse: warehouse}
}

// ListAirlinesHandler handles GET /airlines?limit=N&region=X.
// A non-numeric limit falls back to the default; region is echoed only.
func (h *Handlers) ListAirlinesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := constants.DefaultAirlinesLimit
		if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil {
				if n < 1 {
					respondWithError(w, http.StatusBadRequest, constants.MsgInvalidLimit)
					return
				}
				limit = min(n, constants.MaxAirlinesLimit)
			}
		}

		var region *string
		if r.URL.Query().Has("region") {
			v := r.URL.Query().Get("region")
			region = &v
		}

		rows, err := h.warehouse.TopAirlines(r.Context(), limit)
		if err != nil {
			databaseError(w, r, "/airlines", err)
			return
		}

		respondWithSuccess(w, http.StatusOK, &responses.AirlinesResponse{
			RegionParam: region,
			Count:       len(rows),
			Airlines:    rows,
		})
	}
}

// ClusterAirlinesHandler handles GET /clusters/{cluster_id}.
func (h *Handlers) ClusterAirlinesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cluster, err := strconv.Atoi(chi.URLParam(r, "cluster_id"))
		if err != nil {
			respondWithError(w, http.StatusBadRequest, constants.MsgInvalidClusterID)
			return
		}

		rows, err := h.warehouse.ClusterAirlines(r.Context(), cluster)
		if err != nil {
			databaseError(w, r, "/clusters", err)
			return
		}

		respondWithSuccess(w, http.StatusOK, &responses.ClusterResponse{
			Cluster:  cluster,
			Count:    len(rows),
			Airlines: rows,
		})
	}
}

// RegionSummaryHandler handles GET /regions/summary.
func (h *Handlers) RegionSummaryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := h.warehouse.RegionSummary(r.Context())
		if err != nil {
			databaseError(w, r, "/regions/summary", err)
			return
		}

		respondWithSuccess(w, http.StatusOK, &responses.RegionsResponse{
			Count:   len(rows),
			Regions: rows,
		})
	}
}

// databaseError logs the cause and answers with the generic 500.
func databaseError(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	logging.WithRequest(middleware.GetRequestID(r.Context()), endpoint).
		Errorw("Warehouse query failed", "error", err.Error())
	respondWithError(w, http.StatusInternalServerError, constants.MsgDatabaseError)
}
