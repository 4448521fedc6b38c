package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-analytics/modernity/internal/models/dtos/responses"
	"fleet-analytics/modernity/internal/models/entities"
)

// Mock WarehouseReader
type mockWarehouse struct {
	err       error
	lastLimit int
	airlines  []entities.AirlineView
	regions   []entities.RegionView
}

func (m *mockWarehouse) TopAirlines(ctx context.Context, limit int) ([]entities.AirlineView, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	if limit < len(m.airlines) {
		return m.airlines[:limit], nil
	}
	return m.airlines, nil
}

func (m *mockWarehouse) ClusterAirlines(ctx context.Context, cluster int) ([]entities.AirlineView, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []entities.AirlineView
	for _, a := range m.airlines {
		if a.Cluster != nil && int(*a.Cluster) == cluster {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockWarehouse) RegionSummary(ctx context.Context) ([]entities.RegionView, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.regions, nil
}

type mockPinger struct{ err error }

func (m mockPinger) Ping(ctx context.Context) error { return m.err }

func newTestRouter(w WarehouseReader) http.Handler {
	h := NewHandlers(w)
	r := chi.NewRouter()
	r.Get("/airlines", h.ListAirlinesHandler())
	r.Get("/clusters/{cluster_id}", h.ClusterAirlinesHandler())
	r.Get("/regions/summary", h.RegionSummaryHandler())
	return r
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func cluster(v int64) *int64 { return &v }

func sampleWarehouse() *mockWarehouse {
	return &mockWarehouse{
		airlines: []entities.AirlineView{
			{Airline: "A", Cluster: cluster(1)},
			{Airline: "B", Cluster: cluster(0)},
			{Airline: "C"},
		},
		regions: []entities.RegionView{{Region: "Europe", NAirlines: 2, TopAirlines: "A (0.500)"}},
	}
}

func TestListAirlinesHandler(t *testing.T) {
	w := sampleWarehouse()
	router := newTestRouter(w)

	rr := get(t, router, "/airlines?limit=2&region=EU")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp responses.APIResponse[responses.AirlinesResponse]
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "success", resp.Status)
	require.NotNil(t, resp.Data)
	assert.Equal(t, 2, resp.Data.Count)
	require.NotNil(t, resp.Data.RegionParam)
	assert.Equal(t, "EU", *resp.Data.RegionParam)
	assert.Equal(t, 2, w.lastLimit)
}

func TestListAirlinesHandler_Defaults(t *testing.T) {
	w := sampleWarehouse()
	router := newTestRouter(w)

	rr := get(t, router, "/airlines")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 50, w.lastLimit)

	var resp responses.APIResponse[responses.AirlinesResponse]
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Nil(t, resp.Data.RegionParam)
	assert.Equal(t, 3, resp.Data.Count)

	get(t, router, "/airlines?limit=abc")
	assert.Equal(t, 50, w.lastLimit, "a non-numeric limit falls back to the default")

	get(t, router, "/airlines?limit=999999")
	assert.Equal(t, 1000, w.lastLimit)

	rr = get(t, router, "/airlines?limit=0")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestClusterAirlinesHandler(t *testing.T) {
	router := newTestRouter(sampleWarehouse())

	rr := get(t, router, "/clusters/1")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp responses.APIResponse[responses.ClusterResponse]
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Data.Cluster)
	assert.Equal(t, 1, resp.Data.Count)
	assert.Equal(t, "A", resp.Data.Airlines[0].Airline)

	rr = get(t, router, "/clusters/7")
	require.Equal(t, http.StatusOK, rr.Code)
	resp = responses.APIResponse[responses.ClusterResponse]{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, 0, resp.Data.Count)
}

func TestClusterAirlinesHandler_NonIntegerID(t *testing.T) {
	rr := get(t, newTestRouter(sampleWarehouse()), "/clusters/abc")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegionSummaryHandler(t *testing.T) {
	rr := get(t, newTestRouter(sampleWarehouse()), "/regions/summary")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp responses.APIResponse[responses.RegionsResponse]
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Data.Count)
	assert.Equal(t, "Europe", resp.Data.Regions[0].Region)
}

func TestHandlers_DatabaseError(t *testing.T) {
	router := newTestRouter(&mockWarehouse{err: errors.New("connection refused")})

	for _, target := range []string{"/airlines", "/clusters/1", "/regions/summary"} {
		rr := get(t, router, target)
		assert.Equal(t, http.StatusInternalServerError, rr.Code, target)

		var resp responses.APIResponse[any]
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, "error", resp.Status)
		assert.Equal(t, "database error", resp.Error, "the cause is never leaked")
	}
}

func TestHealthCheckHandler(t *testing.T) {
	upSince := time.Now().Add(-time.Minute)

	rr := get(t, HealthCheckHandler(mockPinger{}, nil, upSince), "/health")
	require.Equal(t, http.StatusOK, rr.Code)
	var resp entities.HealthCheckResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "airlines API is alive", resp.Message)

	rr = get(t, HealthCheckHandler(mockPinger{err: errors.New("down")}, nil, upSince), "/health")
	require.Equal(t, http.StatusOK, rr.Code)
	resp = entities.HealthCheckResponse{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "down", resp.Services["warehouse"].Status)
}
