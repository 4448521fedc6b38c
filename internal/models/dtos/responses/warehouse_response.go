package responses

import "fleet-analytics/modernity/internal/models/entities"

// AirlinesResponse is the body of GET /airlines. RegionParam echoes the
// requested region; the list is not filtered by it.
type AirlinesResponse struct {
	RegionParam *string                `json:"region_param"`
	Count       int                    `json:"count"`
	Airlines    []entities.AirlineView `json:"airlines"`
}

// ClusterResponse is the body of GET /clusters/{cluster_id}.
type ClusterResponse struct {
	Cluster  int                    `json:"cluster"`
	Count    int                    `json:"count"`
	Airlines []entities.AirlineView `json:"airlines"`
}

// RegionsResponse is the body of GET /regions/summary.
type RegionsResponse struct {
	Count   int                   `json:"count"`
	Regions []entities.RegionView `json:"regions"`
}
