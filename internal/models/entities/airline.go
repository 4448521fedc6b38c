package entities

// AirlineView is one row of v_airline_full.
type AirlineView struct {
	Airline             string   `db:"airline" json:"airline"`
	FleetSize           *float64 `db:"fleet_size" json:"fleet_size"`
	ModernityIndexScore *float64 `db:"modernity_index_score" json:"modernity_index_score"`
	NewGenShareFeatures *float64 `db:"new_gen_share_features" json:"new_gen_share_features"`
	PctNewgenNarrow     *float64 `db:"pct_newgen_narrow" json:"pct_newgen_narrow"`
	PctNewgenWide       *float64 `db:"pct_newgen_wide" json:"pct_newgen_wide"`
	Cluster             *int64   `db:"cluster" json:"cluster"`
}

// RegionView is one row of v_region_modernity.
type RegionView struct {
	Region             string   `db:"region" json:"region"`
	NAirlines          int64    `db:"n_airlines" json:"n_airlines"`
	MeanModernityIndex *float64 `db:"mean_modernity_index" json:"mean_modernity_index"`
	TopAirlines        string   `db:"top_airlines" json:"top_airlines"`
}
