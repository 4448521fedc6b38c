package gorm

// AirlineFeature is one row of the features table.
type AirlineFeature struct {
	Airline   string  `gorm:"column:airline;primaryKey;type:varchar(255)"`
	FleetSize int     `gorm:"column:fleet_size;not null"`
	NModels   int     `gorm:"column:n_models;not null"`
	Diversity float64 `gorm:"column:diversity;not null"`

	NA220    int `gorm:"column:n_a220"`
	N787     int `gorm:"column:n_787"`
	NA350    int `gorm:"column:n_a350"`
	NA330neo int `gorm:"column:n_a330neo"`
	NNeo     int `gorm:"column:n_neo"`
	NMax     int `gorm:"column:n_max"`

	PctA220    float64 `gorm:"column:pct_a220"`
	Pct787     float64 `gorm:"column:pct_787"`
	PctA350    float64 `gorm:"column:pct_a350"`
	PctA330neo float64 `gorm:"column:pct_a330neo"`
	PctNeo     float64 `gorm:"column:pct_neo"`
	PctMax     float64 `gorm:"column:pct_max"`

	PctNewgenNarrow float64 `gorm:"column:pct_newgen_narrow"`
	PctNewgenWide   float64 `gorm:"column:pct_newgen_wide"`
	NewGenShare     float64 `gorm:"column:new_gen_share"`
}

func (AirlineFeature) TableName() string {
	return "airline_features"
}

// AirlineScore is one row of the scores table.
type AirlineScore struct {
	Airline                 string   `gorm:"column:airline;primaryKey;type:varchar(255)"`
	FleetSize               float64  `gorm:"column:fleet_size"`
	Diversity               float64  `gorm:"column:diversity"`
	ModernityIndex          float64  `gorm:"column:modernity_index"`
	ModernityIndexPublic    *float64 `gorm:"column:modernity_index_public"`
	ModernityIndexPenalized float64  `gorm:"column:modernity_index_penalized"`
	VersionV1               string   `gorm:"column:version_v1;type:varchar(16)"`
	QANotes                 string   `gorm:"column:qa_notes;type:varchar(255);not null;default:''"`
}

func (AirlineScore) TableName() string {
	return "airline_scores"
}

// AirlineCluster assigns an airline to a k-means cluster.
type AirlineCluster struct {
	Airline string `gorm:"column:airline;primaryKey;type:varchar(255)"`
	Cluster int    `gorm:"column:cluster;not null;index"`
}

func (AirlineCluster) TableName() string {
	return "airline_clusters"
}

// RegionSummary is one row of the per-region summary.
type RegionSummary struct {
	Region             string  `gorm:"column:region;primaryKey;type:varchar(64)"`
	NAirlines          int     `gorm:"column:n_airlines"`
	MeanModernityIndex float64 `gorm:"column:mean_modernity_index"`
	TopAirlines        string  `gorm:"column:top_airlines;type:text"`
}

func (RegionSummary) TableName() string {
	return "region_summary"
}

// CountryRegionMapping is one row of the curated mapping table.
type CountryRegionMapping struct {
	Country     string `gorm:"column:country;primaryKey;type:varchar(255)"`
	CountryCode string `gorm:"column:country_code;type:varchar(8)"`
	Region      string `gorm:"column:region;type:varchar(64)"`
}

func (CountryRegionMapping) TableName() string {
	return "country_region_mapping"
}
