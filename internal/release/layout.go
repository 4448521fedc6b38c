// Package release maps the tables exchanged between pipeline stages to and
// from their on-disk column layouts.
package release

import (
	"path/filepath"

	"fleet-analytics/modernity/internal/config"
)

// File names inside the source and release directories.
const (
	FeaturesFile           = "features_by_airline.csv"
	ModelsFrequencyFile    = "models_frequency.csv"
	ScoresFile             = "airline_scores.csv"
	MappingFile            = "country_region_mapping.csv"
	RegionSummaryFile      = "region_summary.csv"
	MissingRegionFile      = "air14_missing_region.csv"
	FleetBucketsFile       = "features_knn.csv"
	ClusteringFeaturesFile = "air15_features_for_clustering.csv"
	ClustersFile           = "air15_clusters_by_airline.csv"
	FleetAggregateFile     = "AIR3_dataset_v1.xlsx"
)

// Layout resolves file names against the configured directories.
type Layout struct {
	SourceDir  string
	ReleaseDir string
	RawFile    string
	RawSheet   string
}

// NewLayout builds a layout from the configured paths.
func NewLayout(p config.Paths) Layout {
	return Layout{
		SourceDir:  p.SourceDir,
		ReleaseDir: p.ReleaseDir,
		RawFile:    p.RawFile,
		RawSheet:   p.RawSheet,
	}
}

// Release is the path of name in the release directory.
func (l Layout) Release(name string) string {
	return filepath.Join(l.ReleaseDir, name)
}

// Source is the path of name in the source directory.
func (l Layout) Source(name string) string {
	return filepath.Join(l.SourceDir, name)
}

// Mapping is the curated country/region table, kept with the sources.
func (l Layout) Mapping() string {
	return l.Source(MappingFile)
}
