package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"fleet-analytics/modernity/internal/buckets"
	"fleet-analytics/modernity/internal/constants"
	"fleet-analytics/modernity/internal/fleet"
	"fleet-analytics/modernity/internal/geo"
	"fleet-analytics/modernity/internal/regions"
	"fleet-analytics/modernity/internal/release"
	"fleet-analytics/modernity/internal/scoring"
	"fleet-analytics/modernity/internal/tabular"
)

// ErrNoResolvedAirlines is returned by the regions stage when no airline
// could be placed in a region.
var ErrNoResolvedAirlines = errors.New("no airline could be assigned a region")

func baseName(path string) string {
	return filepath.Base(path)
}

func (p *Pipeline) readRaw(withCountry bool) ([]fleet.AircraftRecord, error) {
	t, err := tabular.Read(p.layout.RawFile, p.layout.RawSheet)
	if err != nil {
		return nil, err
	}
	return release.DecodeAircraft(t, withCountry)
}

func (p *Pipeline) features(log *zap.SugaredLogger) error {
	records, err := p.readRaw(false)
	if err != nil {
		return err
	}
	log.Infow("Raw dataset loaded", "path", p.layout.RawFile, "rows", len(records))

	features := fleet.Aggregate(records)
	path := p.layout.Release(release.FeaturesFile)
	if err := tabular.WriteCSV(path, release.FeaturesColumns, release.EncodeFeatures(features), tabular.WriteOptions{}); err != nil {
		return err
	}
	p.wrote(log, path, len(features))

	freqs := fleet.ModelFrequencies(records)
	path = p.layout.Release(release.ModelsFrequencyFile)
	if err := tabular.WriteCSV(path, release.ModelsFrequencyColumns, release.EncodeModelFrequencies(freqs), tabular.WriteOptions{}); err != nil {
		return err
	}
	p.wrote(log, path, len(freqs))
	return nil
}

func (p *Pipeline) scores(log *zap.SugaredLogger) error {
	t, err := tabular.ReadCSV(p.layout.Release(release.FeaturesFile))
	if err != nil {
		return err
	}
	inputs, err := release.DecodeScorerInputs(t)
	if err != nil {
		return err
	}

	var fallback scoring.FleetSizeLookup
	if aggPath := p.layout.Release(release.FleetAggregateFile); tabular.Exists(aggPath) {
		agg, err := tabular.Read(aggPath, "")
		if err != nil {
			return err
		}
		sizes, err := release.DecodeFleetSizes(agg)
		if err != nil {
			return err
		}
		fallback = sizes
		log.Infow("Fleet-size fallback loaded", "path", aggPath, "airlines", len(sizes))
	}

	scores := scoring.NewScorer(fallback).ScoreAll(inputs)

	var small, missing int
	for _, s := range scores {
		for _, note := range strings.Split(s.QANotes, ";") {
			switch note {
			case scoring.QAFleetTooSmall:
				small++
			case scoring.QAMissingComponent:
				missing++
			}
		}
	}
	log.Infow("Airlines scored", "airlines", len(scores), "fleet_too_small", small, "missing_component", missing)

	path := p.layout.Release(release.ScoresFile)
	if err := tabular.WriteCSV(path, release.ScoresColumns, release.EncodeScores(scores), tabular.WriteOptions{}); err != nil {
		return err
	}
	p.wrote(log, path, len(scores))
	return nil
}

func (p *Pipeline) mapping(log *zap.SugaredLogger) error {
	records, err := p.readRaw(true)
	if err != nil {
		return err
	}
	observed := make([]string, len(records))
	for i, r := range records {
		observed[i] = r.Country
	}

	path := p.layout.Mapping()
	var existing []geo.MappingRow
	if tabular.Exists(path) {
		t, err := tabular.ReadCSV(path)
		if err != nil {
			return err
		}
		if existing, err = release.DecodeMapping(t); err != nil {
			return err
		}
	} else {
		log.Infow("No mapping table yet, seeding it", "path", path)
	}

	merged, stats := geo.MergeMapping(existing, observed, p.ref)
	log.Infow("Mapping merged",
		"existing", len(existing),
		"added", stats.Added,
		"filled_regions", stats.FilledRegions,
		"filled_codes", stats.FilledCodes,
	)

	var blank int
	for _, r := range merged {
		if r.Region == "" {
			blank++
		}
	}
	if blank > 0 {
		log.Warnw("Countries still without a region, edit the mapping table", "count", blank, "path", path)
	}

	if err := tabular.WriteCSV(path, release.MappingColumns, release.EncodeMapping(merged), tabular.WriteOptions{BOM: true}); err != nil {
		return err
	}
	p.wrote(log, path, len(merged))
	return nil
}

func (p *Pipeline) regions(log *zap.SugaredLogger) error {
	records, err := p.readRaw(true)
	if err != nil {
		return err
	}

	mapTable, err := tabular.ReadCSV(p.layout.Mapping())
	if err != nil {
		return err
	}
	mapping, err := release.DecodeMapping(mapTable)
	if err != nil {
		return err
	}

	scoreTable, err := tabular.ReadCSV(p.layout.Release(release.ScoresFile))
	if err != nil {
		return err
	}
	var extra []string
	if p.variant != regions.VariantRaw {
		extra = append(extra, p.variant.Column())
	}
	scores, err := release.DecodeScores(scoreTable, extra...)
	if err != nil {
		return err
	}

	table := geo.NewRegionTable(mapping, p.ref.ExtraRegions, p.ref.StopwordSet())
	for _, row := range table.Invalid() {
		log.Warnw("Mapping row has an unknown region", "country", row.Country, "region", row.Region)
	}

	airlines := make([]string, len(scores))
	for i, s := range scores {
		airlines[i] = s.Airline
	}
	resolutions := geo.NewDefaultChain(records, p.ref, table).ResolveAll(airlines)
	assignments := geo.AssignRegions(resolutions, table)

	stageCounts := geo.StageCounts(resolutions)
	log.Infow("Countries resolved",
		"mode_join", stageCounts[geo.StageModeJoin],
		"manual_override", stageCounts[geo.StageManualOverride],
		"name_heuristic", stageCounts[geo.StageNameHeuristic],
		"unresolved", stageCounts[""],
	)

	rows := make([]regions.Row, 0, len(scores))
	for i, s := range scores {
		if !assignments[i].HasRegion {
			continue
		}
		rows = append(rows, regions.Row{
			Airline: s.Airline,
			Region:  assignments[i].Region,
			Index:   p.variant.Pick(s),
		})
	}

	missing := release.EncodeMissingRegions(assignments)
	missingPath := p.layout.Release(release.MissingRegionFile)
	if err := tabular.WriteCSV(missingPath, release.MissingRegionColumns, missing, tabular.WriteOptions{}); err != nil {
		return err
	}
	p.wrote(log, missingPath, len(missing))
	if p.metrics != nil {
		p.metrics.UnresolvedTotal.Set(float64(len(scores) - len(rows)))
	}
	log.Infow("Airlines ignored for missing region", "count", len(scores)-len(rows), "path", missingPath)

	if len(rows) == 0 {
		return ErrNoResolvedAirlines
	}

	summaries := regions.Summarize(rows)
	path := p.layout.Release(release.RegionSummaryFile)
	if err := tabular.WriteCSV(path, release.RegionSummaryColumns, release.EncodeRegionSummary(summaries), tabular.WriteOptions{}); err != nil {
		return err
	}
	p.wrote(log, path, len(summaries))
	return nil
}

func (p *Pipeline) buckets(log *zap.SugaredLogger) error {
	t, err := tabular.ReadCSV(p.layout.Release(release.FeaturesFile))
	if err != nil {
		return err
	}
	if err := t.Require("fleet_size"); err != nil {
		return err
	}

	sizes := make([]*float64, t.Len())
	for i := range sizes {
		sizes[i] = t.Float(i, "fleet_size")
	}
	labels, counts, thresholds, err := buckets.Assign(sizes)
	if err != nil {
		return err
	}
	log.Infow("Fleet-size tertiles",
		"q1", thresholds.Q1,
		"q2", thresholds.Q2,
		"small", counts[buckets.Small],
		"medium", counts[buckets.Medium],
		"large", counts[buckets.Large],
	)

	values := make([]string, len(labels))
	for i, b := range labels {
		values[i] = string(b)
	}
	header, rows := release.WithColumn(t, "fleet_bucket", values)

	path := p.layout.Release(release.FleetBucketsFile)
	if err := tabular.WriteCSV(path, header, rows, tabular.WriteOptions{}); err != nil {
		return err
	}
	p.wrote(log, path, len(rows))
	return nil
}

func (p *Pipeline) clusteringFeatures(log *zap.SugaredLogger) error {
	features, err := tabular.ReadCSV(p.layout.Release(release.FeaturesFile))
	if err != nil {
		return err
	}
	scores, err := tabular.ReadCSV(p.layout.Release(release.ScoresFile))
	if err != nil {
		return err
	}
	rows, err := release.JoinClusteringFeatures(features, scores)
	if err != nil {
		return err
	}

	path := p.layout.Release(release.ClusteringFeaturesFile)
	if err := tabular.WriteCSV(path, release.ClusteringColumns, rows, tabular.WriteOptions{}); err != nil {
		return err
	}
	p.wrote(log, path, len(rows))
	return nil
}

func (p *Pipeline) sync(ctx context.Context, log *zap.SugaredLogger) error {
	if p.syncer == nil {
		log.Infow("No warehouse configured, skipping sync")
		return nil
	}
	stats, err := p.syncer.Run(ctx, constants.SyncSourcePipeline)
	if err != nil {
		return err
	}
	for table, n := range stats {
		log.Infow("Warehouse table loaded", "table", table, "rows", n)
	}
	return nil
}
