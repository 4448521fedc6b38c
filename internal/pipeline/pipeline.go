// Package pipeline runs the batch stages that turn the raw fleet dataset into
// the release tables. Every stage reads its whole input, writes its whole
// output and returns; stages share nothing but files.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fleet-analytics/modernity/internal/db/repositories"
	"fleet-analytics/modernity/internal/logging"
	"fleet-analytics/modernity/internal/metrics"
	"fleet-analytics/modernity/internal/reference"
	"fleet-analytics/modernity/internal/regions"
	"fleet-analytics/modernity/internal/release"
)

// Stage names a pipeline step as accepted on the command line.
type Stage string

const (
	StageFeatures           Stage = "features"
	StageScores             Stage = "scores"
	StageMapping            Stage = "mapping"
	StageRegions            Stage = "regions"
	StageBuckets            Stage = "buckets"
	StageClusteringFeatures Stage = "clustering-features"
	StageSync               Stage = "sync"
	StageAll                Stage = "all"
)

// Stages lists the runnable stages in execution order.
var Stages = []Stage{
	StageFeatures, StageScores, StageMapping, StageRegions,
	StageBuckets, StageClusteringFeatures, StageSync,
}

// ParseStage accepts any of Stages or "all".
func ParseStage(s string) (Stage, error) {
	if Stage(s) == StageAll {
		return StageAll, nil
	}
	for _, st := range Stages {
		if Stage(s) == st {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown stage %q", s)
}

// Syncer loads the release tables into the warehouse.
type Syncer interface {
	Run(ctx context.Context, source string) (repositories.LoadStats, error)
}

// Options configures a Pipeline.
type Options struct {
	Layout    release.Layout
	Reference *reference.Data
	Variant   regions.IndexVariant
	// Syncer is optional; without it the sync stage is skipped.
	Syncer  Syncer
	Metrics *metrics.MetricsRegistry
}

// Pipeline runs stages against one source/release directory pair.
type Pipeline struct {
	layout  release.Layout
	ref     *reference.Data
	variant regions.IndexVariant
	syncer  Syncer
	metrics *metrics.MetricsRegistry
	runID   string
}

// New creates a pipeline with a fresh run id. A nil Reference uses the
// embedded tables.
func New(opts Options) (*Pipeline, error) {
	ref := opts.Reference
	if ref == nil {
		var err error
		if ref, err = reference.Default(); err != nil {
			return nil, err
		}
	}
	variant := opts.Variant
	if variant == "" {
		variant = regions.VariantRaw
	}
	return &Pipeline{
		layout:  opts.Layout,
		ref:     ref,
		variant: variant,
		syncer:  opts.Syncer,
		metrics: opts.Metrics,
		runID:   uuid.NewString(),
	}, nil
}

// RunID identifies this pipeline run in the logs.
func (p *Pipeline) RunID() string {
	return p.runID
}

// Run executes one stage, or every stage in order for StageAll. The first
// failing stage aborts the run.
func (p *Pipeline) Run(ctx context.Context, stage Stage) error {
	if stage != StageAll {
		return p.runStage(ctx, stage)
	}
	for _, st := range Stages {
		if err := p.runStage(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) runStage(ctx context.Context, stage Stage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log := logging.WithRun(p.runID, string(stage))
	start := time.Now()
	log.Infow("Stage started")

	var err error
	switch stage {
	case StageFeatures:
		err = p.features(log)
	case StageScores:
		err = p.scores(log)
	case StageMapping:
		err = p.mapping(log)
	case StageRegions:
		err = p.regions(log)
	case StageBuckets:
		err = p.buckets(log)
	case StageClusteringFeatures:
		err = p.clusteringFeatures(log)
	case StageSync:
		err = p.sync(ctx, log)
	default:
		err = fmt.Errorf("unknown stage %q", stage)
	}

	elapsed := time.Since(start)
	if p.metrics != nil {
		p.metrics.StageDuration.WithLabelValues(string(stage)).Observe(elapsed.Seconds())
	}
	if err != nil {
		log.Errorw("Stage failed", "error", err.Error(), "duration_ms", elapsed.Milliseconds())
		return fmt.Errorf("stage %s: %w", stage, err)
	}
	log.Infow("Stage completed", "duration_ms", elapsed.Milliseconds())
	return nil
}

func (p *Pipeline) wrote(log *zap.SugaredLogger, path string, rows int) {
	if p.metrics != nil {
		p.metrics.StageRowsWritten.WithLabelValues(baseName(path)).Add(float64(rows))
	}
	log.Infow("Table written", "path", path, "rows", rows)
}
