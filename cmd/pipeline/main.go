package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"fleet-analytics/modernity/internal/common"
	"fleet-analytics/modernity/internal/config"
	"fleet-analytics/modernity/internal/db"
	"fleet-analytics/modernity/internal/db/repositories"
	"fleet-analytics/modernity/internal/jobs"
	"fleet-analytics/modernity/internal/logging"
	"fleet-analytics/modernity/internal/metrics"
	"fleet-analytics/modernity/internal/pipeline"
	"fleet-analytics/modernity/internal/reference"
	"fleet-analytics/modernity/internal/regions"
	"fleet-analytics/modernity/internal/release"
	"fleet-analytics/modernity/internal/services"
	"fleet-analytics/modernity/internal/tabular"
)

func usage() {
	names := make([]string, 0, len(pipeline.Stages)+1)
	for _, s := range pipeline.Stages {
		names = append(names, string(s))
	}
	names = append(names, string(pipeline.StageAll))

	fmt.Fprintf(os.Stderr, "usage: pipeline [flags] <stage>\n\nstages: %s\n\nflags:\n", strings.Join(names, ", "))
	flag.PrintDefaults()
}

func main() {
	variantFlag := flag.String("variant", "", "index variant for the region summary: raw, public or penalized (default from REGION_INDEX_VARIANT)")
	noSync := flag.Bool("no-sync", false, "skip loading the release tables into the warehouse")
	metricsFile := flag.String("metrics-file", "", "write stage metrics to this file in Prometheus text format when the run ends")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}
	stage, err := pipeline.ParseStage(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		usage()
		os.Exit(2)
	}

	if err := run(stage, *variantFlag, *noSync, *metricsFile); err != nil {
		var fileErr *tabular.MissingFileError
		var colErr *tabular.MissingColumnError
		switch {
		case errors.As(err, &fileErr):
			fmt.Fprintf(os.Stderr, "pipeline: %s\n", fileErr.Error())
		case errors.As(err, &colErr):
			fmt.Fprintf(os.Stderr, "pipeline: %s\n", colErr.Error())
		default:
			fmt.Fprintf(os.Stderr, "pipeline: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(stage pipeline.Stage, variantFlag string, noSync bool, metricsFile string) (err error) {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	if variantFlag == "" {
		variantFlag = cfg.RegionIndexVariant
	}
	variant, err := regions.ParseVariant(variantFlag)
	if err != nil {
		return err
	}

	ref, err := reference.Load(cfg.Paths.ReferenceFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metricsReg *metrics.MetricsRegistry
	if metricsFile != "" {
		promReg := prometheus.NewRegistry()
		metricsReg = metrics.NewMetricsRegistry(promReg)
		defer func() {
			if werr := metrics.WriteTextfile(metricsFile, promReg); werr != nil {
				logging.Error("Failed to write metrics", "path", metricsFile, "error", werr.Error())
				if err == nil {
					err = werr
				}
			}
		}()
	}
	layout := release.NewLayout(cfg.Paths)

	opts := pipeline.Options{
		Layout:    layout,
		Reference: ref,
		Variant:   variant,
		Metrics:   metricsReg,
	}

	if !noSync && (stage == pipeline.StageSync || stage == pipeline.StageAll) {
		handles, err := db.Open(cfg.Database)
		if err != nil {
			return err
		}
		defer handles.Close()

		history := repositories.NewSyncHistoryRepo(handles.Write)
		if err := history.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate sync history: %w", err)
		}

		var invalidator jobs.Invalidator
		if addr := cfg.Redis.Addr(); addr != "" {
			cache, err := common.NewRedisCacheService(ctx, addr, cfg.Redis.Password)
			if err != nil {
				logging.Warn("Redis unavailable, API cache will expire on its own", "error", err.Error())
			} else {
				defer cache.Close()
				invalidator = services.NewWarehouseService(nil, cache, cfg.CacheTTL, nil)
			}
		}

		opts.Syncer = jobs.NewWarehouseSyncJob(
			layout,
			repositories.NewWarehouseRepository(handles.Write),
			history,
			invalidator,
			metricsReg,
		)
	}

	p, err := pipeline.New(opts)
	if err != nil {
		return err
	}
	logging.Info("Pipeline starting",
		"run_id", p.RunID(),
		"stage", stage,
		"source_dir", layout.SourceDir,
		"release_dir", layout.ReleaseDir,
		"variant", variant,
	)
	return p.Run(ctx, stage)
}
