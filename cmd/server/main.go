package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"fleet-analytics/modernity/internal/api"
	"fleet-analytics/modernity/internal/common"
	"fleet-analytics/modernity/internal/config"
	"fleet-analytics/modernity/internal/db"
	"fleet-analytics/modernity/internal/jobs"
	"fleet-analytics/modernity/internal/logging"
	"fleet-analytics/modernity/internal/metrics"
	"fleet-analytics/modernity/internal/release"
	"fleet-analytics/modernity/internal/routes"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logging
	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Modernity API starting up",
		"environment", cfg.AppEnv,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handles, err := db.Open(cfg.Database)
	if err != nil {
		logging.Fatal("Failed to open warehouse", "error", err.Error())
	}
	defer handles.Close()

	// Response cache: Redis when configured, in-process otherwise
	var cache common.CacheInterface
	if addr := cfg.Redis.Addr(); addr != "" {
		redisCache, err := common.NewRedisCacheService(ctx, addr, cfg.Redis.Password)
		if err != nil {
			logging.Warn("Redis unavailable, falling back to in-memory cache", "addr", addr, "error", err.Error())
		} else {
			cache = redisCache
			logging.Info("Using Redis response cache", "addr", addr)
		}
	}
	if cache == nil {
		cache = common.NewCacheService(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	defer cache.Close()

	metricsReg := metrics.NewMetricsRegistry(nil)
	deps := api.InitDependencies(handles, cache, cfg.CacheTTL, metricsReg)

	if err := deps.Repo.SyncHistory.Migrate(ctx); err != nil {
		logging.Fatal("Failed to migrate sync history", "error", err.Error())
	}

	syncJob := jobs.InitializeJobs(
		ctx,
		release.NewLayout(cfg.Paths),
		deps.Repo.Warehouse,
		deps.Repo.SyncHistory,
		deps.Services.Warehouse,
		metricsReg,
	)

	upSince := time.Now()
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.RegisterRoutes(deps, upSince),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logging.Info("Server starting", "port", cfg.Port, "environment", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logging.Info("Server shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.SyncCron != "" {
		g.Go(func() error {
			return syncJob.RunScheduled(gctx, cfg.SyncCron)
		})
	}

	if err := g.Wait(); err != nil {
		logging.Error("Server stopped with error", "error", err.Error())
		os.Exit(1)
	}
}
