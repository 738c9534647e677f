// Package main runs the auction flipper daemon: continuous catalog
// ingestion, valuation of new listings, flip persistence and lifecycle
// reconciliation.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auctionflipper/internal/config"
	"auctionflipper/internal/hypixel"
	"auctionflipper/internal/observability"
	"auctionflipper/internal/pipeline"
	"auctionflipper/internal/prices"
	"auctionflipper/internal/storage"
	chstore "auctionflipper/internal/storage/clickhouse"
	"auctionflipper/internal/storage/memory"
	"auctionflipper/internal/storage/migrations"
	pgstore "auctionflipper/internal/storage/postgres"
	"auctionflipper/internal/valuation"
)

func main() {
	configPath := flag.String("config", ".", "Directory containing config.yaml")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	flag.Parse()

	logger := log.New(os.Stdout, "[flipper] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		if *useMemory {
			// In-memory mode has no required stores; fall back to defaults.
			cfg = memoryModeConfig()
		} else {
			logger.Fatalf("Failed to load config: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	auctions, flips, reports, cleanup, err := createStores(ctx, cfg, *useMemory, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	fetcher := hypixel.NewClient(cfg.Hypixel.BaseURL,
		hypixel.WithAPIKey(cfg.Hypixel.APIKey),
		hypixel.WithLogger(logger),
	)

	evaluator := valuation.NewClient(cfg.Valuation.URL,
		valuation.WithTimeout(time.Duration(cfg.Valuation.TimeoutSeconds)*time.Second),
		valuation.WithCacheTTL(time.Duration(cfg.Valuation.CacheTTLSeconds)*time.Second),
		valuation.WithCacheMaxEntries(cfg.Valuation.CacheMaxEntries),
		valuation.WithLogger(logger),
	)

	snapshot := prices.NewSnapshot(prices.Options{
		CacheDir: cfg.Prices.CacheDir,
		Logger:   logger,
	})
	if err := snapshot.LoadCached(); err != nil {
		logger.Printf("Price cache load failed, starting empty: %v", err)
	}

	metrics := observability.NewMetrics("auctionflipper")

	cycle := pipeline.NewIngestionCycle(pipeline.CycleOptions{
		Fetcher:            fetcher,
		Auctions:           auctions,
		Flips:              flips,
		Evaluator:          evaluator,
		PriceSource:        snapshot,
		MaxConcurrentPages: cfg.Pipeline.MaxConcurrentPages,
		Logger:             logger,
	})

	scheduler := pipeline.NewScheduler(pipeline.SchedulerOptions{
		Cycle:              cycle,
		Reconciler:         pipeline.NewReconciler(fetcher, auctions, logger),
		Snapshot:           snapshot,
		Reports:            reports,
		Metrics:            metrics,
		Auctions:           auctions,
		CycleDelay:         time.Duration(cfg.Pipeline.CycleDelaySeconds) * time.Second,
		RefreshEveryCycles: cfg.Prices.RefreshEveryCycles,
		Logger:             logger,
	})

	if cfg.Metrics.Addr != "" {
		go serveMetrics(cfg.Metrics.Addr, logger)
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		}
	}()

	err = scheduler.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Scheduler error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores wires the storage backends. The returned cleanup closes
// every opened connection.
func createStores(ctx context.Context, cfg config.Config, useMemory bool, logger *log.Logger) (storage.AuctionStore, storage.FlipStore, storage.CycleReportStore, func(), error) {
	if useMemory {
		logger.Println("Using in-memory storage")
		return memory.NewAuctionStore(), memory.NewFlipStore(), memory.NewCycleReportStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.PoolSize)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, nil, err
	}

	cleanup := func() { pool.Close() }

	// Cycle report archiving is optional; no ClickHouse DSN disables it.
	var reports storage.CycleReportStore
	if cfg.Clickhouse.DSN != "" {
		conn, err := chstore.Connect(ctx, cfg.Clickhouse.DSN)
		if err != nil {
			pool.Close()
			return nil, nil, nil, nil, err
		}
		if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
			conn.Close()
			pool.Close()
			return nil, nil, nil, nil, err
		}
		reports = chstore.NewCycleReportStore(conn)
		cleanup = func() {
			conn.Close()
			pool.Close()
		}
	}

	return pgstore.NewAuctionStore(pool), pgstore.NewFlipStore(pool), reports, cleanup, nil
}

// serveMetrics exposes the Prometheus endpoint.
func serveMetrics(addr string, logger *log.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())

	logger.Printf("Metrics server listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Printf("Metrics server error: %v", err)
	}
}

// memoryModeConfig returns a runnable config for -use-memory when no
// config file is present.
func memoryModeConfig() config.Config {
	return config.Config{
		Hypixel:   config.HypixelConfig{BaseURL: hypixel.DefaultBaseURL},
		Valuation: config.ValuationConfig{URL: "http://localhost:5000", TimeoutSeconds: 30, CacheTTLSeconds: 300, CacheMaxEntries: 100000},
		Prices:    config.PricesConfig{CacheDir: "cache", RefreshEveryCycles: 10},
		Pipeline:  config.PipelineConfig{MaxConcurrentPages: 10, CycleDelaySeconds: 30},
	}
}
