// Package main lists discovered flips from storage as JSON or CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"auctionflipper/internal/config"
	"auctionflipper/internal/domain"
	"auctionflipper/internal/reporting"
	"auctionflipper/internal/storage"
	"auctionflipper/internal/storage/migrations"
	pgstore "auctionflipper/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", ".", "Directory containing config.yaml")
	format := flag.String("format", "json", "Output format: json or csv")
	output := flag.String("output", "", "Output file (default stdout)")
	minProfit := flag.Int64("min-profit", 0, "Minimum profit filter")
	minPercentage := flag.Float64("min-percentage", 0, "Minimum profit percentage filter")
	maxPrice := flag.Int64("max-price", 0, "Maximum asking price filter")
	tier := flag.String("tier", "", "Tier filter (COMMON..MYTHIC)")
	name := flag.String("name", "", "Item name substring filter")
	since := flag.Int64("since", 0, "Only flips discovered at or after this epoch millis")
	sortBy := flag.String("sort", "profit", "Sort column: profit, percentage or discovered_at")
	limit := flag.Int("limit", 100, "Maximum rows (0 for all)")
	flag.Parse()

	logger := log.New(os.Stderr, "[report] ", log.LstdFlags)

	if *format != "json" && *format != "csv" {
		logger.Fatalf("Unknown format %q, want json or csv", *format)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	pool, err := pgstore.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.PoolSize)
	if err != nil {
		logger.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	filter := storage.FlipFilter{
		MinProfit:     *minProfit,
		MinPercentage: *minPercentage,
		MaxPrice:      *maxPrice,
		Tier:          domain.Tier(*tier),
		NameContains:  *name,
		Since:         *since,
		SortBy:        storage.FlipSort(*sortBy),
		Descending:    true,
		Limit:         *limit,
	}

	gen := reporting.NewGenerator(pgstore.NewFlipStore(pool), pgstore.NewAuctionStore(pool))
	report, err := gen.Generate(ctx, filter)
	if err != nil {
		logger.Fatalf("Failed to generate report: %v", err)
	}

	var rendered []byte
	switch *format {
	case "csv":
		rendered = []byte(reporting.RenderCSV(report))
	default:
		rendered, err = reporting.RenderJSON(report)
		if err != nil {
			logger.Fatalf("Failed to render report: %v", err)
		}
	}

	if *output == "" {
		fmt.Println(string(rendered))
		return
	}
	if err := os.WriteFile(*output, rendered, 0o644); err != nil {
		logger.Fatalf("Failed to write %s: %v", *output, err)
	}
	logger.Printf("Wrote %d flips to %s", report.Summary.TotalFlips, *output)
}
