package pipeline

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"auctionflipper/internal/domain"
	"auctionflipper/internal/hypixel"
	"auctionflipper/internal/prices"
	"auctionflipper/internal/storage"
	"auctionflipper/internal/valuation"
)

// Default configuration values.
const (
	DefaultMaxConcurrentPages = 10
	DefaultFullScanBatchSize  = 200
)

// PageFetcher provides the auction catalog.
type PageFetcher interface {
	Metadata(ctx context.Context) (*hypixel.PageMetadata, error)
	FetchPage(ctx context.Context, page int) (*hypixel.AuctionPage, error)
}

// PriceSource provides the current market data tables.
type PriceSource interface {
	Current() *prices.Tables
}

// IngestionCycle runs one pass over the auction catalog: fetch pages
// concurrently, persist the new records, evaluate them, store the
// profitable findings.
type IngestionCycle struct {
	fetcher       PageFetcher
	dedup         *DedupFilter
	auctions      storage.AuctionStore
	flips         storage.FlipStore
	evaluator     valuation.Evaluator
	priceSource   PriceSource
	maxConcurrent int
	fullScanBatch int
	logger        *log.Logger
}

// CycleOptions configures NewIngestionCycle.
type CycleOptions struct {
	Fetcher            PageFetcher
	Auctions           storage.AuctionStore
	Flips              storage.FlipStore
	Evaluator          valuation.Evaluator
	PriceSource        PriceSource
	MaxConcurrentPages int
	FullScanBatchSize  int
	Logger             *log.Logger
}

// NewIngestionCycle wires a cycle from its collaborators.
func NewIngestionCycle(opts CycleOptions) *IngestionCycle {
	maxConcurrent := opts.MaxConcurrentPages
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentPages
	}
	batch := opts.FullScanBatchSize
	if batch <= 0 {
		batch = DefaultFullScanBatchSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &IngestionCycle{
		fetcher:       opts.Fetcher,
		dedup:         NewDedupFilter(opts.Auctions),
		auctions:      opts.Auctions,
		flips:         opts.Flips,
		evaluator:     opts.Evaluator,
		priceSource:   opts.PriceSource,
		maxConcurrent: maxConcurrent,
		fullScanBatch: batch,
		logger:        logger,
	}
}

// Run executes one cycle in the given mode and returns its report.
// Page-level failures are absorbed into the report; only a failed
// metadata fetch fails the cycle as a whole.
func (c *IngestionCycle) Run(ctx context.Context, mode string) (domain.CycleReport, error) {
	stats := domain.NewCycleStats()

	meta, err := c.fetcher.Metadata(ctx)
	if err != nil {
		return stats.Snapshot(mode), fmt.Errorf("fetch catalog metadata: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrent)

	for page := 0; page < meta.TotalPages; page++ {
		page := page
		g.Go(func() error {
			c.processPage(gctx, page, stats)
			return nil
		})
	}
	// Workers never return errors; Wait is a pure join.
	_ = g.Wait()

	if mode == domain.CycleModeFullScan {
		c.reevaluateStored(ctx, stats)
	}

	report := stats.Snapshot(mode)
	c.logger.Printf("pipeline: %s cycle done: pages=%d/%d new=%d evaluated=%d flips=%d elapsed=%dms",
		mode, report.PagesProcessed, meta.TotalPages, report.RecordsNew,
		report.RecordsEvaluated, report.FlipsFound, report.ElapsedMs)
	return report, ctx.Err()
}

// processPage handles one catalog page end to end. Failures increment
// counters and never propagate to sibling pages.
func (c *IngestionCycle) processPage(ctx context.Context, page int, stats *domain.CycleStats) {
	result, err := c.fetcher.FetchPage(ctx, page)
	if err != nil {
		stats.PagesFailed.Add(1)
		c.logger.Printf("pipeline: page %d fetch failed: %v", page, err)
		return
	}

	stats.PagesProcessed.Add(1)
	stats.RecordsSeen.Add(int64(len(result.Auctions)))

	records, dropped, err := c.dedup.FilterNew(ctx, result.Auctions)
	stats.SchemaErrors.Add(int64(dropped))
	if err != nil {
		stats.StoreErrors.Add(1)
		c.logger.Printf("pipeline: page %d dedup failed: %v", page, err)
		return
	}
	if len(records) == 0 {
		return
	}

	// Persist first, then evaluate: a record must survive even when its
	// evaluation fails.
	inserted, err := c.auctions.InsertBatch(ctx, records)
	if err != nil {
		stats.StoreErrors.Add(1)
		c.logger.Printf("pipeline: page %d insert failed: %v", page, err)
	}
	stats.RecordsNew.Add(int64(inserted))

	c.evaluateRecords(ctx, records, stats)
}

// evaluateRecords scores a batch of records and stores the profitable
// findings.
func (c *IngestionCycle) evaluateRecords(ctx context.Context, records []*domain.AuctionRecord, stats *domain.CycleStats) {
	tables := c.priceSource.Current()

	items := make([]string, len(records))
	for i, r := range records {
		items[i] = r.ItemBytes
	}

	outcomes := c.evaluator.EvaluateBatch(ctx, items, tables.Prices)
	stats.RecordsEvaluated.Add(int64(len(records)))

	for i, outcome := range outcomes {
		if outcome.FromCache {
			stats.CacheHits.Add(1)
		} else {
			stats.CacheMisses.Add(1)
		}

		if outcome.Err != nil || outcome.Result == nil || !outcome.Result.Success {
			stats.EvaluationErrors.Add(1)
			continue
		}
		if !outcome.Result.IsProfitable {
			continue
		}

		flip := buildFlip(records[i], outcome.Result, tables)
		if err := c.flips.Insert(ctx, flip); err != nil {
			stats.StoreErrors.Add(1)
			c.logger.Printf("pipeline: store flip for %s failed: %v", flip.AuctionUUID, err)
			continue
		}
		stats.FlipsFound.Add(1)
	}
}

// reevaluateStored walks the whole collection in keyset batches and
// re-evaluates against the current snapshot. Used on startup, when the
// monitoring loop has not seen the stored records this process' cache
// lifetime.
func (c *IngestionCycle) reevaluateStored(ctx context.Context, stats *domain.CycleStats) {
	after := ""
	for {
		if ctx.Err() != nil {
			return
		}

		batch, err := c.auctions.List(ctx, after, c.fullScanBatch)
		if err != nil {
			stats.StoreErrors.Add(1)
			c.logger.Printf("pipeline: full scan list failed: %v", err)
			return
		}
		if len(batch) == 0 {
			return
		}

		c.evaluateRecords(ctx, batch, stats)
		after = batch[len(batch)-1].UUID
	}
}

// buildFlip assembles the stored finding, enriched with market context
// for the evaluated item id.
func buildFlip(record *domain.AuctionRecord, result *valuation.Result, tables *prices.Tables) *domain.FlipCandidate {
	flip := &domain.FlipCandidate{
		AuctionUUID:    record.UUID,
		Auction:        *record,
		Profit:         result.Profit,
		Percentage:     result.Percentage,
		EstimatedValue: result.EstimatedValue,
		DiscoveredAt:   nowMillis(),
	}
	if v, ok := tables.LowestBIN[result.ItemID]; ok {
		flip.LowestBIN = &v
	}
	if v, ok := tables.DailySales[result.ItemID]; ok {
		flip.DailySales = &v
	}
	return flip
}
