package reporting

import (
	"context"
	"time"

	"auctionflipper/internal/storage"
)

// Generator produces flip reports from stored data.
type Generator struct {
	flipStore    storage.FlipStore
	auctionStore storage.AuctionStore
	now          func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(flipStore storage.FlipStore, auctionStore storage.AuctionStore) *Generator {
	return &Generator{
		flipStore:    flipStore,
		auctionStore: auctionStore,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate lists the flips matching filter and computes their summary.
func (g *Generator) Generate(ctx context.Context, filter storage.FlipFilter) (*Report, error) {
	flips, err := g.flipStore.ListFiltered(ctx, filter)
	if err != nil {
		return nil, err
	}

	stored := int64(0)
	if g.auctionStore != nil {
		if count, err := g.auctionStore.Count(ctx); err == nil {
			stored = count
		}
	}

	report := &Report{
		GeneratedAt: g.now(),
		Flips:       make([]FlipRow, 0, len(flips)),
	}

	var totalProfit int64
	var totalPercentage float64

	for _, f := range flips {
		row := FlipRow{
			AuctionUUID:    f.AuctionUUID,
			ItemName:       f.Auction.ItemName,
			Tier:           string(f.Auction.Tier),
			Price:          f.Auction.Price,
			Profit:         f.Profit,
			Percentage:     f.Percentage,
			EstimatedValue: f.EstimatedValue,
			LowestBIN:      f.LowestBIN,
			DailySales:     f.DailySales,
			DiscoveredAt:   f.DiscoveredAt,
		}
		report.Flips = append(report.Flips, row)

		totalProfit += f.Profit
		totalPercentage += f.Percentage
		if f.Profit > report.Summary.BestProfit {
			report.Summary.BestProfit = f.Profit
			report.Summary.BestAuctionUUID = f.AuctionUUID
		}
	}

	report.Summary.TotalFlips = len(flips)
	report.Summary.TotalProfit = totalProfit
	report.Summary.StoredAuctions = stored
	if len(flips) > 0 {
		report.Summary.AverageProfit = float64(totalProfit) / float64(len(flips))
		report.Summary.AveragePercentage = totalPercentage / float64(len(flips))
	}

	return report, nil
}
