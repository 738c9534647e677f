package reporting

import "time"

// Report is a point-in-time view of discovered flips.
type Report struct {
	GeneratedAt time.Time
	Summary     Summary
	Flips       []FlipRow
}

// Summary aggregates the listed flips.
type Summary struct {
	TotalFlips        int
	TotalProfit       int64
	AverageProfit     float64
	AveragePercentage float64
	BestProfit        int64
	BestAuctionUUID   string
	StoredAuctions    int64
}

// FlipRow is one flip flattened for rendering.
type FlipRow struct {
	AuctionUUID    string
	ItemName       string
	Tier           string
	Price          int64
	Profit         int64
	Percentage     float64
	EstimatedValue int64
	LowestBIN      *float64
	DailySales     *float64
	DiscoveredAt   int64
}
