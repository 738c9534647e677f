package domain

// FlipCandidate represents a profitable opportunity discovered during
// evaluation. Corresponds to the flips table in PostgreSQL.
//
// A candidate is a point-in-time finding: it embeds the originating
// auction and the market context observed at evaluation time, and is
// never mutated after creation.
type FlipCandidate struct {
	AuctionUUID    string        // originating auction identifier
	Auction        AuctionRecord // denormalized copy for downstream queries
	Profit         int64         // estimated value minus asking price
	Percentage     float64       // profit as % of asking price
	EstimatedValue int64         // value reported by the valuation service
	LowestBIN      *float64      // lowest competing BIN price, if known
	DailySales     *float64      // recent average daily sale volume, if known
	DiscoveredAt   int64         // epoch millis at evaluation time
}
