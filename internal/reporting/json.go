package reporting

import "encoding/json"

// jsonReport is the wire shape of a rendered report.
type jsonReport struct {
	GeneratedAt string      `json:"generated_at"`
	Summary     jsonSummary `json:"summary"`
	Flips       []jsonFlip  `json:"flips"`
}

type jsonSummary struct {
	TotalFlips        int     `json:"total_flips"`
	TotalProfit       int64   `json:"total_profit"`
	AverageProfit     float64 `json:"average_profit"`
	AveragePercentage float64 `json:"average_percentage"`
	BestProfit        int64   `json:"best_profit"`
	BestAuctionUUID   string  `json:"best_auction_uuid,omitempty"`
	StoredAuctions    int64   `json:"stored_auctions"`
}

type jsonFlip struct {
	AuctionUUID    string   `json:"auction_uuid"`
	ItemName       string   `json:"item_name"`
	Tier           string   `json:"tier"`
	Price          int64    `json:"price"`
	Profit         int64    `json:"profit"`
	Percentage     float64  `json:"percentage"`
	EstimatedValue int64    `json:"estimated_value"`
	LowestBIN      *float64 `json:"lowest_bin,omitempty"`
	DailySales     *float64 `json:"daily_sales,omitempty"`
	DiscoveredAt   int64    `json:"discovered_at"`
}

// RenderJSON renders the report as indented JSON.
func RenderJSON(report *Report) ([]byte, error) {
	out := jsonReport{
		GeneratedAt: report.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"),
		Summary: jsonSummary{
			TotalFlips:        report.Summary.TotalFlips,
			TotalProfit:       report.Summary.TotalProfit,
			AverageProfit:     report.Summary.AverageProfit,
			AveragePercentage: report.Summary.AveragePercentage,
			BestProfit:        report.Summary.BestProfit,
			BestAuctionUUID:   report.Summary.BestAuctionUUID,
			StoredAuctions:    report.Summary.StoredAuctions,
		},
		Flips: make([]jsonFlip, 0, len(report.Flips)),
	}

	for _, f := range report.Flips {
		out.Flips = append(out.Flips, jsonFlip{
			AuctionUUID:    f.AuctionUUID,
			ItemName:       f.ItemName,
			Tier:           f.Tier,
			Price:          f.Price,
			Profit:         f.Profit,
			Percentage:     f.Percentage,
			EstimatedValue: f.EstimatedValue,
			LowestBIN:      f.LowestBIN,
			DailySales:     f.DailySales,
			DiscoveredAt:   f.DiscoveredAt,
		})
	}

	return json.MarshalIndent(out, "", "  ")
}
