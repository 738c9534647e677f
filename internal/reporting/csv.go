package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders the report's flips as a CSV string.
func RenderCSV(report *Report) string {
	var sb strings.Builder

	sb.WriteString("auction_uuid,item_name,tier,price,profit,percentage,")
	sb.WriteString("estimated_value,lowest_bin,daily_sales,discovered_at\n")

	for _, f := range report.Flips {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%d,%d,%.2f,%d,%s,%s,%d\n",
			f.AuctionUUID,
			csvEscape(f.ItemName),
			f.Tier,
			f.Price,
			f.Profit,
			f.Percentage,
			f.EstimatedValue,
			optional(f.LowestBIN),
			optional(f.DailySales),
			f.DiscoveredAt,
		))
	}

	return sb.String()
}

// csvEscape quotes fields containing commas or quotes.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// optional renders a nullable float, empty when absent.
func optional(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}
