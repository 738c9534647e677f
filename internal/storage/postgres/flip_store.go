package postgres

import (
	"context"
	"fmt"
	"strings"

	"auctionflipper/internal/domain"
	"auctionflipper/internal/storage"
)

// FlipStore implements storage.FlipStore using PostgreSQL.
//
// Flips are append-only: there is no uniqueness constraint, no update
// path, and retention is owned by external reporting tooling.
type FlipStore struct {
	pool *Pool
}

// NewFlipStore creates a new FlipStore.
func NewFlipStore(pool *Pool) *FlipStore {
	return &FlipStore{pool: pool}
}

// Compile-time interface check.
var _ storage.FlipStore = (*FlipStore)(nil)

// Insert appends one flip candidate.
func (s *FlipStore) Insert(ctx context.Context, flip *domain.FlipCandidate) error {
	if flip == nil || flip.AuctionUUID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO flips (
			auction_uuid, item_name, tier, price, bin, item_bytes, start_ts, end_ts, seller,
			profit, percentage, estimated_value, lowest_bin, daily_sales, discovered_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := s.pool.Exec(ctx, query,
		flip.AuctionUUID,
		flip.Auction.ItemName,
		string(flip.Auction.Tier),
		flip.Auction.Price,
		flip.Auction.BIN,
		flip.Auction.ItemBytes,
		flip.Auction.Start,
		flip.Auction.End,
		flip.Auction.Seller,
		flip.Profit,
		flip.Percentage,
		flip.EstimatedValue,
		flip.LowestBIN,
		flip.DailySales,
		flip.DiscoveredAt,
	)
	if err != nil {
		return fmt.Errorf("insert flip: %w", err)
	}
	return nil
}

// ListFiltered returns flips matching the filter.
func (s *FlipStore) ListFiltered(ctx context.Context, filter storage.FlipFilter) ([]*domain.FlipCandidate, error) {
	var (
		conds []string
		args  []interface{}
	)

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.MinProfit > 0 {
		conds = append(conds, "profit >= "+arg(filter.MinProfit))
	}
	if filter.MinPercentage > 0 {
		conds = append(conds, "percentage >= "+arg(filter.MinPercentage))
	}
	if filter.MaxPrice > 0 {
		conds = append(conds, "price <= "+arg(filter.MaxPrice))
	}
	if filter.Tier != "" {
		conds = append(conds, "tier = "+arg(string(filter.Tier)))
	}
	if filter.NameContains != "" {
		conds = append(conds, "item_name ILIKE "+arg("%"+filter.NameContains+"%"))
	}
	if filter.Since > 0 {
		conds = append(conds, "discovered_at >= "+arg(filter.Since))
	}

	query := `
		SELECT auction_uuid, item_name, tier, price, bin, item_bytes, start_ts, end_ts, seller,
		       profit, percentage, estimated_value, lowest_bin, daily_sales, discovered_at
		FROM flips
	`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY " + sortColumn(filter.SortBy)
	if filter.Descending {
		query += " DESC"
	} else {
		query += " ASC"
	}
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list flips: %w", err)
	}
	defer rows.Close()

	var flips []*domain.FlipCandidate
	for rows.Next() {
		var f domain.FlipCandidate
		var tierStr string

		err := rows.Scan(
			&f.AuctionUUID,
			&f.Auction.ItemName,
			&tierStr,
			&f.Auction.Price,
			&f.Auction.BIN,
			&f.Auction.ItemBytes,
			&f.Auction.Start,
			&f.Auction.End,
			&f.Auction.Seller,
			&f.Profit,
			&f.Percentage,
			&f.EstimatedValue,
			&f.LowestBIN,
			&f.DailySales,
			&f.DiscoveredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan flip row: %w", err)
		}

		f.Auction.UUID = f.AuctionUUID
		f.Auction.Tier = domain.Tier(tierStr)
		flips = append(flips, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flip rows: %w", err)
	}

	return flips, nil
}

// sortColumn maps a FlipSort to a column, defaulting to profit.
// The sort key is never interpolated from user input directly.
func sortColumn(s storage.FlipSort) string {
	switch s {
	case storage.FlipSortPercentage:
		return "percentage"
	case storage.FlipSortDiscovered:
		return "discovered_at"
	default:
		return "profit"
	}
}
