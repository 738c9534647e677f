package storage

import (
	"context"

	"auctionflipper/internal/domain"
)

// AuctionStore provides access to the auctions collection.
//
// Identifiers are globally unique; the backing implementation must keep
// a unique index on uuid so ExistingIDs stays sub-linear in collection
// size and concurrent InsertBatch races resolve to a single row.
type AuctionStore interface {
	// ExistingIDs returns the subset of ids already present, in a single
	// round trip.
	ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error)

	// InsertBatch inserts all records not already present. Per-record
	// duplicate-key conflicts are absorbed, never aborting the batch.
	// Returns the number of records actually inserted.
	InsertBatch(ctx context.Context, records []*domain.AuctionRecord) (int, error)

	// DeleteBatch removes matching records and returns the count deleted.
	// Deleting a non-existent id is a no-op.
	DeleteBatch(ctx context.Context, ids []string) (int64, error)

	// GetByUUID retrieves a record by identifier. Returns ErrNotFound if
	// not present.
	GetByUUID(ctx context.Context, uuid string) (*domain.AuctionRecord, error)

	// List returns up to limit records with uuid > afterUUID, ordered by
	// uuid ASC. Used for keyset pagination over the full collection.
	List(ctx context.Context, afterUUID string, limit int) ([]*domain.AuctionRecord, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)
}

// FlipStore provides access to the flips collection. Flips are
// append-only findings with no uniqueness constraint; retention is owned
// by external reporting tooling.
type FlipStore interface {
	// Insert appends one flip candidate.
	Insert(ctx context.Context, flip *domain.FlipCandidate) error

	// ListFiltered returns flips matching the filter, sorted per the
	// filter's sort settings.
	ListFiltered(ctx context.Context, filter FlipFilter) ([]*domain.FlipCandidate, error)
}

// FlipFilter narrows and orders flip listings for reporting.
// Zero values mean "no constraint".
type FlipFilter struct {
	MinProfit     int64
	MinPercentage float64
	MaxPrice      int64
	Tier          domain.Tier
	NameContains  string
	Since         int64 // discovered_at lower bound, epoch millis
	SortBy        FlipSort
	Descending    bool
	Limit         int
}

// FlipSort selects the ordering column for ListFiltered.
type FlipSort string

// Supported flip orderings.
const (
	FlipSortProfit     FlipSort = "profit"
	FlipSortPercentage FlipSort = "percentage"
	FlipSortDiscovered FlipSort = "discovered_at"
)

// CycleReportStore archives per-cycle summary counters for analytics.
type CycleReportStore interface {
	// Insert appends one cycle report.
	Insert(ctx context.Context, report *domain.CycleReport) error
}
