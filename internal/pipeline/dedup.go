package pipeline

import (
	"context"
	"fmt"

	"auctionflipper/internal/domain"
	"auctionflipper/internal/hypixel"
	"auctionflipper/internal/storage"
)

// DedupFilter narrows a page of raw auction entries down to the new,
// evaluable records.
type DedupFilter struct {
	store storage.AuctionStore
}

// NewDedupFilter creates a filter backed by the given store.
func NewDedupFilter(store storage.AuctionStore) *DedupFilter {
	return &DedupFilter{store: store}
}

// FilterNew keeps BIN, unclaimed entries whose required fields are
// present and whose payload decodes, then asks the store once for the
// surviving identifiers and returns only the absent ones. dropped is
// the number of entries discarded for schema reasons; entries filtered
// for being non-BIN or claimed are not counted as drops.
func (f *DedupFilter) FilterNew(ctx context.Context, entries []hypixel.RawAuction) (records []*domain.AuctionRecord, dropped int, err error) {
	var candidates []*domain.AuctionRecord
	for _, e := range entries {
		if !e.BIN || e.Claimed {
			continue
		}
		if e.ItemName == "" || !e.Valid() {
			dropped++
			continue
		}
		candidates = append(candidates, toRecord(e))
	}

	if len(candidates) == 0 {
		return nil, dropped, nil
	}

	ids := make([]string, len(candidates))
	for i, r := range candidates {
		ids[i] = r.UUID
	}

	// Single round trip for the whole page.
	existing, err := f.store.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, dropped, fmt.Errorf("check existing ids: %w", err)
	}

	for _, r := range candidates {
		if _, ok := existing[r.UUID]; !ok {
			records = append(records, r)
		}
	}
	return records, dropped, nil
}

// toRecord converts a validated wire entry into a domain record.
func toRecord(e hypixel.RawAuction) *domain.AuctionRecord {
	return &domain.AuctionRecord{
		UUID:      e.UUID,
		ItemName:  e.ItemName,
		Tier:      domain.Tier(e.Tier),
		Price:     e.StartingBid,
		BIN:       e.BIN,
		ItemBytes: e.ItemBytes,
		Start:     e.Start,
		End:       e.End,
		Seller:    e.Auctioneer,
	}
}
