package pipeline

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auctionflipper/internal/domain"
	"auctionflipper/internal/hypixel"
	"auctionflipper/internal/storage/memory"
)

// countingAuctionStore wraps the memory store to count ExistingIDs calls.
type countingAuctionStore struct {
	*memory.AuctionStore
	existingCalls atomic.Int64
}

func (s *countingAuctionStore) ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	s.existingCalls.Add(1)
	return s.AuctionStore.ExistingIDs(ctx, ids)
}

func TestDedupFilter_SingleRoundTripPerPage(t *testing.T) {
	store := &countingAuctionStore{AuctionStore: memory.NewAuctionStore()}
	_, err := store.InsertBatch(context.Background(), []*domain.AuctionRecord{
		{UUID: "known", ItemName: "Known", Price: 100, BIN: true, ItemBytes: itemPayload("known")},
	})
	require.NoError(t, err)

	filter := NewDedupFilter(store)

	page := []hypixel.RawAuction{
		binAuction("known", 100),
		binAuction("fresh-1", 100),
		binAuction("fresh-2", 100),
	}

	records, dropped, err := filter.FilterNew(context.Background(), page)
	require.NoError(t, err)

	assert.Equal(t, 0, dropped)
	require.Len(t, records, 2)
	assert.Equal(t, "fresh-1", records[0].UUID)
	assert.Equal(t, "fresh-2", records[1].UUID)
	assert.Equal(t, int64(1), store.existingCalls.Load(), "one existence check for the whole page")
}

func TestDedupFilter_SkipsIneligibleWithoutStoreCall(t *testing.T) {
	store := &countingAuctionStore{AuctionStore: memory.NewAuctionStore()}
	filter := NewDedupFilter(store)

	nonBIN := binAuction("a-1", 100)
	nonBIN.BIN = false
	claimed := binAuction("a-2", 100)
	claimed.Claimed = true

	records, dropped, err := filter.FilterNew(context.Background(), []hypixel.RawAuction{nonBIN, claimed})
	require.NoError(t, err)

	assert.Empty(t, records)
	assert.Equal(t, 0, dropped)
	assert.Equal(t, int64(0), store.existingCalls.Load(), "empty candidate set skips the store")
}

func TestDedupFilter_CountsSchemaDrops(t *testing.T) {
	store := &countingAuctionStore{AuctionStore: memory.NewAuctionStore()}
	filter := NewDedupFilter(store)

	noName := binAuction("a-1", 100)
	noName.ItemName = ""
	badBytes := binAuction("a-2", 100)
	badBytes.ItemBytes = "!!!"
	noBid := binAuction("a-3", 100)
	noBid.StartingBid = 0

	records, dropped, err := filter.FilterNew(context.Background(), []hypixel.RawAuction{
		noName, badBytes, noBid, binAuction("a-ok", 100),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, dropped)
	require.Len(t, records, 1)
	assert.Equal(t, "a-ok", records[0].UUID)
}

func TestToRecord(t *testing.T) {
	raw := binAuction("a-1", 100)
	record := toRecord(raw)

	assert.Equal(t, raw.UUID, record.UUID)
	assert.Equal(t, raw.ItemName, record.ItemName)
	assert.Equal(t, domain.Tier("RARE"), record.Tier)
	assert.Equal(t, raw.StartingBid, record.Price)
	assert.True(t, record.BIN)
	assert.Equal(t, raw.ItemBytes, record.ItemBytes)
	assert.Equal(t, raw.Auctioneer, record.Seller)
}
