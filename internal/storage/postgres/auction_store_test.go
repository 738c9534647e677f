package postgres

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auctionflipper/internal/domain"
	"auctionflipper/internal/storage"
)

func testAuction(uuid string) *domain.AuctionRecord {
	return &domain.AuctionRecord{
		UUID:      uuid,
		ItemName:  "Aspect of the End",
		Tier:      domain.TierRare,
		Price:     150000,
		BIN:       true,
		ItemBytes: "H4sIAAAAAAAA",
		Start:     1700000000000,
		End:       1700000600000,
		Seller:    "seller-1",
	}
}

func TestAuctionStore_InsertBatchAndGetByUUID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAuctionStore(pool)
	ctx := context.Background()

	records := []*domain.AuctionRecord{
		testAuction("auction-001"),
		testAuction("auction-002"),
	}

	inserted, err := store.InsertBatch(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	retrieved, err := store.GetByUUID(ctx, "auction-001")
	require.NoError(t, err)

	assert.Equal(t, "auction-001", retrieved.UUID)
	assert.Equal(t, "Aspect of the End", retrieved.ItemName)
	assert.Equal(t, domain.TierRare, retrieved.Tier)
	assert.Equal(t, int64(150000), retrieved.Price)
	assert.True(t, retrieved.BIN)
	assert.Equal(t, "H4sIAAAAAAAA", retrieved.ItemBytes)
	assert.Equal(t, int64(1700000000000), retrieved.Start)
	assert.Equal(t, int64(1700000600000), retrieved.End)
	assert.Equal(t, "seller-1", retrieved.Seller)
	assert.NotZero(t, retrieved.CreatedAt)
}

func TestAuctionStore_InsertBatchAbsorbsConflicts(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAuctionStore(pool)
	ctx := context.Background()

	first := []*domain.AuctionRecord{
		testAuction("auction-a"),
		testAuction("auction-b"),
	}
	inserted, err := store.InsertBatch(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	// Overlapping batch: one duplicate, one new. The duplicate must not
	// abort the batch and the new record must land.
	second := []*domain.AuctionRecord{
		testAuction("auction-b"),
		testAuction("auction-c"),
	}
	inserted, err = store.InsertBatch(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestAuctionStore_InsertBatchAllDuplicates(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAuctionStore(pool)
	ctx := context.Background()

	records := []*domain.AuctionRecord{testAuction("auction-dup")}

	inserted, err := store.InsertBatch(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	inserted, err = store.InsertBatch(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)
}

func TestAuctionStore_InsertBatchEmpty(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAuctionStore(pool)
	ctx := context.Background()

	inserted, err := store.InsertBatch(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)
}

func TestAuctionStore_ExistingIDs(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAuctionStore(pool)
	ctx := context.Background()

	records := []*domain.AuctionRecord{
		testAuction("auction-x"),
		testAuction("auction-y"),
	}
	_, err := store.InsertBatch(ctx, records)
	require.NoError(t, err)

	existing, err := store.ExistingIDs(ctx, []string{"auction-x", "auction-y", "auction-z"})
	require.NoError(t, err)

	assert.Len(t, existing, 2)
	assert.Contains(t, existing, "auction-x")
	assert.Contains(t, existing, "auction-y")
	assert.NotContains(t, existing, "auction-z")

	// Empty input never hits the database.
	existing, err = store.ExistingIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, existing)
}

func TestAuctionStore_DeleteBatch(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAuctionStore(pool)
	ctx := context.Background()

	records := []*domain.AuctionRecord{
		testAuction("auction-del-1"),
		testAuction("auction-del-2"),
		testAuction("auction-keep"),
	}
	_, err := store.InsertBatch(ctx, records)
	require.NoError(t, err)

	// Deleting non-existent ids is a no-op; only matches count.
	deleted, err := store.DeleteBatch(ctx, []string{"auction-del-1", "auction-del-2", "auction-ghost"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = store.GetByUUID(ctx, "auction-del-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAuctionStore_GetByUUIDNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAuctionStore(pool)
	ctx := context.Background()

	_, err := store.GetByUUID(ctx, "nonexistent")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAuctionStore_ListKeysetPagination(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAuctionStore(pool)
	ctx := context.Background()

	var records []*domain.AuctionRecord
	for i := 0; i < 5; i++ {
		records = append(records, testAuction(fmt.Sprintf("auction-%03d", i)))
	}
	_, err := store.InsertBatch(ctx, records)
	require.NoError(t, err)

	// First page.
	page, err := store.List(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "auction-000", page[0].UUID)
	assert.Equal(t, "auction-001", page[1].UUID)

	// Second page resumes after the last uuid seen.
	page, err = store.List(ctx, page[len(page)-1].UUID, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "auction-002", page[0].UUID)
	assert.Equal(t, "auction-003", page[1].UUID)

	// Final page is short.
	page, err = store.List(ctx, page[len(page)-1].UUID, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "auction-004", page[0].UUID)
}
