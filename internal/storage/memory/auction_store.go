package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"auctionflipper/internal/domain"
	"auctionflipper/internal/storage"
)

// AuctionStore is an in-memory implementation of storage.AuctionStore.
type AuctionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.AuctionRecord // keyed by uuid
}

// NewAuctionStore creates a new in-memory auction store.
func NewAuctionStore() *AuctionStore {
	return &AuctionStore{
		data: make(map[string]*domain.AuctionRecord),
	}
}

// ExistingIDs returns the subset of ids already present.
func (s *AuctionStore) ExistingIDs(_ context.Context, ids []string) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	existing := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := s.data[id]; ok {
			existing[id] = struct{}{}
		}
	}
	return existing, nil
}

// InsertBatch inserts all records not already present, absorbing
// per-record conflicts. Returns the number actually inserted.
func (s *AuctionStore) InsertBatch(_ context.Context, records []*domain.AuctionRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for _, r := range records {
		if r == nil || r.UUID == "" {
			return inserted, storage.ErrInvalidInput
		}
		if _, exists := s.data[r.UUID]; exists {
			continue
		}

		// Store a copy to prevent external mutation
		recordCopy := *r
		if recordCopy.CreatedAt == 0 {
			recordCopy.CreatedAt = time.Now().UnixMilli()
		}
		s.data[r.UUID] = &recordCopy
		inserted++
	}
	return inserted, nil
}

// DeleteBatch removes matching records and returns the count deleted.
func (s *AuctionStore) DeleteBatch(_ context.Context, ids []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for _, id := range ids {
		if _, ok := s.data[id]; ok {
			delete(s.data, id)
			deleted++
		}
	}
	return deleted, nil
}

// GetByUUID retrieves a record by identifier. Returns ErrNotFound if not
// present.
func (s *AuctionStore) GetByUUID(_ context.Context, uuid string) (*domain.AuctionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[uuid]
	if !exists {
		return nil, storage.ErrNotFound
	}

	recordCopy := *r
	return &recordCopy, nil
}

// List returns up to limit records with uuid > afterUUID, ordered by
// uuid ASC.
func (s *AuctionStore) List(_ context.Context, afterUUID string, limit int) ([]*domain.AuctionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.AuctionRecord
	for _, r := range s.data {
		if r.UUID > afterUUID {
			recordCopy := *r
			result = append(result, &recordCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].UUID < result[j].UUID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Count returns the number of stored records.
func (s *AuctionStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.data)), nil
}

// Verify interface compliance at compile time.
var _ storage.AuctionStore = (*AuctionStore)(nil)
