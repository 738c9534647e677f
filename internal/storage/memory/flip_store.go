package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"auctionflipper/internal/domain"
	"auctionflipper/internal/storage"
)

// FlipStore is an in-memory implementation of storage.FlipStore.
type FlipStore struct {
	mu    sync.RWMutex
	flips []*domain.FlipCandidate
}

// NewFlipStore creates a new in-memory flip store.
func NewFlipStore() *FlipStore {
	return &FlipStore{}
}

// Insert appends one flip candidate.
func (s *FlipStore) Insert(_ context.Context, flip *domain.FlipCandidate) error {
	if flip == nil || flip.AuctionUUID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	flipCopy := *flip
	s.flips = append(s.flips, &flipCopy)
	return nil
}

// ListFiltered returns flips matching the filter.
func (s *FlipStore) ListFiltered(_ context.Context, filter storage.FlipFilter) ([]*domain.FlipCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.FlipCandidate
	for _, f := range s.flips {
		if !matches(f, filter) {
			continue
		}
		flipCopy := *f
		result = append(result, &flipCopy)
	}

	less := sortLess(filter.SortBy)
	sort.Slice(result, func(i, j int) bool {
		if filter.Descending {
			return less(result[j], result[i])
		}
		return less(result[i], result[j])
	})

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func matches(f *domain.FlipCandidate, filter storage.FlipFilter) bool {
	if filter.MinProfit > 0 && f.Profit < filter.MinProfit {
		return false
	}
	if filter.MinPercentage > 0 && f.Percentage < filter.MinPercentage {
		return false
	}
	if filter.MaxPrice > 0 && f.Auction.Price > filter.MaxPrice {
		return false
	}
	if filter.Tier != "" && f.Auction.Tier != filter.Tier {
		return false
	}
	if filter.NameContains != "" &&
		!strings.Contains(strings.ToLower(f.Auction.ItemName), strings.ToLower(filter.NameContains)) {
		return false
	}
	if filter.Since > 0 && f.DiscoveredAt < filter.Since {
		return false
	}
	return true
}

func sortLess(by storage.FlipSort) func(a, b *domain.FlipCandidate) bool {
	switch by {
	case storage.FlipSortPercentage:
		return func(a, b *domain.FlipCandidate) bool { return a.Percentage < b.Percentage }
	case storage.FlipSortDiscovered:
		return func(a, b *domain.FlipCandidate) bool { return a.DiscoveredAt < b.DiscoveredAt }
	default:
		return func(a, b *domain.FlipCandidate) bool { return a.Profit < b.Profit }
	}
}

// Verify interface compliance at compile time.
var _ storage.FlipStore = (*FlipStore)(nil)
