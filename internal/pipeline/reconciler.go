package pipeline

import (
	"context"
	"fmt"
	"log"

	"auctionflipper/internal/hypixel"
	"auctionflipper/internal/storage"
)

// EndedFeed provides the recently-ended auction feed.
type EndedFeed interface {
	EndedAuctions(ctx context.Context) ([]hypixel.EndedAuction, error)
}

// Reconciler removes stored records whose auctions have ended.
type Reconciler struct {
	feed   EndedFeed
	store  storage.AuctionStore
	logger *log.Logger
}

// NewReconciler creates a reconciler over the given feed and store.
func NewReconciler(feed EndedFeed, store storage.AuctionStore, logger *log.Logger) *Reconciler {
	if logger == nil {
		logger = log.Default()
	}
	return &Reconciler{feed: feed, store: store, logger: logger}
}

// Reconcile intersects the ended feed with the stored identifiers and
// deletes the matches, returning the number removed. Records whose end
// has not been reported yet simply stay until a later pass.
func (r *Reconciler) Reconcile(ctx context.Context) (int64, error) {
	ended, err := r.feed.EndedAuctions(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch ended feed: %w", err)
	}
	if len(ended) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(ended))
	for _, e := range ended {
		if id := e.ID(); id != "" {
			ids = append(ids, id)
		}
	}

	existing, err := r.store.ExistingIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("intersect ended ids: %w", err)
	}
	if len(existing) == 0 {
		return 0, nil
	}

	toDelete := make([]string, 0, len(existing))
	for id := range existing {
		toDelete = append(toDelete, id)
	}

	deleted, err := r.store.DeleteBatch(ctx, toDelete)
	if err != nil {
		return 0, fmt.Errorf("delete ended records: %w", err)
	}

	r.logger.Printf("pipeline: reconciled %d ended auctions (%d reported)", deleted, len(ended))
	return deleted, nil
}
