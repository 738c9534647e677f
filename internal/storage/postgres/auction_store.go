package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"auctionflipper/internal/domain"
	"auctionflipper/internal/storage"
)

// AuctionStore implements storage.AuctionStore using PostgreSQL.
type AuctionStore struct {
	pool *Pool
}

// NewAuctionStore creates a new AuctionStore.
func NewAuctionStore(pool *Pool) *AuctionStore {
	return &AuctionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AuctionStore = (*AuctionStore)(nil)

const auctionColumns = `uuid, item_name, tier, price, bin, item_bytes, start_ts, end_ts, seller, created_at`

// ExistingIDs returns the subset of ids already present, in a single
// round trip against the unique index on uuid.
func (s *AuctionStore) ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{}, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}

	rows, err := s.pool.Query(ctx, `SELECT uuid FROM auctions WHERE uuid = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("query existing ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var uuid string
		if err := rows.Scan(&uuid); err != nil {
			return nil, fmt.Errorf("scan existing id: %w", err)
		}
		existing[uuid] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate existing ids: %w", err)
	}

	return existing, nil
}

// InsertBatch inserts all records not already present. Duplicate keys
// are absorbed per record via ON CONFLICT DO NOTHING; the batch never
// aborts on a conflict. Returns the number of records actually inserted.
func (s *AuctionStore) InsertBatch(ctx context.Context, records []*domain.AuctionRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO auctions (
			uuid, item_name, tier, price, bin, item_bytes, start_ts, end_ts, seller
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (uuid) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, r := range records {
		if r == nil || r.UUID == "" {
			return 0, storage.ErrInvalidInput
		}
		batch.Queue(query,
			r.UUID,
			r.ItemName,
			string(r.Tier),
			r.Price,
			r.BIN,
			r.ItemBytes,
			r.Start,
			r.End,
			r.Seller,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range records {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("insert auction batch: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

// DeleteBatch removes matching records and returns the count deleted.
func (s *AuctionStore) DeleteBatch(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM auctions WHERE uuid = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("delete auction batch: %w", err)
	}
	return tag.RowsAffected(), nil
}

// GetByUUID retrieves a record by identifier. Returns ErrNotFound if not
// present.
func (s *AuctionStore) GetByUUID(ctx context.Context, uuid string) (*domain.AuctionRecord, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE uuid = $1`

	row := s.pool.QueryRow(ctx, query, uuid)
	r, err := scanAuction(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get auction by uuid: %w", err)
	}
	return r, nil
}

// List returns up to limit records with uuid > afterUUID, ordered by
// uuid ASC.
func (s *AuctionStore) List(ctx context.Context, afterUUID string, limit int) ([]*domain.AuctionRecord, error) {
	query := `
		SELECT ` + auctionColumns + `
		FROM auctions
		WHERE uuid > $1
		ORDER BY uuid ASC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, afterUUID, limit)
	if err != nil {
		return nil, fmt.Errorf("list auctions: %w", err)
	}
	defer rows.Close()

	var records []*domain.AuctionRecord
	for rows.Next() {
		r, err := scanAuction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan auction row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate auction rows: %w", err)
	}

	return records, nil
}

// Count returns the number of stored records.
func (s *AuctionStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM auctions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count auctions: %w", err)
	}
	return count, nil
}

// scanAuction scans a single row into an AuctionRecord.
func scanAuction(row pgx.Row) (*domain.AuctionRecord, error) {
	var r domain.AuctionRecord
	var tierStr string

	err := row.Scan(
		&r.UUID,
		&r.ItemName,
		&tierStr,
		&r.Price,
		&r.BIN,
		&r.ItemBytes,
		&r.Start,
		&r.End,
		&r.Seller,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Tier = domain.Tier(tierStr)
	return &r, nil
}
