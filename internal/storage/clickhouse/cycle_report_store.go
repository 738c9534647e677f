package clickhouse

import (
	"context"
	"fmt"

	"auctionflipper/internal/domain"
	"auctionflipper/internal/storage"
)

// CycleReportStore implements storage.CycleReportStore using ClickHouse.
type CycleReportStore struct {
	conn *Conn
}

// NewCycleReportStore creates a new CycleReportStore.
func NewCycleReportStore(conn *Conn) *CycleReportStore {
	return &CycleReportStore{conn: conn}
}

// Compile-time interface check.
var _ storage.CycleReportStore = (*CycleReportStore)(nil)

// Insert appends one cycle report.
func (s *CycleReportStore) Insert(ctx context.Context, r *domain.CycleReport) error {
	query := `
		INSERT INTO cycle_reports (
			mode, started_at, elapsed_ms,
			pages_processed, pages_failed,
			records_seen, records_new, records_evaluated,
			flips_found, evaluation_errors, schema_errors, store_errors,
			deleted_ended, cache_hits, cache_misses, cache_hit_rate
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := s.conn.Exec(ctx, query,
		r.Mode, r.StartedAt, r.ElapsedMs,
		r.PagesProcessed, r.PagesFailed,
		r.RecordsSeen, r.RecordsNew, r.RecordsEvaluated,
		r.FlipsFound, r.EvaluationErrors, r.SchemaErrors, r.StoreErrors,
		r.DeletedEnded, r.CacheHits, r.CacheMisses, r.CacheHitRate,
	)
	if err != nil {
		return fmt.Errorf("insert cycle report: %w", err)
	}
	return nil
}
