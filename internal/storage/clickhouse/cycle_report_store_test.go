package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auctionflipper/internal/domain"
)

func TestCycleReportStore_Insert(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCycleReportStore(conn)
	ctx := context.Background()

	report := &domain.CycleReport{
		Mode:             domain.CycleModeMonitoring,
		StartedAt:        1700000000000,
		ElapsedMs:        5230,
		PagesProcessed:   80,
		PagesFailed:      2,
		RecordsSeen:      96000,
		RecordsNew:       1200,
		RecordsEvaluated: 1200,
		FlipsFound:       17,
		EvaluationErrors: 3,
		SchemaErrors:     5,
		StoreErrors:      0,
		DeletedEnded:     450,
		CacheHits:        1020,
		CacheMisses:      180,
		CacheHitRate:     0.85,
	}

	err := store.Insert(ctx, report)
	require.NoError(t, err)

	rows, err := conn.Query(ctx, `
		SELECT mode, started_at, pages_processed, flips_found, deleted_ended, cache_hit_rate
		FROM cycle_reports
		WHERE started_at = 1700000000000
	`)
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())

	var (
		mode                  string
		startedAt             int64
		pages, flips, deleted int64
		hitRate               float64
	)
	require.NoError(t, rows.Scan(&mode, &startedAt, &pages, &flips, &deleted, &hitRate))

	assert.Equal(t, domain.CycleModeMonitoring, mode)
	assert.Equal(t, int64(1700000000000), startedAt)
	assert.Equal(t, int64(80), pages)
	assert.Equal(t, int64(17), flips)
	assert.Equal(t, int64(450), deleted)
	assert.InDelta(t, 0.85, hitRate, 1e-9)
}

func TestCycleReportStore_InsertMultiple(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCycleReportStore(conn)
	ctx := context.Background()

	for i := int64(0); i < 3; i++ {
		report := &domain.CycleReport{
			Mode:      domain.CycleModeFullScan,
			StartedAt: 1700000000000 + i*1000,
			ElapsedMs: 1000,
		}
		require.NoError(t, store.Insert(ctx, report))
	}

	row := conn.QueryRow(ctx, `SELECT count() FROM cycle_reports`)
	var count uint64
	require.NoError(t, row.Scan(&count))
	assert.Equal(t, uint64(3), count)
}
