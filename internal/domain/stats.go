package domain

import (
	"sync/atomic"
	"time"
)

// CycleStats aggregates per-cycle counters. All counters are atomic so
// concurrent page tasks can increment them in any order; aggregation is
// pure addition and therefore commutative.
type CycleStats struct {
	PagesProcessed   atomic.Int64
	PagesFailed      atomic.Int64
	RecordsSeen      atomic.Int64
	RecordsNew       atomic.Int64
	RecordsEvaluated atomic.Int64
	FlipsFound       atomic.Int64
	EvaluationErrors atomic.Int64
	SchemaErrors     atomic.Int64
	StoreErrors      atomic.Int64
	CacheHits        atomic.Int64
	CacheMisses      atomic.Int64

	startedAt time.Time
}

// NewCycleStats creates stats for a cycle starting now.
func NewCycleStats() *CycleStats {
	return &CycleStats{startedAt: time.Now()}
}

// StartedAt returns the cycle start time.
func (s *CycleStats) StartedAt() time.Time {
	return s.startedAt
}

// Snapshot freezes the counters into a plain report.
func (s *CycleStats) Snapshot(mode string) CycleReport {
	hits := s.CacheHits.Load()
	misses := s.CacheMisses.Load()
	var hitRate float64
	if hits+misses > 0 {
		hitRate = float64(hits) / float64(hits+misses)
	}

	return CycleReport{
		Mode:             mode,
		StartedAt:        s.startedAt.UnixMilli(),
		ElapsedMs:        time.Since(s.startedAt).Milliseconds(),
		PagesProcessed:   s.PagesProcessed.Load(),
		PagesFailed:      s.PagesFailed.Load(),
		RecordsSeen:      s.RecordsSeen.Load(),
		RecordsNew:       s.RecordsNew.Load(),
		RecordsEvaluated: s.RecordsEvaluated.Load(),
		FlipsFound:       s.FlipsFound.Load(),
		EvaluationErrors: s.EvaluationErrors.Load(),
		SchemaErrors:     s.SchemaErrors.Load(),
		StoreErrors:      s.StoreErrors.Load(),
		CacheHits:        hits,
		CacheMisses:      misses,
		CacheHitRate:     hitRate,
	}
}

// Cycle modes.
const (
	CycleModeFullScan   = "FULL_SCAN"
	CycleModeMonitoring = "MONITORING"
)

// CycleReport is an immutable summary of one completed cycle.
// Corresponds to the cycle_reports table in ClickHouse.
type CycleReport struct {
	Mode             string
	StartedAt        int64 // epoch millis
	ElapsedMs        int64
	PagesProcessed   int64
	PagesFailed      int64
	RecordsSeen      int64
	RecordsNew       int64
	RecordsEvaluated int64
	FlipsFound       int64
	EvaluationErrors int64
	SchemaErrors     int64
	StoreErrors      int64
	DeletedEnded     int64
	CacheHits        int64
	CacheMisses      int64
	CacheHitRate     float64
}
