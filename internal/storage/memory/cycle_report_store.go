package memory

import (
	"context"
	"sync"

	"auctionflipper/internal/domain"
	"auctionflipper/internal/storage"
)

// CycleReportStore is an in-memory implementation of
// storage.CycleReportStore.
type CycleReportStore struct {
	mu      sync.RWMutex
	reports []*domain.CycleReport
}

// NewCycleReportStore creates a new in-memory cycle report store.
func NewCycleReportStore() *CycleReportStore {
	return &CycleReportStore{}
}

// Insert appends one cycle report.
func (s *CycleReportStore) Insert(_ context.Context, report *domain.CycleReport) error {
	if report == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reportCopy := *report
	s.reports = append(s.reports, &reportCopy)
	return nil
}

// All returns copies of every archived report, in insertion order.
func (s *CycleReportStore) All() []*domain.CycleReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.CycleReport, 0, len(s.reports))
	for _, r := range s.reports {
		reportCopy := *r
		result = append(result, &reportCopy)
	}
	return result
}

// Verify interface compliance at compile time.
var _ storage.CycleReportStore = (*CycleReportStore)(nil)
