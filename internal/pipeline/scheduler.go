package pipeline

import (
	"context"
	"log"
	"time"

	"auctionflipper/internal/domain"
	"auctionflipper/internal/observability"
	"auctionflipper/internal/storage"
)

// Default configuration values.
const (
	DefaultCycleDelay         = 30 * time.Second
	DefaultRefreshEveryCycles = 10
)

// CycleRunner runs one ingestion cycle.
type CycleRunner interface {
	Run(ctx context.Context, mode string) (domain.CycleReport, error)
}

// Reconciling removes ended records between cycles.
type Reconciling interface {
	Reconcile(ctx context.Context) (int64, error)
}

// SnapshotRefresher refreshes the market data snapshot.
type SnapshotRefresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler drives the pipeline: one initial full scan, then a
// monitoring loop with reconciliation and periodic snapshot refresh.
type Scheduler struct {
	cycle        CycleRunner
	reconciler   Reconciling
	snapshot     SnapshotRefresher
	reports      storage.CycleReportStore // nil disables archiving
	metrics      *observability.Metrics   // nil disables metrics
	auctions     storage.AuctionStore     // nil disables the stored gauge
	delay        time.Duration
	refreshEvery int
	logger       *log.Logger

	cycleCount int
}

// SchedulerOptions configures NewScheduler.
type SchedulerOptions struct {
	Cycle              CycleRunner
	Reconciler         Reconciling
	Snapshot           SnapshotRefresher
	Reports            storage.CycleReportStore
	Metrics            *observability.Metrics
	Auctions           storage.AuctionStore
	CycleDelay         time.Duration
	RefreshEveryCycles int
	Logger             *log.Logger
}

// NewScheduler wires a scheduler from its collaborators.
func NewScheduler(opts SchedulerOptions) *Scheduler {
	delay := opts.CycleDelay
	if delay <= 0 {
		delay = DefaultCycleDelay
	}
	refreshEvery := opts.RefreshEveryCycles
	if refreshEvery <= 0 {
		refreshEvery = DefaultRefreshEveryCycles
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Scheduler{
		cycle:        opts.Cycle,
		reconciler:   opts.Reconciler,
		snapshot:     opts.Snapshot,
		reports:      opts.Reports,
		metrics:      opts.Metrics,
		auctions:     opts.Auctions,
		delay:        delay,
		refreshEvery: refreshEvery,
		logger:       logger,
	}
}

// Run executes the scheduling loop until ctx is cancelled. Cancellation
// stops launching new cycles; the in-flight cycle drains through its
// own context.
func (s *Scheduler) Run(ctx context.Context) error {
	s.runCycle(ctx, domain.CycleModeFullScan)

	for {
		select {
		case <-ctx.Done():
			s.logger.Printf("pipeline: scheduler stopping: %v", ctx.Err())
			return ctx.Err()
		case <-time.After(s.delay):
		}

		s.runCycle(ctx, domain.CycleModeMonitoring)
	}
}

// runCycle executes one cycle plus its surrounding bookkeeping:
// snapshot refresh on cadence, reconciliation, report archival.
func (s *Scheduler) runCycle(ctx context.Context, mode string) {
	if s.cycleCount%s.refreshEvery == 0 {
		if err := s.snapshot.Refresh(ctx); err != nil {
			s.logger.Printf("pipeline: snapshot refresh failed, continuing with previous data: %v", err)
		}
	}
	s.cycleCount++

	report, err := s.cycle.Run(ctx, mode)
	if err != nil {
		s.logger.Printf("pipeline: %s cycle failed: %v", mode, err)
		s.recordCycle(report, "failed")
		return
	}

	if deleted, err := s.reconciler.Reconcile(ctx); err != nil {
		s.logger.Printf("pipeline: reconcile failed: %v", err)
	} else {
		report.DeletedEnded = deleted
	}

	s.archive(ctx, report)
	s.recordCycle(report, "ok")
	s.updateStoredGauge(ctx)
}

// updateStoredGauge refreshes the stored record count after a cycle.
func (s *Scheduler) updateStoredGauge(ctx context.Context) {
	if s.metrics == nil || s.auctions == nil {
		return
	}
	if count, err := s.auctions.Count(ctx); err == nil {
		s.metrics.StoredAuctions.Set(float64(count))
	}
}

// archive stores the cycle report for analytics. Best-effort: a failed
// archive is logged and the loop continues.
func (s *Scheduler) archive(ctx context.Context, report domain.CycleReport) {
	if s.reports == nil {
		return
	}
	if err := s.reports.Insert(ctx, &report); err != nil {
		s.logger.Printf("pipeline: archive cycle report failed: %v", err)
	}
}

// recordCycle exports the report counters to Prometheus.
func (s *Scheduler) recordCycle(report domain.CycleReport, status string) {
	if s.metrics == nil {
		return
	}

	m := s.metrics
	m.CyclesTotal.WithLabelValues(report.Mode, status).Inc()
	m.CycleDuration.WithLabelValues(report.Mode).Observe(float64(report.ElapsedMs) / 1000)
	m.PagesProcessed.Add(float64(report.PagesProcessed))
	m.PagesFailed.Add(float64(report.PagesFailed))
	m.RecordsSeen.Add(float64(report.RecordsSeen))
	m.RecordsNew.Add(float64(report.RecordsNew))
	m.SchemaErrors.Add(float64(report.SchemaErrors))
	m.StoreErrors.Add(float64(report.StoreErrors))
	m.RecordsEvaluated.Add(float64(report.RecordsEvaluated))
	m.EvaluationErrors.Add(float64(report.EvaluationErrors))
	m.FlipsFound.Add(float64(report.FlipsFound))
	m.CacheHits.Add(float64(report.CacheHits))
	m.CacheMisses.Add(float64(report.CacheMisses))
	m.EndedDeleted.Add(float64(report.DeletedEnded))

	if status == "ok" {
		m.LastSuccessfulCycle.SetToCurrentTime()
	}
}

// nowMillis returns the current time in epoch milliseconds.
func nowMillis() int64 {
	return time.Now().UnixMilli()
}
