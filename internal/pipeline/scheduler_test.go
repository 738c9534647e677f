package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auctionflipper/internal/domain"
	"auctionflipper/internal/storage/memory"
)

// fakeCycle records the modes it ran in.
type fakeCycle struct {
	mu    sync.Mutex
	modes []string
}

func (f *fakeCycle) Run(_ context.Context, mode string) (domain.CycleReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modes = append(f.modes, mode)
	return domain.CycleReport{Mode: mode, StartedAt: time.Now().UnixMilli()}, nil
}

func (f *fakeCycle) ranModes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.modes...)
}

// fakeReconciler returns a fixed deletion count.
type fakeReconciler struct {
	mu      sync.Mutex
	deleted int64
	calls   int
}

func (f *fakeReconciler) Reconcile(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.deleted, nil
}

// fakeSnapshot counts refreshes.
type fakeSnapshot struct {
	mu        sync.Mutex
	refreshes int
	err       error
}

func (f *fakeSnapshot) Refresh(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return f.err
}

func (f *fakeSnapshot) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshes
}

func newTestScheduler(cycle *fakeCycle, rec *fakeReconciler, snap *fakeSnapshot, reports *memory.CycleReportStore, refreshEvery int) *Scheduler {
	opts := SchedulerOptions{
		Cycle:              cycle,
		Reconciler:         rec,
		Snapshot:           snap,
		CycleDelay:         10 * time.Millisecond,
		RefreshEveryCycles: refreshEvery,
	}
	// Assign only a non-nil pointer: a typed nil stored in the
	// interface field would defeat the scheduler's nil check.
	if reports != nil {
		opts.Reports = reports
	}
	return NewScheduler(opts)
}

func TestScheduler_FullScanFirstThenMonitoring(t *testing.T) {
	cycle := &fakeCycle{}
	snap := &fakeSnapshot{}
	s := newTestScheduler(cycle, &fakeReconciler{}, snap, nil, 100)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(cycle.ranModes()) >= 3
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	err := <-done
	assert.ErrorIs(t, err, context.Canceled)

	modes := cycle.ranModes()
	assert.Equal(t, domain.CycleModeFullScan, modes[0])
	for _, m := range modes[1:] {
		assert.Equal(t, domain.CycleModeMonitoring, m)
	}
}

func TestScheduler_RefreshCadence(t *testing.T) {
	cycle := &fakeCycle{}
	snap := &fakeSnapshot{}
	s := newTestScheduler(cycle, &fakeReconciler{}, snap, nil, 3)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(cycle.ranModes()) >= 7
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	<-done

	// Cycles 0, 3 and 6 refresh; later ones may have run before cancel.
	assert.GreaterOrEqual(t, snap.count(), 3)
	assert.Less(t, snap.count(), len(cycle.ranModes()))
}

func TestScheduler_ArchivesReportsWithDeletedCount(t *testing.T) {
	cycle := &fakeCycle{}
	rec := &fakeReconciler{deleted: 7}
	reports := memory.NewCycleReportStore()
	s := newTestScheduler(cycle, rec, &fakeSnapshot{}, reports, 100)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(reports.All()) >= 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	<-done

	archived := reports.All()
	require.NotEmpty(t, archived)
	assert.Equal(t, domain.CycleModeFullScan, archived[0].Mode)
	assert.Equal(t, int64(7), archived[0].DeletedEnded)
}

func TestScheduler_SnapshotFailureDoesNotStopLoop(t *testing.T) {
	cycle := &fakeCycle{}
	snap := &fakeSnapshot{err: errors.New("feeds down")}
	s := newTestScheduler(cycle, &fakeReconciler{}, snap, nil, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(cycle.ranModes()) >= 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestScheduler_StopsBeforeFirstMonitoringCycle(t *testing.T) {
	cycle := &fakeCycle{}
	s := NewScheduler(SchedulerOptions{
		Cycle:              cycle,
		Reconciler:         &fakeReconciler{},
		Snapshot:           &fakeSnapshot{},
		CycleDelay:         time.Hour,
		RefreshEveryCycles: 1,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(cycle.ranModes()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, cycle.ranModes(), 1, "no monitoring cycle launched after cancel")
}
