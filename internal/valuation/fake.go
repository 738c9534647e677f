package valuation

import (
	"context"
	"encoding/json"
	"sync"
)

// Fake is a deterministic in-memory Evaluator for tests. Items are
// scored by an explicit per-payload table; unknown payloads get the
// not-profitable default.
type Fake struct {
	mu      sync.Mutex
	results map[string]Result
	errs    map[string]error
	calls   int
	seen    [][]string
}

// NewFake creates an empty fake evaluator.
func NewFake() *Fake {
	return &Fake{
		results: make(map[string]Result),
		errs:    make(map[string]error),
	}
}

// SetResult fixes the result returned for an item payload.
func (f *Fake) SetResult(item string, result Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[item] = result
}

// SetError fixes the error returned for an item payload.
func (f *Fake) SetError(item string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[item] = err
}

// EvaluateBatch scores each item from the configured tables.
func (f *Fake) EvaluateBatch(_ context.Context, items []string, _ json.RawMessage) []Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.seen = append(f.seen, append([]string(nil), items...))

	outcomes := make([]Outcome, len(items))
	for i, item := range items {
		if err, ok := f.errs[item]; ok {
			outcomes[i] = Outcome{Err: err}
			continue
		}
		if result, ok := f.results[item]; ok {
			r := result
			outcomes[i] = Outcome{Result: &r}
			continue
		}
		outcomes[i] = Outcome{Result: &Result{Success: true}}
	}
	return outcomes
}

// Calls returns how many batches were evaluated.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Batches returns a copy of every item batch seen, in call order.
func (f *Fake) Batches() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.seen...)
}

// Compile-time interface check.
var _ Evaluator = (*Fake)(nil)
