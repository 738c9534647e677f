package valuation

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrServiceUnavailable marks outcomes whose evaluation could not be
// obtained because the valuation service failed or timed out. Distinct
// from a successful not-profitable result.
var ErrServiceUnavailable = errors.New("valuation: service unavailable")

// Result is one item's evaluation as reported by the valuation service.
type Result struct {
	Success        bool    `json:"success"`
	IsProfitable   bool    `json:"isProfitable"`
	Profit         int64   `json:"profit"`
	Percentage     float64 `json:"percentage"`
	EstimatedValue int64   `json:"estimatedValue"`
	ItemID         string  `json:"itemId"`
}

// Outcome is the per-item evaluation outcome: exactly one of Result or
// Err is set. FromCache reports whether the result was served without a
// service call.
type Outcome struct {
	Result    *Result
	Err       error
	FromCache bool
}

// Evaluator scores item payloads against a price document.
//
// EvaluateBatch returns exactly one outcome per input item, in input
// order. Implementations must never fail the whole batch because of
// per-item errors.
type Evaluator interface {
	EvaluateBatch(ctx context.Context, items []string, prices json.RawMessage) []Outcome
}
