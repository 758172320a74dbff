// Package worker defines the stateless unit of work the orchestrator fans out
// to. A worker turns a ProductSpec into a partial content payload; it may call
// the generative backend internally but must never mutate the spec, and any
// internal failure is absorbed into an error Result rather than propagated.
package worker

import (
	"context"
	"math"
	"time"

	"github.com/merchkit/listsmith/internal/listing"
)

// Status classifies a worker's outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusError   Status = "error"
)

// Failure kinds recorded in an error Result's notes. Environmental failures
// never propagate past the worker boundary.
const (
	FailUpstream    = "upstream_unavailable"
	FailUnparseable = "unparseable_output"
	FailPanic       = "worker_panic"
)

// Result is the immutable outcome of one worker invocation. Exactly one is
// produced per worker per batch.
type Result struct {
	WorkerID        string         `json:"worker_id"`
	Status          Status         `json:"status"`
	Confidence      float64        `json:"confidence"`
	Payload         map[string]any `json:"payload"`
	Notes           []string       `json:"notes,omitempty"`
	Recommendations []string       `json:"recommendations,omitempty"`
	Elapsed         time.Duration  `json:"elapsed"`
}

// ClampedConfidence returns Confidence forced into [0,1]. Workers are
// untrusted; the aggregator must never see out-of-range values.
func (r Result) ClampedConfidence() float64 {
	return Clamp01(r.Confidence)
}

// Clamp01 clamps v to [0,1], mapping NaN to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(1, math.Max(0, v))
}

// Worker is the contract every content agent implements.
//
// Invoke is pure with respect to orchestration: it must not mutate spec or
// shared state, must not panic out, and never returns an error — failures are
// converted to a Status=error Result with Confidence=0 and the worker's own
// fallback payload.
type Worker interface {
	// ID is the worker's stable identity, used by the merge precedence table.
	ID() string

	Invoke(ctx context.Context, spec listing.ProductSpec) Result

	// Fallback builds the deterministic payload used on internal failure and
	// when the backend output fails structural validation.
	Fallback(spec listing.ProductSpec) map[string]any
}

// ErrorResult synthesizes the Status=error Result for a worker, used both by
// workers themselves and by the dispatcher for abandoned workers.
func ErrorResult(w Worker, spec listing.ProductSpec, kind, detail string, elapsed time.Duration) Result {
	return Result{
		WorkerID:   w.ID(),
		Status:     StatusError,
		Confidence: 0,
		Payload:    w.Fallback(spec),
		Notes:      []string{kind + ": " + detail},
		Elapsed:    elapsed,
	}
}
