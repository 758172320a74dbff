package orchestrator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/merchkit/listsmith/internal/listing"
	"github.com/merchkit/listsmith/internal/llm"
	"github.com/merchkit/listsmith/internal/worker"
)

// Options configures a Runner.
type Options struct {
	// Deadline bounds the whole batch; <= 0 selects DefaultDeadline.
	Deadline time.Duration

	// ConfidenceFloor is reported when no worker succeeds; <= 0 selects
	// DefaultConfidenceFloor.
	ConfidenceFloor float64

	// Precedence overrides the merge precedence table; nil selects
	// DefaultPrecedence.
	Precedence PrecedenceTable

	// SkipReview disables the review pass entirely.
	SkipReview bool

	Log *zap.Logger
}

// Runner is the orchestrator entrypoint: it owns the dispatcher, collector,
// merger, confidence aggregation, and review stage for one worker set.
type Runner struct {
	workers    []worker.Worker
	dispatcher *Dispatcher
	merger     *Merger
	reviewer   *Reviewer
	progress   *ProgressReporter
	floor      float64
	skipReview bool
	log        *zap.Logger
}

// NewRunner wires a Runner over the given workers and backend client.
func NewRunner(workers []worker.Worker, client llm.Client, opts Options) *Runner {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	floor := opts.ConfidenceFloor
	if floor <= 0 {
		floor = DefaultConfidenceFloor
	}
	table := opts.Precedence
	if table == nil {
		table = DefaultPrecedence
	}

	progress := NewProgressReporter()
	return &Runner{
		workers:    workers,
		dispatcher: NewDispatcher(opts.Deadline, progress.Emit, log),
		merger:     NewMerger(table),
		reviewer:   NewReviewer(client, log),
		progress:   progress,
		floor:      floor,
		skipReview: opts.SkipReview,
		log:        log,
	}
}

// Progress returns a channel that emits per-worker progress events.
func (r *Runner) Progress() <-chan ProgressEvent {
	return r.progress.Subscribe()
}

// Close shuts down the progress reporter.
func (r *Runner) Close() {
	r.progress.Close()
}

// RunBatch executes one full batch: fan out, collect, merge, aggregate
// confidence, review. It always returns a complete listing — worst case every
// field at its built-in default and confidence at the floor — along with the
// per-worker results for callers that build suggestions or reports from them.
func (r *Runner) RunBatch(ctx context.Context, spec listing.ProductSpec) (*listing.MergedListing, []worker.Result) {
	start := time.Now()
	r.log.Info("starting batch",
		zap.String("product", spec.Name),
		zap.Int("workers", len(r.workers)))

	results := r.dispatcher.Dispatch(ctx, spec, r.workers)
	collection := Collect(spec, r.workers, results)

	merged := r.merger.Merge(spec, collection)
	merged.Confidence = AggregateConfidence(collection.Successful, r.floor)

	if !r.skipReview {
		outcome := r.reviewer.Review(ctx, merged, collection.SuccessfulPayloads())
		outcome.Apply(merged)
	}

	r.log.Info("batch complete",
		zap.Int("successful", len(collection.Successful)),
		zap.Int("degraded", len(collection.Degraded)),
		zap.Float64("confidence", merged.Confidence),
		zap.Bool("review_applied", merged.ReviewApplied),
		zap.Duration("elapsed", time.Since(start)))

	return merged, collection.Results
}
