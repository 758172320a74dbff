package orchestrator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/merchkit/listsmith/internal/listing"
	"github.com/merchkit/listsmith/internal/worker"
)

// DefaultDeadline bounds a whole batch when the caller does not override it.
const DefaultDeadline = 120 * time.Second

// Dispatcher fans one ProductSpec out to every worker concurrently under a
// single batch deadline. Workers are mutually independent: none waits on
// another, and a failing or abandoned worker is represented by an error
// Result rather than a dispatcher failure.
type Dispatcher struct {
	deadline   time.Duration
	onProgress func(ProgressEvent)
	log        *zap.Logger
}

// NewDispatcher creates a Dispatcher. deadline <= 0 selects DefaultDeadline;
// onProgress may be nil.
func NewDispatcher(deadline time.Duration, onProgress func(ProgressEvent), log *zap.Logger) *Dispatcher {
	if deadline <= 0 {
		deadline = DefaultDeadline
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{deadline: deadline, onProgress: onProgress, log: log}
}

// dispatchResult pairs a worker index with its Result so arrival order never
// influences placement.
type dispatchResult struct {
	idx int
	res worker.Result
}

// Dispatch launches every worker in its own goroutine and gathers results
// until all workers finish or the batch deadline expires. Workers that miss
// the deadline are abandoned: their eventual results are discarded and a
// synthesized error Result with the worker's own fallback payload takes their
// place. Dispatch always returns exactly one Result per worker and never
// returns before constructing a complete set.
func (d *Dispatcher) Dispatch(ctx context.Context, spec listing.ProductSpec, workers []worker.Worker) []worker.Result {
	ctx, cancel := context.WithTimeout(ctx, d.deadline)
	defer cancel()

	// Buffered to len(workers) so abandoned goroutines can still complete
	// their send and exit instead of leaking.
	resultCh := make(chan dispatchResult, len(workers))

	var g errgroup.Group
	for i, w := range workers {
		d.emit(ProgressEvent{WorkerID: w.ID(), Status: ProgressPending})
		g.Go(func() error {
			d.emit(ProgressEvent{WorkerID: w.ID(), Status: ProgressWorking})
			resultCh <- dispatchResult{idx: i, res: d.invoke(ctx, w, spec)}
			return nil
		})
	}

	// Race full completion against the batch deadline.
	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()

	results := make([]worker.Result, len(workers))
	received := make([]bool, len(workers))
	collected := 0

gather:
	for collected < len(workers) {
		select {
		case dr := <-resultCh:
			results[dr.idx] = dr.res
			received[dr.idx] = true
			collected++
			d.emitOutcome(dr.res)
		case <-done:
			// All goroutines finished; drain anything still buffered.
			for collected < len(workers) {
				select {
				case dr := <-resultCh:
					results[dr.idx] = dr.res
					received[dr.idx] = true
					collected++
					d.emitOutcome(dr.res)
				default:
					break gather
				}
			}
		case <-ctx.Done():
			// Deadline hit: keep whatever already landed in the buffer, then
			// abandon the rest.
			for collected < len(workers) {
				select {
				case dr := <-resultCh:
					results[dr.idx] = dr.res
					received[dr.idx] = true
					collected++
					d.emitOutcome(dr.res)
				default:
					break gather
				}
			}
		}
	}

	// Synthesize error results for workers abandoned at the deadline.
	for i, w := range workers {
		if received[i] {
			continue
		}
		d.log.Warn("worker abandoned at batch deadline",
			zap.String("worker", w.ID()),
			zap.Duration("deadline", d.deadline))
		results[i] = worker.ErrorResult(w, spec, worker.FailUpstream, "batch deadline exceeded", d.deadline)
		d.emit(ProgressEvent{WorkerID: w.ID(), Status: ProgressFailed, Message: "batch deadline exceeded"})
	}

	return results
}

// invoke shields the dispatcher from Worker implementations that violate the
// no-panic contract. BaseWorker already recovers internally; this is the
// boundary for everything else.
func (d *Dispatcher) invoke(ctx context.Context, w worker.Worker, spec listing.ProductSpec) (res worker.Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("worker panicked past its own boundary",
				zap.String("worker", w.ID()), zap.Any("panic", r))
			res = worker.ErrorResult(w, spec, worker.FailPanic, fmt.Sprint(r), time.Since(start))
		}
	}()
	return w.Invoke(ctx, spec)
}

func (d *Dispatcher) emitOutcome(res worker.Result) {
	if res.Status == worker.StatusError {
		msg := ""
		if len(res.Notes) > 0 {
			msg = res.Notes[0]
		}
		d.emit(ProgressEvent{WorkerID: res.WorkerID, Status: ProgressFailed, Message: msg})
		return
	}
	d.emit(ProgressEvent{WorkerID: res.WorkerID, Status: ProgressComplete})
}

func (d *Dispatcher) emit(ev ProgressEvent) {
	if d.onProgress != nil {
		d.onProgress(ev)
	}
}
