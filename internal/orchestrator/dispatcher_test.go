package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merchkit/listsmith/internal/listing"
	"github.com/merchkit/listsmith/internal/worker"
)

// stubWorker is a controllable worker.Worker for orchestrator tests.
type stubWorker struct {
	id      string
	payload map[string]any
	status  worker.Status
	conf    float64
	notes   []string
	recs    []string
	delay   time.Duration
	block   bool // never return until the batch context is canceled
	panics  bool
}

func (s *stubWorker) ID() string { return s.id }

func (s *stubWorker) Fallback(listing.ProductSpec) map[string]any {
	return map[string]any{"title": "fallback " + s.id}
}

func (s *stubWorker) Invoke(ctx context.Context, spec listing.ProductSpec) worker.Result {
	if s.panics {
		panic("stub worker crash")
	}
	if s.block {
		<-ctx.Done()
		return worker.ErrorResult(s, spec, worker.FailUpstream, ctx.Err().Error(), 0)
	}
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return worker.ErrorResult(s, spec, worker.FailUpstream, ctx.Err().Error(), s.delay)
		case <-time.After(s.delay):
		}
	}
	status := s.status
	if status == "" {
		status = worker.StatusSuccess
	}
	return worker.Result{
		WorkerID:        s.id,
		Status:          status,
		Confidence:      s.conf,
		Payload:         s.payload,
		Notes:           s.notes,
		Recommendations: s.recs,
	}
}

func batchSpec() listing.ProductSpec {
	return listing.ProductSpec{
		Name:             "Aurora Desk Lamp",
		Category:         "home_office",
		ValueProposition: "Flicker-free light that adapts to your day",
		Advantages:       []string{"5 color temperatures", "USB-C charging port"},
		Keywords:         []string{"desk lamp", "led lamp"},
	}
}

func TestDispatcher_OneResultPerWorker(t *testing.T) {
	workers := []worker.Worker{
		&stubWorker{id: "a", payload: map[string]any{"title": "A"}, conf: 0.8},
		&stubWorker{id: "b", payload: map[string]any{"title": "B"}, conf: 0.7},
		&stubWorker{id: "c", payload: map[string]any{"title": "C"}, conf: 0.6},
	}

	d := NewDispatcher(time.Second, nil, nil)
	results := d.Dispatch(context.Background(), batchSpec(), workers)

	require.Len(t, results, 3)
	seen := map[string]bool{}
	for i, res := range results {
		assert.Equal(t, workers[i].ID(), res.WorkerID, "results keep worker order")
		assert.False(t, seen[res.WorkerID], "exactly one result per worker")
		seen[res.WorkerID] = true
		assert.Equal(t, worker.StatusSuccess, res.Status)
	}
}

func TestDispatcher_DeadlineAbandonsSlowWorkers(t *testing.T) {
	workers := []worker.Worker{
		&stubWorker{id: "fast", payload: map[string]any{"title": "quick"}, conf: 0.9},
		&stubWorker{id: "stuck-1", block: true},
		&stubWorker{id: "stuck-2", block: true},
	}

	deadline := 100 * time.Millisecond
	d := NewDispatcher(deadline, nil, nil)

	start := time.Now()
	results := d.Dispatch(context.Background(), batchSpec(), workers)
	elapsed := time.Since(start)

	assert.Less(t, elapsed, deadline+500*time.Millisecond, "dispatcher returns within deadline+epsilon")
	require.Len(t, results, 3)

	assert.Equal(t, worker.StatusSuccess, results[0].Status)
	for _, res := range results[1:] {
		assert.Equal(t, worker.StatusError, res.Status)
		assert.Zero(t, res.Confidence)
		assert.Contains(t, res.Payload["title"], "fallback", "abandoned worker carries its own fallback payload")
	}
}

func TestDispatcher_AllWorkersTimeout(t *testing.T) {
	workers := []worker.Worker{
		&stubWorker{id: "w1", block: true},
		&stubWorker{id: "w2", block: true},
	}

	d := NewDispatcher(50*time.Millisecond, nil, nil)
	results := d.Dispatch(context.Background(), batchSpec(), workers)

	require.Len(t, results, 2)
	for _, res := range results {
		assert.Equal(t, worker.StatusError, res.Status)
	}
}

func TestDispatcher_MisbehavingWorkerPanicIsContained(t *testing.T) {
	workers := []worker.Worker{
		&stubWorker{id: "ok", payload: map[string]any{"title": "fine"}, conf: 0.5},
		&stubWorker{id: "crasher", panics: true},
	}

	d := NewDispatcher(time.Second, nil, nil)

	var results []worker.Result
	require.NotPanics(t, func() {
		results = d.Dispatch(context.Background(), batchSpec(), workers)
	})

	require.Len(t, results, 2)
	assert.Equal(t, worker.StatusSuccess, results[0].Status)
	assert.Equal(t, worker.StatusError, results[1].Status)
	require.NotEmpty(t, results[1].Notes)
	assert.Contains(t, results[1].Notes[0], worker.FailPanic)
}

func TestDispatcher_ProgressEventsEmitted(t *testing.T) {
	workers := []worker.Worker{
		&stubWorker{id: "a", payload: map[string]any{"title": "A"}, conf: 0.8},
		&stubWorker{id: "b", status: worker.StatusError},
	}

	var mu sync.Mutex
	var events []ProgressEvent
	onProgress := func(ev ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	}

	d := NewDispatcher(time.Second, onProgress, nil)
	d.Dispatch(context.Background(), batchSpec(), workers)

	mu.Lock()
	defer mu.Unlock()

	statuses := map[string]map[ProgressStatus]bool{}
	for _, ev := range events {
		if statuses[ev.WorkerID] == nil {
			statuses[ev.WorkerID] = map[ProgressStatus]bool{}
		}
		statuses[ev.WorkerID][ev.Status] = true
	}

	require.Contains(t, statuses, "a")
	require.Contains(t, statuses, "b")
	assert.True(t, statuses["a"][ProgressPending])
	assert.True(t, statuses["a"][ProgressWorking])
	assert.True(t, statuses["a"][ProgressComplete])
	assert.True(t, statuses["b"][ProgressFailed])
}
