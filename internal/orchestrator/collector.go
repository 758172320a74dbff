package orchestrator

import (
	"github.com/merchkit/listsmith/internal/listing"
	"github.com/merchkit/listsmith/internal/worker"
)

// Collection is the fanned-in view of one batch: exactly one Result per
// requested worker, partitioned by outcome.
type Collection struct {
	// Results holds one entry per requested worker, in worker order.
	Results []worker.Result

	// Successful and Degraded partition Results by status. Partial results
	// count as degraded: the merger only trusts full successes.
	Successful []worker.Result
	Degraded   []worker.Result

	byWorker map[string]worker.Result
}

// Collect guarantees completeness: every requested worker gets exactly one
// Result, with gaps (a worker the dispatcher somehow produced nothing for)
// filled by synthesized errors. Duplicate results for one worker keep the
// first occurrence.
func Collect(spec listing.ProductSpec, workers []worker.Worker, results []worker.Result) *Collection {
	byWorker := make(map[string]worker.Result, len(workers))
	for _, res := range results {
		if _, dup := byWorker[res.WorkerID]; !dup {
			byWorker[res.WorkerID] = res
		}
	}

	c := &Collection{
		Results:  make([]worker.Result, 0, len(workers)),
		byWorker: make(map[string]worker.Result, len(workers)),
	}
	for _, w := range workers {
		res, ok := byWorker[w.ID()]
		if !ok {
			res = worker.ErrorResult(w, spec, worker.FailUpstream, "no result produced", 0)
		}
		c.Results = append(c.Results, res)
		c.byWorker[w.ID()] = res
		if res.Status == worker.StatusSuccess {
			c.Successful = append(c.Successful, res)
		} else {
			c.Degraded = append(c.Degraded, res)
		}
	}
	return c
}

// ByWorker returns the Result for a worker id.
func (c *Collection) ByWorker(id string) (worker.Result, bool) {
	res, ok := c.byWorker[id]
	return res, ok
}

// SuccessfulPayloads returns the raw payloads of successful workers keyed by
// worker id, the input to the review stage.
func (c *Collection) SuccessfulPayloads() map[string]map[string]any {
	out := make(map[string]map[string]any, len(c.Successful))
	for _, res := range c.Successful {
		out[res.WorkerID] = res.Payload
	}
	return out
}
