package orchestrator

import "github.com/merchkit/listsmith/internal/worker"

// DefaultConfidenceFloor is reported when no worker in a batch succeeded.
const DefaultConfidenceFloor = 0.5

// AggregateConfidence reduces per-worker confidence into one batch score: the
// mean over successful results, or floor when none succeeded. Every input is
// clamped to [0,1] before averaging since individual workers are untrusted,
// and the final value is clamped again.
func AggregateConfidence(successful []worker.Result, floor float64) float64 {
	if len(successful) == 0 {
		return worker.Clamp01(floor)
	}
	var sum float64
	for _, res := range successful {
		sum += res.ClampedConfidence()
	}
	return worker.Clamp01(sum / float64(len(successful)))
}
