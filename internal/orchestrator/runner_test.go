package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/merchkit/listsmith/internal/listing"
	"github.com/merchkit/listsmith/internal/llm"
	"github.com/merchkit/listsmith/internal/worker"
)

func TestRunner_PartialFailureStillProducesCompleteListing(t *testing.T) {
	workers := []worker.Worker{
		&stubWorker{id: worker.IDCopywriter, conf: 0.9, payload: map[string]any{
			"title": "Aurora Lamp - Flicker-Free", "bullet_points": []any{"copy bullet"}, "description": "copy desc",
		}},
		&stubWorker{id: worker.IDValueProp, conf: 0.7, payload: map[string]any{
			"title": "vp title", "bullet_points": []any{"vp bullet"},
		}},
		&stubWorker{id: worker.IDDescription, block: true},
		&stubWorker{id: worker.IDSEO, block: true},
	}

	client := &llm.MockClient{Default: `{"field_overrides": {"title": null}}`}
	r := NewRunner(workers, client, Options{
		Deadline: 100 * time.Millisecond,
		Log:      zaptest.NewLogger(t),
	})
	defer r.Close()

	merged, results := r.RunBatch(context.Background(), batchSpec())

	require.NotNil(t, merged)
	require.Len(t, results, len(workers))

	assert.Equal(t, "Aurora Lamp - Flicker-Free", merged.Title)
	assert.Equal(t, []string{"vp bullet"}, merged.BulletPoints)
	assert.Equal(t, "copy desc", merged.Description)
	assert.Equal(t, listing.ProvenanceDefault, merged.Provenance[listing.FieldSearchTerms])

	// Two successes at 0.9 and 0.7 average to 0.8.
	assert.InDelta(t, 0.8, merged.Confidence, 1e-9)
	assert.True(t, merged.ReviewApplied)
}

func TestRunner_SkipReview(t *testing.T) {
	workers := []worker.Worker{
		&stubWorker{id: worker.IDCopywriter, conf: 0.9, payload: map[string]any{
			"title": "T", "bullet_points": []any{"b"}, "description": "d",
		}},
	}

	// The client would apply an override if review ran.
	client := &llm.MockClient{Default: `{"field_overrides": {"title": "REVIEWED"}}`}
	r := NewRunner(workers, client, Options{SkipReview: true, Log: zaptest.NewLogger(t)})
	defer r.Close()

	merged, _ := r.RunBatch(context.Background(), batchSpec())

	assert.Equal(t, "T", merged.Title)
	assert.False(t, merged.ReviewApplied)
	assert.Empty(t, client.Calls(), "review backend is never consulted when skipped")
}

func TestRunner_TotalFailureFallsBackToDefaultsAndFloor(t *testing.T) {
	workers := []worker.Worker{
		&stubWorker{id: worker.IDCopywriter, status: worker.StatusError},
		&stubWorker{id: worker.IDSEO, panics: true},
	}

	r := NewRunner(workers, &llm.MockClient{Err: errors.New("backend down")}, Options{
		Deadline: time.Second,
		Log:      zaptest.NewLogger(t),
	})
	defer r.Close()

	spec := batchSpec()
	merged, results := r.RunBatch(context.Background(), spec)

	require.Len(t, results, 2)
	assert.Contains(t, merged.Title, spec.Name)
	assert.Equal(t, 0.5, merged.Confidence)
	assert.False(t, merged.ReviewApplied)
	for _, field := range listing.Fields {
		assert.Equal(t, listing.ProvenanceDefault, merged.Provenance[field])
	}
}

func TestRunner_ProgressChannelDeliversEvents(t *testing.T) {
	workers := []worker.Worker{
		&stubWorker{id: worker.IDCopywriter, conf: 0.9, payload: map[string]any{
			"title": "T", "bullet_points": []any{"b"}, "description": "d",
		}},
	}

	r := NewRunner(workers, &llm.MockClient{Default: `{"field_overrides": {}}`}, Options{
		SkipReview: true,
		Log:        zaptest.NewLogger(t),
	})

	events := r.Progress()
	done := make(chan []ProgressEvent, 1)
	go func() {
		var got []ProgressEvent
		for ev := range events {
			got = append(got, ev)
		}
		done <- got
	}()

	r.RunBatch(context.Background(), batchSpec())
	r.Close()

	got := <-done
	require.NotEmpty(t, got)
	last := got[len(got)-1]
	assert.Equal(t, worker.IDCopywriter, last.WorkerID)
	assert.Equal(t, ProgressComplete, last.Status)
}
