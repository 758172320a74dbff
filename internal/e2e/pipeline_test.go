//go:build e2e

// Package e2e exercises the whole stack offline: batch generation through the
// orchestrator, then the full editing session lifecycle, against the scripted
// mock backend.
package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/merchkit/listsmith/internal/listing"
	"github.com/merchkit/listsmith/internal/llm"
	"github.com/merchkit/listsmith/internal/orchestrator"
	"github.com/merchkit/listsmith/internal/session"
	"github.com/merchkit/listsmith/internal/worker"
)

// combinedResponse satisfies every specialist schema (none of them forbids
// extra keys) and the review outcome schema in one payload, so a single
// default response drives all backend calls.
const combinedResponse = `{
	"title": "Voyager Travel Mug - Leakproof, 12h Hot",
	"bullet_points": ["Leakproof lid you can trust in a laptop bag", "Keeps coffee hot for 12 hours"],
	"description": "The travel mug for long commutes.",
	"search_terms": ["travel mug", "insulated mug"],
	"backend_keywords": ["leakproof", "commuter"],
	"confidence": 0.8,
	"field_overrides": {"description": "The travel mug for long commutes, tested on 5,000 rides."},
	"quality_scores": {"persuasion": 8, "seo": 7}
}`

func TestBatchAndSessionLifecycle(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	log := zaptest.NewLogger(t)
	client := &llm.MockClient{Default: combinedResponse}
	spec := listing.ProductSpec{
		Name:             "Voyager Travel Mug",
		Category:         "kitchen",
		ValueProposition: "Coffee that stays hot from door to desk",
		Advantages:       []string{"Leakproof lid", "12h heat retention"},
		Keywords:         []string{"travel mug"},
	}

	// Batch generation.
	workers := worker.NewRegistry().SpawnAll(client, log)
	runner := orchestrator.NewRunner(workers, client, orchestrator.Options{
		Deadline: 30 * time.Second,
		Log:      log,
	})
	defer runner.Close()

	merged, results := runner.RunBatch(ctx, spec)
	require.Len(t, results, 4)
	for _, res := range results {
		assert.Equal(t, worker.StatusSuccess, res.Status, res.WorkerID)
	}

	assert.Equal(t, "Voyager Travel Mug - Leakproof, 12h Hot", merged.Title)
	assert.Equal(t, worker.IDCopywriter, merged.Provenance[listing.FieldTitle])
	assert.Equal(t, worker.IDSEO, merged.Provenance[listing.FieldSearchTerms])
	assert.InDelta(t, 0.8, merged.Confidence, 1e-9)

	// Review override landed on the description.
	require.True(t, merged.ReviewApplied)
	assert.Contains(t, merged.Description, "5,000 rides")
	assert.Equal(t, "review", merged.Provenance[listing.FieldDescription])
	assert.Equal(t, map[string]float64{"persuasion": 8, "seo": 7}, merged.QualityScores)

	// Session lifecycle.
	suggestions := session.BuildSuggestions(merged, spec)
	require.NotEmpty(t, suggestions)

	mgr := session.NewManager(
		session.NewMemoryStore(time.Hour),
		session.NewLLMRegenerator(client, log),
		log,
	)
	id, err := mgr.Create(ctx, merged, suggestions)
	require.NoError(t, err)

	sess, err := mgr.ApplyAll(ctx, id)
	require.NoError(t, err)
	assert.Len(t, sess.Applied, len(suggestions))
	assert.NotEqual(t, sess.Original, sess.Current)

	// Regeneration rewrites only the target suggestion. The combined response
	// carries no new_content, so the deterministic fallback transform is used.
	target := suggestions[0]
	sess, err = mgr.Regenerate(ctx, id, target.ID, session.RegenAlternative)
	require.NoError(t, err)
	regenerated, ok := func() (*session.Suggestion, bool) {
		for i := range sess.Suggestions {
			if sess.Suggestions[i].ID == target.ID {
				return &sess.Suggestions[i], true
			}
		}
		return nil, false
	}()
	require.True(t, ok)
	assert.True(t, regenerated.Regenerated)
	assert.NotEqual(t, target.Content, regenerated.Content)

	// Revert restores the reviewed listing exactly.
	sess, err = mgr.Revert(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, sess.Original, sess.Current)
	assert.Empty(t, sess.Applied)
	assert.Contains(t, sess.Current.Description, "5,000 rides")
}

func TestBatchDegradesWhenBackendIsDown(t *testing.T) {
	ctx := context.Background()
	log := zaptest.NewLogger(t)
	client := &llm.MockClient{Default: "complete nonsense, no json anywhere"}
	spec := listing.ProductSpec{Name: "Voyager Travel Mug", Keywords: []string{"travel mug"}}

	workers := worker.NewRegistry().SpawnAll(client, log)
	runner := orchestrator.NewRunner(workers, client, orchestrator.Options{
		Deadline: 10 * time.Second,
		Log:      log,
	})
	defer runner.Close()

	merged, results := runner.RunBatch(ctx, spec)
	require.Len(t, results, 4)

	for _, field := range listing.Fields {
		assert.Equal(t, listing.ProvenanceDefault, merged.Provenance[field])
	}
	assert.Contains(t, merged.Title, "Voyager Travel Mug")
	assert.Equal(t, 0.5, merged.Confidence)
	assert.False(t, merged.ReviewApplied)
}
