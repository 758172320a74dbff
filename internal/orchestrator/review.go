package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/merchkit/listsmith/internal/listing"
	"github.com/merchkit/listsmith/internal/llm"
	"github.com/merchkit/listsmith/internal/worker"
)

// ReviewOutcome is the validated result of the review pass. A nil entry in
// FieldOverrides (or an absent field) means "no change" for that field.
type ReviewOutcome struct {
	Applied        bool
	FieldOverrides map[string]any
	QualityScores  map[string]float64
	Confidence     *float64
}

const reviewSchema = `{
	"type": "object",
	"required": ["field_overrides"],
	"properties": {
		"field_overrides": {
			"type": "object",
			"properties": {
				"title":            {"type": ["string", "null"]},
				"description":      {"type": ["string", "null"]},
				"bullet_points":    {"type": ["array", "null"], "items": {"type": "string"}, "maxItems": 5},
				"search_terms":     {"type": ["array", "null"], "items": {"type": "string"}},
				"backend_keywords": {"type": ["array", "null"], "items": {"type": "string"}}
			},
			"additionalProperties": false
		},
		"quality_scores": {
			"type": "object",
			"additionalProperties": {"type": "number", "minimum": 0, "maximum": 10}
		},
		"confidence": {"type": "number"}
	}
}`

const reviewSystem = "You are a marketing review specialist. You audit a finished product " +
	"listing against the raw specialist outputs and override only the fields you can " +
	"concretely improve, scoring the listing per marketing dimension. " +
	"Respond with a single JSON object only."

// Reviewer runs the second, dependent pass over a merged listing. Review is
// strictly additive: any failure degrades to "no changes applied" and never
// aborts the batch.
type Reviewer struct {
	client llm.Client
	schema *gojsonschema.Schema
	log    *zap.Logger
}

// NewReviewer builds a Reviewer on the shared backend client.
func NewReviewer(client llm.Client, log *zap.Logger) *Reviewer {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(reviewSchema))
	if err != nil {
		panic(fmt.Sprintf("reviewer: invalid outcome schema: %v", err))
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Reviewer{client: client, schema: schema, log: log.Named("reviewer")}
}

// Review calls the backend once with the entire merged listing plus all raw
// successful payloads. A backend failure or structurally invalid outcome
// yields Applied=false with no overrides.
func (r *Reviewer) Review(ctx context.Context, merged *listing.MergedListing, raw map[string]map[string]any) ReviewOutcome {
	prompt, err := r.buildPrompt(merged, raw)
	if err != nil {
		r.log.Warn("review prompt construction failed", zap.Error(err))
		return ReviewOutcome{}
	}

	out, err := r.client.Generate(ctx, prompt)
	if err != nil {
		r.log.Warn("review call failed, keeping merged listing", zap.Error(err))
		return ReviewOutcome{}
	}

	payload, err := worker.ParsePayload(out)
	if err != nil {
		r.log.Warn("review output not parseable, keeping merged listing", zap.Error(err))
		return ReviewOutcome{}
	}

	valid, err := r.schema.Validate(gojsonschema.NewGoLoader(payload))
	if err != nil || !valid.Valid() {
		r.log.Warn("review outcome failed validation, keeping merged listing",
			zap.Error(err), zap.Any("violations", validationMessages(valid)))
		return ReviewOutcome{}
	}

	outcome := ReviewOutcome{Applied: true, FieldOverrides: map[string]any{}}
	if overrides, ok := payload["field_overrides"].(map[string]any); ok {
		outcome.FieldOverrides = overrides
	}
	if scores, ok := payload["quality_scores"].(map[string]any); ok {
		outcome.QualityScores = make(map[string]float64, len(scores))
		for dim, v := range scores {
			if f, ok := v.(float64); ok {
				outcome.QualityScores[dim] = f
			}
		}
	}
	if c, ok := payload["confidence"].(float64); ok {
		clamped := worker.Clamp01(c)
		outcome.Confidence = &clamped
	}
	return outcome
}

// Apply mutates merged in place with every non-nil override, records quality
// scores, and adopts the review's own confidence estimate when present.
func (o ReviewOutcome) Apply(merged *listing.MergedListing) {
	merged.ReviewApplied = o.Applied
	if !o.Applied {
		return
	}
	for name, value := range o.FieldOverrides {
		if value == nil {
			continue
		}
		field := listing.Field(name)
		if emptyValue(value) {
			continue
		}
		setField(merged, field, value)
		merged.Provenance[field] = "review"
	}
	if len(o.QualityScores) > 0 {
		merged.QualityScores = o.QualityScores
	}
	if o.Confidence != nil {
		merged.Confidence = *o.Confidence
	}
}

func (r *Reviewer) buildPrompt(merged *listing.MergedListing, raw map[string]map[string]any) (llm.Prompt, error) {
	mergedJSON, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return llm.Prompt{}, fmt.Errorf("marshal merged listing: %w", err)
	}
	rawJSON, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return llm.Prompt{}, fmt.Errorf("marshal raw payloads: %w", err)
	}

	var b strings.Builder
	b.WriteString("Review this merged listing against the raw specialist outputs.\n\nMERGED LISTING:\n")
	b.Write(mergedJSON)
	b.WriteString("\n\nRAW SPECIALIST PAYLOADS:\n")
	b.Write(rawJSON)
	b.WriteString(`

Respond in JSON:
{
  "field_overrides": {
    "title": null,
    "description": null,
    "bullet_points": null,
    "search_terms": null,
    "backend_keywords": null
  },
  "quality_scores": {"persuasion": 0, "seo": 0, "mobile": 0, "trust": 0},
  "confidence": 0.0
}

Set an override only when your replacement is concretely better; otherwise leave it null.`)
	return llm.Prompt{System: reviewSystem, User: b.String(), Temperature: 0.4}, nil
}

// validationMessages extracts violation strings; valid may be nil when
// Validate itself errored.
func validationMessages(valid *gojsonschema.Result) []string {
	if valid == nil {
		return nil
	}
	msgs := make([]string, 0, len(valid.Errors()))
	for _, e := range valid.Errors() {
		msgs = append(msgs, e.String())
	}
	return msgs
}
