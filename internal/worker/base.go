package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/merchkit/listsmith/internal/listing"
	"github.com/merchkit/listsmith/internal/llm"
)

// Compile-time check.
var _ Worker = (*BaseWorker)(nil)

// PromptFunc builds the backend prompt for one spec.
type PromptFunc func(spec listing.ProductSpec) llm.Prompt

// FallbackFunc builds the deterministic payload used when generation fails.
type FallbackFunc func(spec listing.ProductSpec) map[string]any

// BaseWorker implements the shared invoke pipeline every specialist uses:
// build prompt, call the backend, extract the JSON payload, validate it
// against the worker's schema, and fall back on any failure. Specialists are
// constructed by configuring a BaseWorker rather than embedding it.
type BaseWorker struct {
	id         string
	client     llm.Client
	prompt     PromptFunc
	fallback   FallbackFunc
	schema     *gojsonschema.Schema
	confidence float64 // reported on success unless the payload carries its own
	log        *zap.Logger
}

// Config bundles the pieces a specialist supplies to NewBaseWorker.
type Config struct {
	ID         string
	Client     llm.Client
	Prompt     PromptFunc
	Fallback   FallbackFunc
	Schema     string // JSON schema source for the payload shape
	Confidence float64
	Log        *zap.Logger
}

// NewBaseWorker compiles the payload schema and returns the worker. Schema
// compilation failures are programmer errors and panic at construction time.
func NewBaseWorker(cfg Config) *BaseWorker {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(cfg.Schema))
	if err != nil {
		panic(fmt.Sprintf("worker %s: invalid payload schema: %v", cfg.ID, err))
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &BaseWorker{
		id:         cfg.ID,
		client:     cfg.Client,
		prompt:     cfg.Prompt,
		fallback:   cfg.Fallback,
		schema:     schema,
		confidence: cfg.Confidence,
		log:        log.With(zap.String("worker", cfg.ID)),
	}
}

// ID returns the worker's stable identity.
func (w *BaseWorker) ID() string { return w.id }

// Fallback builds the deterministic failure payload.
func (w *BaseWorker) Fallback(spec listing.ProductSpec) map[string]any {
	return w.fallback(spec)
}

// Invoke runs the generate/parse/validate pipeline. It never returns an
// error and never lets a panic escape.
func (w *BaseWorker) Invoke(ctx context.Context, spec listing.ProductSpec) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("worker panicked", zap.Any("panic", r))
			res = ErrorResult(w, spec, FailPanic, fmt.Sprint(r), time.Since(start))
		}
	}()

	raw, err := w.client.Generate(ctx, w.prompt(spec))
	if err != nil {
		w.log.Warn("backend call failed", zap.Error(err))
		return ErrorResult(w, spec, FailUpstream, err.Error(), time.Since(start))
	}

	payload, err := ParsePayload(raw)
	if err != nil {
		w.log.Warn("backend output not parseable", zap.Error(err))
		return ErrorResult(w, spec, FailUnparseable, err.Error(), time.Since(start))
	}

	if err := w.validate(payload); err != nil {
		w.log.Warn("payload failed schema validation", zap.Error(err))
		return ErrorResult(w, spec, FailUnparseable, err.Error(), time.Since(start))
	}

	res = Result{
		WorkerID:        w.id,
		Status:          StatusSuccess,
		Confidence:      w.confidence,
		Payload:         payload,
		Notes:           stringSlice(payload["notes"]),
		Recommendations: stringSlice(payload["recommendations"]),
		Elapsed:         time.Since(start),
	}
	if c, ok := payload["confidence"].(float64); ok {
		res.Confidence = Clamp01(c)
	}
	w.log.Debug("worker completed",
		zap.Float64("confidence", res.Confidence),
		zap.Duration("elapsed", res.Elapsed))
	return res
}

// validate checks the payload against the worker's compiled schema.
func (w *BaseWorker) validate(payload map[string]any) error {
	result, err := w.schema.Validate(gojsonschema.NewGoLoader(payload))
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("payload schema violations: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// ParsePayload pulls the first JSON object out of raw backend text. Models
// routinely wrap JSON in prose or code fences, so everything outside the
// outermost braces is discarded.
func ParsePayload(raw string) (map[string]any, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in output (%d bytes)", len(raw))
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return payload, nil
}

// stringSlice coerces a decoded JSON value into []string, dropping non-string
// elements. Nil input yields nil.
func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
