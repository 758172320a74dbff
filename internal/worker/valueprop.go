package worker

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/merchkit/listsmith/internal/listing"
	"github.com/merchkit/listsmith/internal/llm"
)

const valuePropSchema = `{
	"type": "object",
	"required": ["bullet_points"],
	"properties": {
		"bullet_points":   {"type": "array", "items": {"type": "string"}, "minItems": 1, "maxItems": 5},
		"title":           {"type": "string"},
		"core_value":      {"type": "string"},
		"notes":           {"type": "array", "items": {"type": "string"}},
		"recommendations": {"type": "array", "items": {"type": "string"}},
		"confidence":      {"type": "number"}
	}
}`

const valuePropSystem = "You are a value proposition analyst. You distill a product's core value " +
	"and primary benefits into benefit-led bullet points, the strongest first. " +
	"Respond with a single JSON object only."

// NewValueProp builds the benefits specialist, the first priority source for
// bullet_points and the fallback source for the title.
func NewValueProp(client llm.Client, log *zap.Logger) *BaseWorker {
	return NewBaseWorker(Config{
		ID:         IDValueProp,
		Client:     client,
		Confidence: 0.8,
		Schema:     valuePropSchema,
		Log:        log,
		Prompt: func(spec listing.ProductSpec) llm.Prompt {
			var b strings.Builder
			fmt.Fprintf(&b, "Distill this product's value proposition into bullet points.\n\n%s\n", describeSpec(spec))
			b.WriteString(`
Respond in JSON:
{
  "bullet_points": ["core value proposition first", "then primary benefits"],
  "title": "optional benefit-led title variant",
  "core_value": "one-line core value",
  "confidence": 0.0
}`)
			return llm.Prompt{System: valuePropSystem, User: b.String(), Temperature: 0.6}
		},
		Fallback: func(spec listing.ProductSpec) map[string]any {
			return map[string]any{"bullet_points": listing.DefaultBulletPoints(spec)}
		},
	})
}
