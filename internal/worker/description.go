package worker

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/merchkit/listsmith/internal/listing"
	"github.com/merchkit/listsmith/internal/llm"
)

const descriptionSchema = `{
	"type": "object",
	"required": ["description"],
	"properties": {
		"description":     {"type": "string", "minLength": 1},
		"opening_hook":    {"type": "string"},
		"call_to_action":  {"type": "string"},
		"notes":           {"type": "array", "items": {"type": "string"}},
		"recommendations": {"type": "array", "items": {"type": "string"}},
		"confidence":      {"type": "number"}
	}
}`

const descriptionSystem = "You are a product storytelling specialist. You write structured " +
	"long-form product descriptions: opening hook, product story, expanded benefits, use-case " +
	"scenarios, and a closing call to action. Respond with a single JSON object only."

// NewDescription builds the long-form description specialist, the first
// priority source for the description field.
func NewDescription(client llm.Client, log *zap.Logger) *BaseWorker {
	return NewBaseWorker(Config{
		ID:         IDDescription,
		Client:     client,
		Confidence: 0.8,
		Schema:     descriptionSchema,
		Log:        log,
		Prompt: func(spec listing.ProductSpec) llm.Prompt {
			var b strings.Builder
			fmt.Fprintf(&b, "Write the full product description.\n\n%s\n", describeSpec(spec))
			b.WriteString(`
Respond in JSON:
{
  "description": "the complete assembled description",
  "opening_hook": "first paragraph",
  "call_to_action": "closing line",
  "confidence": 0.0
}`)
			return llm.Prompt{System: descriptionSystem, User: b.String(), Temperature: 0.7}
		},
		Fallback: func(spec listing.ProductSpec) map[string]any {
			return map[string]any{"description": listing.DefaultDescription(spec)}
		},
	})
}
