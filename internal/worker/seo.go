package worker

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/merchkit/listsmith/internal/listing"
	"github.com/merchkit/listsmith/internal/llm"
)

const seoSchema = `{
	"type": "object",
	"required": ["search_terms", "backend_keywords"],
	"properties": {
		"search_terms":     {"type": "array", "items": {"type": "string"}, "minItems": 1},
		"backend_keywords":  {"type": "array", "items": {"type": "string"}, "minItems": 1},
		"long_tail":         {"type": "array", "items": {"type": "string"}},
		"notes":             {"type": "array", "items": {"type": "string"}},
		"recommendations":   {"type": "array", "items": {"type": "string"}},
		"confidence":        {"type": "number"}
	}
}`

const seoSystem = "You are a marketplace SEO strategist. You produce front-end search terms " +
	"and hidden backend keywords, avoiding duplication between the two sets. " +
	"Respond with a single JSON object only."

// NewSEO builds the keyword specialist, the sole priority source for
// search_terms and first for backend_keywords.
func NewSEO(client llm.Client, log *zap.Logger) *BaseWorker {
	return NewBaseWorker(Config{
		ID:         IDSEO,
		Client:     client,
		Confidence: 0.75,
		Schema:     seoSchema,
		Log:        log,
		Prompt: func(spec listing.ProductSpec) llm.Prompt {
			var b strings.Builder
			fmt.Fprintf(&b, "Produce the keyword strategy for this product.\n\n%s\n", describeSpec(spec))
			b.WriteString(`
Respond in JSON:
{
  "search_terms": ["up to 10 customer-facing search terms"],
  "backend_keywords": ["up to 20 hidden keywords"],
  "long_tail": ["optional long-tail phrases"],
  "confidence": 0.0
}`)
			return llm.Prompt{System: seoSystem, User: b.String(), Temperature: 0.5}
		},
		Fallback: func(spec listing.ProductSpec) map[string]any {
			return map[string]any{
				"search_terms":     listing.DefaultSearchTerms(spec),
				"backend_keywords": listing.DefaultBackendKeywords(spec),
			}
		},
	})
}
