package worker

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/merchkit/listsmith/internal/listing"
	"github.com/merchkit/listsmith/internal/llm"
)

// Stable worker identities referenced by the merge precedence table.
const (
	IDCopywriter  = "copywriter"
	IDDescription = "description"
	IDSEO         = "seo"
	IDValueProp   = "value_prop"
)

const copywriterSchema = `{
	"type": "object",
	"required": ["title", "bullet_points", "description"],
	"properties": {
		"title":           {"type": "string", "minLength": 1},
		"bullet_points":   {"type": "array", "items": {"type": "string"}, "minItems": 1, "maxItems": 5},
		"description":     {"type": "string", "minLength": 1},
		"backend_keywords":{"type": "array", "items": {"type": "string"}},
		"notes":           {"type": "array", "items": {"type": "string"}},
		"recommendations": {"type": "array", "items": {"type": "string"}},
		"confidence":      {"type": "number"}
	}
}`

const copywriterSystem = "You are an expert e-commerce copywriter. You write conversion-focused " +
	"listing copy that respects marketplace limits (title 200 chars, 5 bullet points, " +
	"description 2000 chars). Respond with a single JSON object only."

// NewCopywriter builds the general-purpose copy worker. It is the highest
// priority source for the title and the second source for bullets and
// description.
func NewCopywriter(client llm.Client, log *zap.Logger) *BaseWorker {
	return NewBaseWorker(Config{
		ID:         IDCopywriter,
		Client:     client,
		Confidence: 0.85,
		Schema:     copywriterSchema,
		Log:        log,
		Prompt: func(spec listing.ProductSpec) llm.Prompt {
			var b strings.Builder
			fmt.Fprintf(&b, "Write listing copy for this product.\n\n%s\n", describeSpec(spec))
			b.WriteString(`
Respond in JSON:
{
  "title": "optimized title, main keyword in the first 50 characters",
  "bullet_points": ["benefit-led bullet", "..."],
  "description": "persuasive long-form description",
  "backend_keywords": ["hidden search keywords"],
  "recommendations": ["optional improvement suggestions"],
  "confidence": 0.0
}`)
			return llm.Prompt{System: copywriterSystem, User: b.String(), Temperature: 0.7}
		},
		Fallback: func(spec listing.ProductSpec) map[string]any {
			return map[string]any{
				"title":         listing.DefaultTitle(spec),
				"bullet_points": listing.DefaultBulletPoints(spec),
				"description":   listing.DefaultDescription(spec),
			}
		},
	})
}

// describeSpec renders the spec as a prompt block shared by all specialists.
func describeSpec(spec listing.ProductSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "PRODUCT: %s\nCATEGORY: %s\nTARGET CUSTOMER: %s\nVALUE PROPOSITION: %s\n",
		spec.Name, spec.Category, spec.TargetCustomer, spec.ValueProposition)
	if len(spec.Advantages) > 0 {
		fmt.Fprintf(&b, "ADVANTAGES: %s\n", strings.Join(spec.Advantages, "; "))
	}
	if len(spec.UseCases) > 0 {
		fmt.Fprintf(&b, "USE CASES: %s\n", strings.Join(spec.UseCases, "; "))
	}
	if spec.TargetPrice > 0 {
		fmt.Fprintf(&b, "TARGET PRICE: %.2f\n", spec.TargetPrice)
	}
	if spec.RawSpecs != "" {
		fmt.Fprintf(&b, "SPECIFICATIONS: %s\n", spec.RawSpecs)
	}
	if len(spec.Keywords) > 0 {
		fmt.Fprintf(&b, "TARGET KEYWORDS: %s\n", strings.Join(spec.Keywords, ", "))
	}
	return b.String()
}
