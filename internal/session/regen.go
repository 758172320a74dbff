package session

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/merchkit/listsmith/internal/listing"
	"github.com/merchkit/listsmith/internal/llm"
	"github.com/merchkit/listsmith/internal/worker"
)

// RegenKind selects how a suggestion's content is rewritten.
type RegenKind string

const (
	RegenImprove     RegenKind = "improve"
	RegenAlternative RegenKind = "alternative"
	RegenShorter     RegenKind = "shorter"
	RegenLonger      RegenKind = "longer"
)

// Valid reports whether k is a known regeneration kind.
func (k RegenKind) Valid() bool {
	switch k {
	case RegenImprove, RegenAlternative, RegenShorter, RegenLonger:
		return true
	}
	return false
}

// Regenerator produces replacement content for one suggestion. An error from
// Regenerate is never surfaced by the manager — it falls back to
// FallbackContent so regeneration always yields some new content.
type Regenerator interface {
	Regenerate(ctx context.Context, s Suggestion, original *listing.MergedListing, kind RegenKind) (content, reason string, err error)
}

// Compile-time check.
var _ Regenerator = (*LLMRegenerator)(nil)

// LLMRegenerator rewrites suggestion content through the generative backend.
type LLMRegenerator struct {
	client llm.Client
	log    *zap.Logger
}

// NewLLMRegenerator builds a Regenerator on the shared backend client.
func NewLLMRegenerator(client llm.Client, log *zap.Logger) *LLMRegenerator {
	if log == nil {
		log = zap.NewNop()
	}
	return &LLMRegenerator{client: client, log: log.Named("regenerator")}
}

const regenSystem = "You are an expert e-commerce copywriter. You rewrite a single piece of " +
	"listing copy according to the requested variation. The new content must be notably " +
	"different from the original. Respond with a single JSON object only."

// Regenerate calls the backend with a kind-specific rewrite instruction.
func (r *LLMRegenerator) Regenerate(ctx context.Context, s Suggestion, original *listing.MergedListing, kind RegenKind) (string, string, error) {
	out, err := r.client.Generate(ctx, r.buildPrompt(s, original, kind))
	if err != nil {
		return "", "", fmt.Errorf("regenerate %s: %w", s.ID, err)
	}
	payload, err := worker.ParsePayload(out)
	if err != nil {
		return "", "", fmt.Errorf("regenerate %s: %w", s.ID, err)
	}
	content, _ := payload["new_content"].(string)
	if strings.TrimSpace(content) == "" {
		return "", "", fmt.Errorf("regenerate %s: empty new_content", s.ID)
	}
	reason, _ := payload["reason"].(string)
	if reason == "" {
		reason = fmt.Sprintf("regenerated (%s)", kind)
	}
	return content, reason, nil
}

func (r *LLMRegenerator) buildPrompt(s Suggestion, original *listing.MergedListing, kind RegenKind) llm.Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Rewrite this %s content.\n\nCURRENT CONTENT:\n%q\n\nVARIATION: %s\n\n", s.Field, s.Content, kind)

	switch kind {
	case RegenImprove:
		b.WriteString("Keep the core message but make it more persuasive: stronger power words, better flow, clearer benefit.\n")
	case RegenAlternative:
		b.WriteString("Take a completely different angle while keeping the benefit: different tone, different framing.\n")
	case RegenShorter:
		b.WriteString("Cut the length while keeping the impact. Condense to the essentials.\n")
	case RegenLonger:
		b.WriteString("Expand with more specific benefits, concrete details, or use-case examples.\n")
	}

	fmt.Fprintf(&b, "\nPRODUCT CONTEXT:\nTitle: %s\nDescription (excerpt): %.200s\n", original.Title, original.Description)
	b.WriteString(`
Respond in JSON:
{"new_content": "the rewritten content", "reason": "what changed and why"}`)
	return llm.Prompt{System: regenSystem, User: b.String(), Temperature: 0.7}
}

// FallbackContent is the deterministic transformation applied when the
// backend cannot regenerate: regeneration must always produce some new
// content rather than failing the operation.
func FallbackContent(content string, kind RegenKind) string {
	switch kind {
	case RegenImprove:
		return "Premium " + content
	case RegenAlternative:
		return "A fresh take: " + content
	case RegenShorter:
		words := strings.Fields(content)
		if len(words) <= 1 {
			return content + "..."
		}
		return strings.Join(words[:len(words)/2], " ") + "..."
	case RegenLonger:
		return content + " - Backed by our satisfaction guarantee."
	default:
		return content
	}
}
