// Package llm abstracts the shared generative text backend. All callers must
// treat the backend as potentially slow, failing, or producing unparseable
// text; it supports concurrent in-flight calls without external locking.
package llm

import "context"

// Prompt is one generation request.
type Prompt struct {
	// System sets the persona/instructions for the call.
	System string

	// User is the task-specific prompt body.
	User string

	// Temperature overrides the client default when non-zero.
	Temperature float64
}

// Client is the generative backend contract, implemented by the OpenAI client
// and by scripted test doubles.
type Client interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// Settings holds backend configuration for concrete implementations.
type Settings struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
}
