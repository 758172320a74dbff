package llm

import (
	"context"
	"sync"
)

// Compile-time check.
var _ Client = (*MockClient)(nil)

// MockClient is a scripted Client for local runs and tests. Responses are
// served in registration order per system-prompt key; an unmatched call falls
// through to Default. It is safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	// Default is returned when no scripted response matches.
	Default string

	// Err, when non-nil, is returned by every call.
	Err error

	// Delay, when set, blocks each call until the context expires or the
	// delay channel closes. Used to simulate slow backends.
	Delay <-chan struct{}

	responses map[string][]string
	calls     []Prompt
}

// Script queues a response for calls whose System prompt equals key.
func (m *MockClient) Script(key, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.responses == nil {
		m.responses = make(map[string][]string)
	}
	m.responses[key] = append(m.responses[key], response)
}

// Calls returns a copy of every prompt seen so far.
func (m *MockClient) Calls() []Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Prompt, len(m.calls))
	copy(out, m.calls)
	return out
}

// Generate pops the next scripted response for the prompt's system key.
func (m *MockClient) Generate(ctx context.Context, prompt Prompt) (string, error) {
	if m.Delay != nil {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-m.Delay:
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, prompt)

	if m.Err != nil {
		return "", m.Err
	}
	if queue := m.responses[prompt.System]; len(queue) > 0 {
		resp := queue[0]
		m.responses[prompt.System] = queue[1:]
		return resp, nil
	}
	return m.Default, nil
}
