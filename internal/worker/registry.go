package worker

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/merchkit/listsmith/internal/llm"
)

// Factory constructs a Worker bound to a backend client.
type Factory func(client llm.Client, log *zap.Logger) Worker

// Registry maps worker ids to their factory constructors.
type Registry struct {
	mu        sync.Mutex
	factories map[string]Factory
	order     []string
}

// NewRegistry creates a Registry pre-registered with all specialist workers.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register(IDCopywriter, func(c llm.Client, l *zap.Logger) Worker { return NewCopywriter(c, l) })
	r.Register(IDValueProp, func(c llm.Client, l *zap.Logger) Worker { return NewValueProp(c, l) })
	r.Register(IDDescription, func(c llm.Client, l *zap.Logger) Worker { return NewDescription(c, l) })
	r.Register(IDSEO, func(c llm.Client, l *zap.Logger) Worker { return NewSEO(c, l) })
	return r
}

// Register adds a factory under id. Re-registering an id replaces the factory
// but keeps its original position in the spawn order.
func (r *Registry) Register(id string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[id]; !exists {
		r.order = append(r.order, id)
	}
	r.factories[id] = factory
}

// Spawn creates a single worker by id.
func (r *Registry) Spawn(id string, client llm.Client, log *zap.Logger) (Worker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	factory, ok := r.factories[id]
	if !ok {
		return nil, fmt.Errorf("no factory registered for worker %q", id)
	}
	return factory(client, log), nil
}

// SpawnAll creates every registered worker in registration order. The order is
// deterministic so batch composition is stable across runs.
func (r *Registry) SpawnAll(client llm.Client, log *zap.Logger) []Worker {
	r.mu.Lock()
	defer r.mu.Unlock()
	workers := make([]Worker, 0, len(r.order))
	for _, id := range r.order {
		workers = append(workers, r.factories[id](client, log))
	}
	return workers
}

// IDs returns the registered worker ids in registration order.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
