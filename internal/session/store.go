package session

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL bounds how long an idle session survives in a store. The
// original system kept sessions forever; the TTL closes that leak.
const DefaultTTL = 24 * time.Hour

// Store abstracts session persistence. Implementations must return
// ErrSessionNotFound for unknown or expired ids.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, id string) error
}

// Compile-time check.
var _ Store = (*MemoryStore)(nil)

type memoryEntry struct {
	sess      *Session
	expiresAt time.Time
}

// MemoryStore is the default in-process Store. Entries expire TTL after their
// last Put; expired entries are evicted lazily on access and swept on every
// write.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time // test seam
}

// NewMemoryStore creates a MemoryStore. ttl <= 0 selects DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns a deep copy of the stored session.
func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	entry, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if m.now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, id)
		m.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	return entry.sess.clone(), nil
}

// Put stores a deep copy of sess and refreshes its TTL.
func (m *MemoryStore) Put(_ context.Context, sess *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for id, entry := range m.entries {
		if now.After(entry.expiresAt) {
			delete(m.entries, id)
		}
	}
	m.entries[sess.ID] = memoryEntry{sess: sess.clone(), expiresAt: now.Add(m.ttl)}
	return nil
}

// Delete removes a session; deleting an unknown id is a no-op.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}
