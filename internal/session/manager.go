package session

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/merchkit/listsmith/internal/listing"
)

// Manager owns the session lifecycle and serializes mutations per session id:
// concurrent apply/revert/regenerate calls on one session run one at a time,
// while operations on different sessions proceed independently.
type Manager struct {
	store Store
	regen Regenerator
	log   *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a Manager over the given store. regen may be nil, in
// which case Regenerate always uses the deterministic fallback transform.
func NewManager(store Store, regen Regenerator, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		store: store,
		regen: regen,
		log:   log.Named("session"),
		locks: make(map[string]*sync.Mutex),
	}
}

// Create opens an editing session for a merged listing. Both Original and
// Current are deep copies, so later mutations of the caller's listing never
// leak in.
func (m *Manager) Create(ctx context.Context, merged *listing.MergedListing, suggestions []Suggestion) (string, error) {
	sess := &Session{
		ID:          uuid.NewString(),
		Original:    merged.Clone(),
		Current:     merged.Clone(),
		Suggestions: append([]Suggestion(nil), suggestions...),
		CreatedAt:   time.Now(),
	}
	if err := m.store.Put(ctx, sess); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	m.log.Info("session created",
		zap.String("session", sess.ID),
		zap.Int("suggestions", len(suggestions)))
	return sess.ID, nil
}

// Get returns the full session state.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	return m.store.Get(ctx, id)
}

// Current returns the session's current listing.
func (m *Manager) Current(ctx context.Context, id string) (*listing.MergedListing, error) {
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.Current, nil
}

// Apply writes a suggestion's content (or the edited override, when non-empty)
// into the current listing at the suggestion's declared field and records the
// application with before/after values.
func (m *Manager) Apply(ctx context.Context, id, suggestionID, editedContent string) (*Session, error) {
	return m.update(ctx, id, func(sess *Session) error {
		sugg, ok := sess.suggestion(suggestionID)
		if !ok {
			return ErrSuggestionNotFound
		}
		content := sugg.Content
		if editedContent != "" {
			content = editedContent
		}
		applyOne(sess, *sugg, content)
		return nil
	})
}

// ApplyAll applies every outstanding suggestion in declared order: listing
// field order, then bullet index, then suggestion id. The order is fixed by
// construction, not by suggestion arrival.
func (m *Manager) ApplyAll(ctx context.Context, id string) (*Session, error) {
	return m.update(ctx, id, func(sess *Session) error {
		applied := make(map[string]bool, len(sess.Applied))
		for _, a := range sess.Applied {
			applied[a.SuggestionID] = true
		}

		outstanding := make([]Suggestion, 0, len(sess.Suggestions))
		for _, s := range sess.Suggestions {
			if !applied[s.ID] {
				outstanding = append(outstanding, s)
			}
		}
		sort.SliceStable(outstanding, func(i, j int) bool {
			a, b := outstanding[i], outstanding[j]
			if ra, rb := fieldRank(a.Field), fieldRank(b.Field); ra != rb {
				return ra < rb
			}
			if a.BulletIndex != b.BulletIndex {
				return a.BulletIndex < b.BulletIndex
			}
			return a.ID < b.ID
		})

		for _, s := range outstanding {
			applyOne(sess, s, s.Content)
		}
		return nil
	})
}

// Revert restores the current listing to an exact deep copy of the original
// and clears the applied list.
func (m *Manager) Revert(ctx context.Context, id string) (*Session, error) {
	return m.update(ctx, id, func(sess *Session) error {
		sess.Current = sess.Original.Clone()
		sess.Applied = nil
		return nil
	})
}

// Regenerate rewrites one suggestion's content according to kind. Backend
// failure falls back to a deterministic transform so the operation always
// produces new content. No other suggestion and no listing field changes.
func (m *Manager) Regenerate(ctx context.Context, id, suggestionID string, kind RegenKind) (*Session, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown regeneration type %q", kind)
	}
	return m.update(ctx, id, func(sess *Session) error {
		sugg, ok := sess.suggestion(suggestionID)
		if !ok {
			return ErrSuggestionNotFound
		}

		var content, reason string
		var err error
		if m.regen != nil {
			content, reason, err = m.regen.Regenerate(ctx, *sugg, sess.Original, kind)
		}
		if m.regen == nil || err != nil {
			if err != nil {
				m.log.Warn("regeneration failed, using fallback transform",
					zap.String("session", id),
					zap.String("suggestion", suggestionID),
					zap.Error(err))
			}
			content = FallbackContent(sugg.Content, kind)
			reason = fmt.Sprintf("%s variation generated", kind)
		}

		sugg.Content = content
		sugg.Reason = reason
		sugg.Regenerated = true
		return nil
	})
}

// Delete discards a session.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}

// update runs fn over the session under its per-id lock and persists the
// mutated state. fn errors abort without persisting.
func (m *Manager) update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	lock := m.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	if err := m.store.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("persist session %s: %w", id, err)
	}
	return sess, nil
}

// lockFor returns the mutex guarding one session id, creating it on first use.
func (m *Manager) lockFor(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[id] = lock
	}
	return lock
}

// applyOne writes content into the session's current listing at the
// suggestion's field and records the AppliedSuggestion.
func applyOne(sess *Session, s Suggestion, content string) {
	before := writeField(sess.Current, s.Field, s.BulletIndex, content)
	sess.Applied = append(sess.Applied, AppliedSuggestion{
		SuggestionID: s.ID,
		Field:        s.Field,
		BulletIndex:  s.BulletIndex,
		Before:       before,
		After:        content,
		AppliedAt:    time.Now(),
	})
}

// writeField mutates one listing field and returns the previous value.
// Out-of-range bullet indexes append rather than fail.
func writeField(cur *listing.MergedListing, field listing.Field, idx int, content string) string {
	switch field {
	case listing.FieldTitle:
		before := cur.Title
		cur.Title = content
		return before
	case listing.FieldBulletPoints:
		if idx >= 0 && idx < len(cur.BulletPoints) {
			before := cur.BulletPoints[idx]
			cur.BulletPoints[idx] = content
			return before
		}
		cur.BulletPoints = append(cur.BulletPoints, content)
		return ""
	case listing.FieldDescription:
		before := cur.Description
		cur.Description = content
		return before
	case listing.FieldSearchTerms:
		before := strings.Join(cur.SearchTerms, ", ")
		cur.SearchTerms = splitList(content)
		return before
	case listing.FieldBackendKeywords:
		before := strings.Join(cur.BackendKeywords, ", ")
		cur.BackendKeywords = splitList(content)
		return before
	}
	return ""
}

// fieldRank orders fields by their declared position for ApplyAll.
func fieldRank(field listing.Field) int {
	for i, f := range listing.Fields {
		if f == field {
			return i
		}
	}
	return len(listing.Fields)
}

// splitList parses comma-separated suggestion content for list-valued fields.
func splitList(content string) []string {
	parts := strings.Split(content, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
