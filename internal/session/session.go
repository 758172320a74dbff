// Package session implements the interactive, revertible editing workflow
// wrapped around one merged listing: suggestions are applied, reverted, or
// regenerated against a current copy while the original stays untouched.
package session

import (
	"errors"
	"time"

	"github.com/merchkit/listsmith/internal/listing"
)

// Caller-misuse errors, the only ones surfaced by the session layer.
var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrSuggestionNotFound = errors.New("suggestion not found")
)

// Suggestion is a proposed value for one listing field, independent of
// whether it has been applied.
type Suggestion struct {
	ID           string        `json:"id"`
	Field        listing.Field `json:"field"`
	BulletIndex  int           `json:"bullet_index,omitempty"` // for list-valued fields
	Content      string        `json:"content"`
	Reason       string        `json:"reason"`
	SourceWorker string        `json:"source_worker"`
	Priority     string        `json:"priority"`
	Regenerated  bool          `json:"regenerated,omitempty"`
}

// AppliedSuggestion records one apply operation with before/after values.
type AppliedSuggestion struct {
	SuggestionID string        `json:"suggestion_id"`
	Field        listing.Field `json:"field"`
	BulletIndex  int           `json:"bullet_index,omitempty"`
	Before       string        `json:"before"`
	After        string        `json:"after"`
	AppliedAt    time.Time     `json:"applied_at"`
}

// Session holds the original and current state of one merged listing.
// Original is never mutated after creation; Current is mutated only by
// apply/revert/regenerate operations.
type Session struct {
	ID          string                 `json:"id"`
	Original    *listing.MergedListing `json:"original"`
	Current     *listing.MergedListing `json:"current"`
	Suggestions []Suggestion           `json:"suggestions"`
	Applied     []AppliedSuggestion    `json:"applied"`
	CreatedAt   time.Time              `json:"created_at"`
}

// clone deep-copies the session so store implementations can hand out
// mutation-safe values.
func (s *Session) clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Original = s.Original.Clone()
	out.Current = s.Current.Clone()
	out.Suggestions = append([]Suggestion(nil), s.Suggestions...)
	out.Applied = append([]AppliedSuggestion(nil), s.Applied...)
	return &out
}

// suggestion returns a pointer to the suggestion with the given id.
func (s *Session) suggestion(id string) (*Suggestion, bool) {
	for i := range s.Suggestions {
		if s.Suggestions[i].ID == id {
			return &s.Suggestions[i], true
		}
	}
	return nil, false
}
