package orchestrator

import (
	"strings"

	"github.com/merchkit/listsmith/internal/listing"
	"github.com/merchkit/listsmith/internal/worker"
)

// PrecedenceTable maps each output field to the ordered worker ids that may
// supply it. The first listed worker whose Result is successful and carries a
// non-empty value for the field wins; duplicates in a list defer to the first
// occurrence.
type PrecedenceTable map[listing.Field][]string

// DefaultPrecedence is the production precedence table. It is declared once
// and unit-tested in isolation from the dispatcher.
var DefaultPrecedence = PrecedenceTable{
	listing.FieldTitle:           {worker.IDCopywriter, worker.IDValueProp},
	listing.FieldBulletPoints:    {worker.IDValueProp, worker.IDCopywriter},
	listing.FieldDescription:     {worker.IDDescription, worker.IDCopywriter},
	listing.FieldSearchTerms:     {worker.IDSEO},
	listing.FieldBackendKeywords: {worker.IDSEO, worker.IDCopywriter},
}

// Merger resolves the batch result set into one MergedListing. The outcome is
// a pure function of the set of Results: completion order never matters.
type Merger struct {
	table PrecedenceTable
}

// NewMerger creates a Merger over the given precedence table.
func NewMerger(table PrecedenceTable) *Merger {
	return &Merger{table: table}
}

// Merge resolves every output field against the collection. A field with no
// qualifying worker takes its built-in default and provenance "default".
// Notes and recommendations from every result are concatenated with a
// "[worker_id]" prefix, preserving worker order.
func (m *Merger) Merge(spec listing.ProductSpec, c *Collection) *listing.MergedListing {
	defaults := listing.Defaults(spec)
	out := &listing.MergedListing{
		Provenance: make(map[listing.Field]string, len(listing.Fields)),
	}

	for _, field := range listing.Fields {
		value, source := m.resolve(field, c)
		if source == "" {
			value = defaults[field]
			source = listing.ProvenanceDefault
		}
		setField(out, field, value)
		out.Provenance[field] = source
	}

	for _, res := range c.Results {
		for _, note := range res.Notes {
			out.Notes = append(out.Notes, "["+res.WorkerID+"] "+note)
		}
		for _, rec := range res.Recommendations {
			out.Recommendations = append(out.Recommendations, "["+res.WorkerID+"] "+rec)
		}
	}

	return out
}

// resolve walks the field's priority list and returns the first usable value
// with the id of the worker that supplied it, or ("", "") when none qualify.
func (m *Merger) resolve(field listing.Field, c *Collection) (any, string) {
	for _, id := range m.table[field] {
		res, ok := c.ByWorker(id)
		if !ok || res.Status != worker.StatusSuccess {
			continue
		}
		value, present := res.Payload[string(field)]
		if !present || emptyValue(value) {
			continue
		}
		return value, id
	}
	return nil, ""
}

// setField writes a resolved payload value into the listing, coercing the
// decoded JSON shape to the field's Go type. Values that fail coercion are
// treated as absent upstream by emptyValue, so v is well-shaped here.
func setField(out *listing.MergedListing, field listing.Field, v any) {
	switch field {
	case listing.FieldTitle:
		out.Title = toString(v)
	case listing.FieldBulletPoints:
		out.BulletPoints = toStringSlice(v)
	case listing.FieldDescription:
		out.Description = toString(v)
	case listing.FieldSearchTerms:
		out.SearchTerms = toStringSlice(v)
	case listing.FieldBackendKeywords:
		out.BackendKeywords = toStringSlice(v)
	}
}

// emptyValue reports whether a payload value is unusable for merging: empty
// or whitespace strings, empty lists, lists with no string elements, or any
// other shape.
func emptyValue(v any) bool {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) == ""
	case []string:
		return len(t) == 0
	case []any:
		return len(toStringSlice(t)) == 0
	default:
		return true
	}
}

func toString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func toStringSlice(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
