package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/merchkit/listsmith/internal/listing"
)

// RenderMarkdown produces a human-readable preview of the report: the listing
// as it would read on a product page, followed by provenance and any
// outstanding suggestions.
func RenderMarkdown(report Report) string {
	var sb strings.Builder
	l := report.Listing

	fmt.Fprintf(&sb, "# %s\n\n", l.Title)

	if len(l.BulletPoints) > 0 {
		for _, bullet := range l.BulletPoints {
			fmt.Fprintf(&sb, "- %s\n", bullet)
		}
		sb.WriteString("\n")
	}

	if l.Description != "" {
		sb.WriteString(l.Description)
		sb.WriteString("\n\n")
	}

	if len(l.SearchTerms) > 0 {
		fmt.Fprintf(&sb, "**Search terms:** %s\n\n", strings.Join(l.SearchTerms, ", "))
	}
	if len(l.BackendKeywords) > 0 {
		fmt.Fprintf(&sb, "**Backend keywords:** %s\n\n", strings.Join(l.BackendKeywords, ", "))
	}

	sb.WriteString("## Provenance\n\n")
	fmt.Fprintf(&sb, "Confidence: %.2f", l.Confidence)
	if l.ReviewApplied {
		sb.WriteString(" (review applied)")
	}
	sb.WriteString("\n\n")
	for _, field := range listing.Fields {
		if source, ok := l.Provenance[field]; ok {
			fmt.Fprintf(&sb, "- `%s` ← %s\n", field, source)
		}
	}
	sb.WriteString("\n")

	if len(l.QualityScores) > 0 {
		sb.WriteString("## Quality scores\n\n")
		for _, dim := range sortedKeys(l.QualityScores) {
			fmt.Fprintf(&sb, "- %s: %.1f/10\n", dim, l.QualityScores[dim])
		}
		sb.WriteString("\n")
	}

	if len(report.Suggestions) > 0 {
		sb.WriteString("## Suggestions\n\n")
		for _, s := range report.Suggestions {
			fmt.Fprintf(&sb, "- **%s** (%s, %s): %s\n", s.ID, s.Field, s.Priority, s.Reason)
		}
		sb.WriteString("\n")
	}

	if len(l.Notes) > 0 {
		sb.WriteString("## Notes\n\n")
		for _, note := range l.Notes {
			fmt.Fprintf(&sb, "- %s\n", note)
		}
	}

	return sb.String()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
