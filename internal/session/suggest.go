package session

import (
	"fmt"
	"strings"

	"github.com/merchkit/listsmith/internal/listing"
)

// Suggestion-builder limits, mirroring marketplace constraints.
const (
	titleTargetLen  = 150 // titles shorter than this get a length suggestion
	bulletTargetLen = 200
	maxBulletSugg   = 3
)

// BuildSuggestions derives improvement suggestions from a merged listing.
// IDs are stable per field so clients can re-request them across runs.
func BuildSuggestions(merged *listing.MergedListing, spec listing.ProductSpec) []Suggestion {
	var suggestions []Suggestion

	if len(merged.Title) < titleTargetLen {
		category := spec.Category
		if category == "" {
			category = "All Needs"
		}
		suggestions = append(suggestions, Suggestion{
			ID:           "title_length_opt",
			Field:        listing.FieldTitle,
			Content:      fmt.Sprintf("%s - Premium Quality for %s", merged.Title, category),
			Reason:       "lengthen the title toward the 200-character limit for better keyword coverage",
			SourceWorker: merged.Provenance[listing.FieldTitle],
			Priority:     "medium",
		})
	}

	for i, bullet := range merged.BulletPoints {
		if i >= maxBulletSugg {
			break
		}
		if len(bullet) >= bulletTargetLen {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			ID:           fmt.Sprintf("bullet_%d_enhance", i),
			Field:        listing.FieldBulletPoints,
			BulletIndex:  i,
			Content:      bullet + " - Satisfaction guarantee included",
			Reason:       fmt.Sprintf("strengthen bullet %d with a value guarantee", i+1),
			SourceWorker: merged.Provenance[listing.FieldBulletPoints],
			Priority:     "low",
		})
	}

	lower := strings.ToLower(merged.Description)
	if !strings.Contains(lower, "order") && !strings.Contains(lower, "buy") {
		suggestions = append(suggestions, Suggestion{
			ID:           "desc_cta",
			Field:        listing.FieldDescription,
			Content:      merged.Description + "\n\nOrder now and experience the difference - your satisfaction is our guarantee.",
			Reason:       "add a call to action to improve conversion",
			SourceWorker: merged.Provenance[listing.FieldDescription],
			Priority:     "high",
		})
	}

	return suggestions
}
