package listing

import (
	"fmt"
	"strings"
)

// Marketplace limits applied to default content.
const (
	maxTitleLen       = 200
	maxBulletPoints   = 5
	maxSearchTerms    = 10
	maxBackendKeyword = 20
)

// Defaults builds the per-field fallback values for a spec. The merger applies
// these whenever no successful worker supplied a usable value, so a batch in
// which every worker failed still yields a complete listing.
func Defaults(spec ProductSpec) map[Field]any {
	return map[Field]any{
		FieldTitle:           DefaultTitle(spec),
		FieldBulletPoints:    DefaultBulletPoints(spec),
		FieldDescription:     DefaultDescription(spec),
		FieldSearchTerms:     DefaultSearchTerms(spec),
		FieldBackendKeywords: DefaultBackendKeywords(spec),
	}
}

// DefaultTitle echoes the product name, joined with up to two advantages,
// truncated to the marketplace title limit.
func DefaultTitle(spec ProductSpec) string {
	parts := []string{spec.Name}
	for i, adv := range spec.Advantages {
		if i >= 2 {
			break
		}
		parts = append(parts, adv)
	}
	title := strings.Join(parts, " - ")
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen-3] + "..."
	}
	return title
}

// DefaultBulletPoints leads with the value proposition and fills the remaining
// slots from the declared advantages.
func DefaultBulletPoints(spec ProductSpec) []string {
	bullets := make([]string, 0, maxBulletPoints)
	if spec.ValueProposition != "" {
		bullets = append(bullets, spec.ValueProposition)
	}
	for _, adv := range spec.Advantages {
		if len(bullets) >= maxBulletPoints {
			break
		}
		bullets = append(bullets, adv)
	}
	if len(bullets) == 0 {
		bullets = append(bullets, spec.Name)
	}
	return bullets
}

// DefaultDescription assembles a plain description from the spec sections.
func DefaultDescription(spec ProductSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Discover %s", spec.Name)
	if spec.ValueProposition != "" {
		fmt.Fprintf(&b, "\n%s", spec.ValueProposition)
	}
	if len(spec.Advantages) > 0 {
		b.WriteString("\n\nKEY FEATURES:")
		for _, adv := range spec.Advantages {
			fmt.Fprintf(&b, "\n- %s", adv)
		}
	}
	if len(spec.UseCases) > 0 {
		b.WriteString("\n\nIDEAL FOR:")
		for _, uc := range spec.UseCases {
			fmt.Fprintf(&b, "\n- %s", uc)
		}
	}
	if spec.RawSpecs != "" {
		fmt.Fprintf(&b, "\n\nSPECIFICATIONS:\n%s", spec.RawSpecs)
	}
	if spec.BoxContents != "" {
		fmt.Fprintf(&b, "\n\nIN THE BOX:\n%s", spec.BoxContents)
	}
	if spec.WarrantyInfo != "" {
		fmt.Fprintf(&b, "\n\nWARRANTY: %s", spec.WarrantyInfo)
	}
	return b.String()
}

// DefaultSearchTerms combines the declared keywords with the product name and
// category, de-duplicated, capped at the front-end term limit.
func DefaultSearchTerms(spec ProductSpec) []string {
	terms := make([]string, 0, maxSearchTerms)
	seen := make(map[string]bool)
	add := func(term string) {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" || seen[term] || len(terms) >= maxSearchTerms {
			return
		}
		seen[term] = true
		terms = append(terms, term)
	}
	for _, kw := range spec.Keywords {
		add(kw)
	}
	add(spec.Name)
	add(strings.ReplaceAll(spec.Category, "_", " "))
	return terms
}

// DefaultBackendKeywords derives hidden keywords from the declared keywords,
// the product name words, and advantage words longer than three characters.
func DefaultBackendKeywords(spec ProductSpec) []string {
	keywords := make([]string, 0, maxBackendKeyword)
	seen := make(map[string]bool)
	add := func(kw string) {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] || len(keywords) >= maxBackendKeyword {
			return
		}
		seen[kw] = true
		keywords = append(keywords, kw)
	}
	for _, kw := range spec.Keywords {
		add(kw)
	}
	for _, word := range strings.Fields(spec.Name) {
		add(word)
	}
	for _, adv := range spec.Advantages {
		for _, word := range strings.Fields(adv) {
			if len(word) > 3 {
				add(word)
			}
		}
	}
	return keywords
}
