// Package listing defines the product input and merged listing output shared
// by the orchestrator, workers, and editing sessions.
package listing

// Field identifies one output field of a MergedListing.
type Field string

const (
	FieldTitle           Field = "title"
	FieldBulletPoints    Field = "bullet_points"
	FieldDescription     Field = "description"
	FieldSearchTerms     Field = "search_terms"
	FieldBackendKeywords Field = "backend_keywords"
)

// Fields lists every output field in declared order. The order is load-bearing:
// ApplyAll and the merge loop iterate fields in this order.
var Fields = []Field{
	FieldTitle,
	FieldBulletPoints,
	FieldDescription,
	FieldSearchTerms,
	FieldBackendKeywords,
}

// ProvenanceDefault marks a field whose value came from the built-in default
// rather than any worker.
const ProvenanceDefault = "default"

// ProductSpec is the immutable input describing one product. It is created
// once per batch run and shared read-only by every worker.
type ProductSpec struct {
	Name             string   `json:"name"`
	Category         string   `json:"category"`
	TargetCustomer   string   `json:"target_customer"`
	ValueProposition string   `json:"value_proposition"`
	Advantages       []string `json:"advantages"`
	UseCases         []string `json:"use_cases"`
	TargetPrice      float64  `json:"target_price"`
	RawSpecs         string   `json:"raw_specs"`
	Keywords         []string `json:"keywords"`
	BoxContents      string   `json:"box_contents"`
	WarrantyInfo     string   `json:"warranty_info"`
}

// MergedListing is the unified output of one batch run. Every field carries a
// value (the merger falls back to a built-in default when no worker supplied
// one) and Provenance records which worker contributed it.
type MergedListing struct {
	Title           string   `json:"title"`
	BulletPoints    []string `json:"bullet_points"`
	Description     string   `json:"description"`
	SearchTerms     []string `json:"search_terms"`
	BackendKeywords []string `json:"backend_keywords"`

	// Provenance maps each output field to the worker id whose payload
	// supplied its value, or ProvenanceDefault.
	Provenance map[Field]string `json:"provenance"`

	// Confidence is the aggregate batch confidence, always within [0,1].
	Confidence float64 `json:"confidence"`

	Notes           []string `json:"notes,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`

	// ReviewApplied reports whether the review stage produced a valid outcome
	// and its overrides were applied. A failed review leaves the listing
	// unmodified and this flag false.
	ReviewApplied bool `json:"review_applied"`

	// QualityScores holds per-dimension scores (0..10) from the review stage,
	// used only for reporting.
	QualityScores map[string]float64 `json:"quality_scores,omitempty"`
}

// Clone returns a deep copy. Sessions rely on this for exact revert: mutating
// the copy must never show through to the receiver.
func (m *MergedListing) Clone() *MergedListing {
	if m == nil {
		return nil
	}
	out := *m
	out.BulletPoints = cloneStrings(m.BulletPoints)
	out.SearchTerms = cloneStrings(m.SearchTerms)
	out.BackendKeywords = cloneStrings(m.BackendKeywords)
	out.Notes = cloneStrings(m.Notes)
	out.Recommendations = cloneStrings(m.Recommendations)
	if m.Provenance != nil {
		out.Provenance = make(map[Field]string, len(m.Provenance))
		for k, v := range m.Provenance {
			out.Provenance[k] = v
		}
	}
	if m.QualityScores != nil {
		out.QualityScores = make(map[string]float64, len(m.QualityScores))
		for k, v := range m.QualityScores {
			out.QualityScores[k] = v
		}
	}
	return &out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
