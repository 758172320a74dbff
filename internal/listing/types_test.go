package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergedListing_CloneIsDeep(t *testing.T) {
	original := &MergedListing{
		Title:           "Nimbus Camping Pillow",
		BulletPoints:    []string{"packs small", "washable"},
		Description:     "Sleep well anywhere.",
		SearchTerms:     []string{"camping pillow"},
		BackendKeywords: []string{"compressible"},
		Provenance: map[Field]string{
			FieldTitle: "copywriter",
		},
		Confidence:    0.8,
		Notes:         []string{"note"},
		QualityScores: map[string]float64{"seo": 7},
	}

	clone := original.Clone()
	require.Equal(t, original, clone)

	clone.Title = "changed"
	clone.BulletPoints[0] = "changed"
	clone.SearchTerms[0] = "changed"
	clone.Provenance[FieldTitle] = "changed"
	clone.QualityScores["seo"] = 1
	clone.Notes[0] = "changed"

	assert.Equal(t, "Nimbus Camping Pillow", original.Title)
	assert.Equal(t, "packs small", original.BulletPoints[0])
	assert.Equal(t, "camping pillow", original.SearchTerms[0])
	assert.Equal(t, "copywriter", original.Provenance[FieldTitle])
	assert.Equal(t, 7.0, original.QualityScores["seo"])
	assert.Equal(t, "note", original.Notes[0])
}

func TestMergedListing_CloneNil(t *testing.T) {
	var m *MergedListing
	assert.Nil(t, m.Clone())
}

func TestFields_DeclaredOrder(t *testing.T) {
	assert.Equal(t, []Field{
		FieldTitle,
		FieldBulletPoints,
		FieldDescription,
		FieldSearchTerms,
		FieldBackendKeywords,
	}, Fields)
}
