package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/metadata-service/internal/domain"
	"github.com/openshelf/metadata-service/internal/match"
)

func TestDedupe_GroupsByISBN(t *testing.T) {
	t.Parallel()
	records := []*domain.MetadataRecord{
		{
			Source:     "openlibrary",
			Confidence: 0.7,
			Title:      "The Talented Mr. Ripley",
			ISBN:       []string{"0-14-028329-3"},
			Publisher:  "Vintage",
		},
		{
			Source:     "googlebooks",
			Confidence: 0.9,
			Title:      "The Talented Mr Ripley",
			ISBN:       []string{"9780140283297"},
			PageCount:  290,
		},
	}

	got := dedupe(records, match.DefaultSimilarityThreshold)
	require.Len(t, got, 1)

	merged := got[0]
	// Higher-confidence record is primary; attribution is confidence order.
	assert.Equal(t, "The Talented Mr Ripley", merged.Title)
	assert.Equal(t, "googlebooks, openlibrary", merged.Provider)

	// Fill-missing pulls what the primary lacks from the other member.
	assert.Equal(t, "Vintage", merged.Publisher)
	assert.Equal(t, 290, merged.PageCount)

	// The hyphenated and bare ISBN forms are the same number.
	assert.Len(t, merged.ISBN, 1)
}

func TestDedupe_TitleFallback(t *testing.T) {
	t.Parallel()
	records := []*domain.MetadataRecord{
		{Source: "openlibrary", Confidence: 0.8, Title: "The Hobbit"},
		{Source: "googlebooks", Confidence: 0.7, Title: "The Hobbitt"},
		{Source: "wikidata", Confidence: 0.9, Title: "Dune"},
	}

	got := dedupe(records, match.DefaultSimilarityThreshold)
	require.Len(t, got, 2)

	assert.Equal(t, "The Hobbit", got[0].Title)
	assert.Equal(t, "openlibrary, googlebooks", got[0].Provider)
	assert.Equal(t, "Dune", got[1].Title)
	assert.Equal(t, "wikidata", got[1].Provider)
}

func TestDedupe_SingleMemberKeepsSourceAttribution(t *testing.T) {
	t.Parallel()
	records := []*domain.MetadataRecord{
		{Source: "openlibrary", Confidence: 0.8, Title: "Dune", ISBN: []string{"9780441013593"}},
	}

	got := dedupe(records, match.DefaultSimilarityThreshold)
	require.Len(t, got, 1)
	assert.Equal(t, "openlibrary", got[0].Provider)
}

func TestDedupe_DoesNotMutateInputs(t *testing.T) {
	t.Parallel()
	a := &domain.MetadataRecord{Source: "openlibrary", Confidence: 0.7, Title: "Dune", ISBN: []string{"9780441013593"}}
	b := &domain.MetadataRecord{Source: "googlebooks", Confidence: 0.9, Title: "Dune", ISBN: []string{"9780441013593"}, Publisher: "Ace"}

	dedupe([]*domain.MetadataRecord{a, b}, match.DefaultSimilarityThreshold)

	assert.Empty(t, a.Provider)
	assert.Empty(t, a.Publisher)
	assert.Empty(t, b.Provider)
}

func TestMergeGroup_UnionsEquivalentAuthorsOnce(t *testing.T) {
	t.Parallel()
	records := []*domain.MetadataRecord{
		{
			Source:     "openlibrary",
			Confidence: 0.9,
			Title:      "The Hobbit",
			ISBN:       []string{"9780140283297"},
			Authors:    []string{"J.R.R. Tolkien"},
			Subjects:   []string{"Fantasy"},
		},
		{
			Source:     "googlebooks",
			Confidence: 0.8,
			Title:      "The Hobbit",
			ISBN:       []string{"0140283293"},
			Authors:    []string{"Tolkien, J.R.R.", "Christopher Tolkien"},
			Subjects:   []string{"fantasy", "Middle Earth"},
		},
	}

	got := dedupe(records, match.DefaultSimilarityThreshold)
	require.Len(t, got, 1)

	// The inverted variant of the same name does not duplicate; the genuinely
	// new author is appended.
	assert.Equal(t, []string{"J.R.R. Tolkien", "Christopher Tolkien"}, got[0].Authors)
	assert.Equal(t, []string{"Fantasy", "Middle Earth"}, got[0].Subjects)
}

func TestDedupe_Deterministic(t *testing.T) {
	t.Parallel()
	records := []*domain.MetadataRecord{
		{Source: "openlibrary", Confidence: 0.8, Title: "Hyperion", ISBN: []string{"9780441013593"}},
		{Source: "googlebooks", Confidence: 0.8, Title: "Hyperion", ISBN: []string{"9780441013593"}},
		{Source: "wikidata", Confidence: 0.6, Title: "Ilium"},
	}

	first := dedupe(records, match.DefaultSimilarityThreshold)
	second := dedupe(records, match.DefaultSimilarityThreshold)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Title, second[i].Title)
		assert.Equal(t, first[i].Provider, second[i].Provider)
	}

	// Equal confidences: registration order breaks the tie.
	assert.Equal(t, "openlibrary, googlebooks", first[0].Provider)
}

// mergeFixture returns three records for one edition with distinct
// confidences and complementary fields, ISBNs in three surface forms.
func mergeFixture() (a, b, c *domain.MetadataRecord) {
	a = &domain.MetadataRecord{
		Source:     "openlibrary",
		Confidence: 0.9,
		Title:      "Dune",
		Authors:    []string{"Frank Herbert"},
		ISBN:       []string{"9780441013593"},
	}
	b = &domain.MetadataRecord{
		Source:     "googlebooks",
		Confidence: 0.8,
		Title:      "Dune",
		Authors:    []string{"Herbert, Frank"},
		ISBN:       []string{"0-441-01359-7"},
		Publisher:  "Chilton Books",
	}
	c = &domain.MetadataRecord{
		Source:     "worldcat",
		Confidence: 0.7,
		Title:      "Dune",
		ISBN:       []string{"0441013597"},
		PageCount:  412,
		Language:   "en",
		Subjects:   []string{"Science Fiction"},
	}
	return a, b, c
}

func TestDedupe_OrderInvariantForDistinctConfidences(t *testing.T) {
	t.Parallel()
	a, b, c := mergeFixture()

	want := dedupe([]*domain.MetadataRecord{a, b, c}, match.DefaultSimilarityThreshold)
	require.Len(t, want, 1)

	perms := [][]*domain.MetadataRecord{
		{a, c, b}, {b, a, c}, {b, c, a}, {c, a, b}, {c, b, a},
	}
	for _, perm := range perms {
		got := dedupe(perm, match.DefaultSimilarityThreshold)
		require.Len(t, got, 1)
		assert.Equal(t, want[0], got[0])
	}
}

func TestDedupe_IncrementalMergeMatchesBatch(t *testing.T) {
	t.Parallel()
	a, b, c := mergeFixture()

	batch := dedupe([]*domain.MetadataRecord{a, b, c}, match.DefaultSimilarityThreshold)
	require.Len(t, batch, 1)

	partial := dedupe([]*domain.MetadataRecord{a, b}, match.DefaultSimilarityThreshold)
	require.Len(t, partial, 1)
	incremental := dedupe([]*domain.MetadataRecord{partial[0], c}, match.DefaultSimilarityThreshold)
	require.Len(t, incremental, 1)

	// Attribution follows the merge path; the reconciled values do not.
	assert.Equal(t, "openlibrary, googlebooks, worldcat", batch[0].Provider)
	assert.Equal(t, "openlibrary, worldcat", incremental[0].Provider)

	want := batch[0].Clone()
	want.Provider = ""
	got := incremental[0].Clone()
	got.Provider = ""
	assert.Equal(t, want, got)
}
