package conflict

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/metadata-service/internal/domain"
)

func newTestDetector() *Detector {
	return NewDetector(zerolog.Nop(), nil)
}

func findByField(conflicts []DetailedConflict, field domain.FieldType) *DetailedConflict {
	for i := range conflicts {
		if conflicts[i].Field == field {
			return &conflicts[i]
		}
	}
	return nil
}

func TestDetect_FewerThanTwoRecords(t *testing.T) {
	t.Parallel()
	d := newTestDetector()
	assert.Nil(t, d.Detect(nil))
	assert.Nil(t, d.Detect([]*domain.MetadataRecord{{Source: "openlibrary", Title: "Dune"}}))
}

func TestDetect_IdenticalRecordsNoConflict(t *testing.T) {
	t.Parallel()
	d := newTestDetector()
	records := []*domain.MetadataRecord{
		{Source: "openlibrary", Title: "Dune", Authors: []string{"Frank Herbert"}, ISBN: []string{"9780441013593"}, PublicationDate: "1965", PageCount: 412},
		{Source: "googlebooks", Title: "DUNE", Authors: []string{"Herbert, Frank"}, ISBN: []string{"9780441013593"}, PublicationDate: "1965", PageCount: 412},
	}
	// Case differences and inverted author names normalize to the same claim.
	assert.Empty(t, d.Detect(records))
}

func TestDetect_TitleSeverityScalesWithDistance(t *testing.T) {
	t.Parallel()
	d := newTestDetector()

	near := d.Detect([]*domain.MetadataRecord{
		{Source: "openlibrary", Title: "The Hobbit"},
		{Source: "googlebooks", Title: "The Hobbitt"},
	})
	require.Len(t, near, 1)
	assert.Equal(t, SeverityMinor, near[0].Severity)
	assert.Equal(t, TypeValueMismatch, near[0].Type)
	assert.True(t, near[0].AutoResolvable)
	assert.NotEmpty(t, near[0].ID)

	far := d.Detect([]*domain.MetadataRecord{
		{Source: "openlibrary", Title: "Dune"},
		{Source: "googlebooks", Title: "The Left Hand of Darkness"},
	})
	require.Len(t, far, 1)
	assert.Equal(t, SeverityCritical, far[0].Severity)
	assert.False(t, far[0].AutoResolvable)
}

func TestDetect_AuthorSharedCoreIsMissingData(t *testing.T) {
	t.Parallel()
	d := newTestDetector()
	conflicts := d.Detect([]*domain.MetadataRecord{
		{Source: "openlibrary", Title: "Good Omens", Authors: []string{"Terry Pratchett", "Neil Gaiman"}},
		{Source: "googlebooks", Title: "Good Omens", Authors: []string{"Terry Pratchett"}},
	})

	c := findByField(conflicts, domain.FieldAuthors)
	require.NotNil(t, c)
	assert.Equal(t, TypeMissingData, c.Type)
	assert.Equal(t, SeverityMinor, c.Severity)
	assert.True(t, c.AutoResolvable)
	assert.InDelta(t, 0.5, c.Confidence, 1e-9)
}

func TestDetect_DisjointAuthorsIsMajor(t *testing.T) {
	t.Parallel()
	d := newTestDetector()
	conflicts := d.Detect([]*domain.MetadataRecord{
		{Source: "openlibrary", Title: "Dune", Authors: []string{"Frank Herbert"}},
		{Source: "googlebooks", Title: "Dune", Authors: []string{"Brian Herbert"}},
	})

	c := findByField(conflicts, domain.FieldAuthors)
	require.NotNil(t, c)
	assert.Equal(t, TypeValueMismatch, c.Type)
	assert.Equal(t, SeverityMajor, c.Severity)
	assert.False(t, c.AutoResolvable)
}

func TestDetect_DisjointISBNsAreCritical(t *testing.T) {
	t.Parallel()
	d := newTestDetector()
	conflicts := d.Detect([]*domain.MetadataRecord{
		{Source: "openlibrary", Title: "Dune", ISBN: []string{"9780441013593"}},
		{Source: "googlebooks", Title: "Dune", ISBN: []string{"9780140283297"}},
	})

	c := findByField(conflicts, domain.FieldISBN)
	require.NotNil(t, c)
	assert.Equal(t, SeverityCritical, c.Severity)
	assert.False(t, c.AutoResolvable)

	// Severity-descending order puts the critical ISBN conflict first.
	assert.Equal(t, domain.FieldISBN, conflicts[0].Field)
}

func TestDetect_SharedISBNNoConflict(t *testing.T) {
	t.Parallel()
	d := newTestDetector()
	conflicts := d.Detect([]*domain.MetadataRecord{
		{Source: "openlibrary", Title: "Dune", ISBN: []string{"9780441013593", "9780140283297"}},
		{Source: "googlebooks", Title: "Dune", ISBN: []string{"9780441013593"}},
	})
	assert.Nil(t, findByField(conflicts, domain.FieldISBN))
}

func TestDetect_ImprintPublishersAreInformational(t *testing.T) {
	t.Parallel()
	d := newTestDetector()
	conflicts := d.Detect([]*domain.MetadataRecord{
		{Source: "openlibrary", Title: "Dune", Publisher: "Knopf"},
		{Source: "googlebooks", Title: "Dune", Publisher: "Vintage Books"},
	})

	c := findByField(conflicts, domain.FieldPublisher)
	require.NotNil(t, c)
	assert.Equal(t, SeverityInformational, c.Severity)
	assert.True(t, c.AutoResolvable)
	assert.InDelta(t, 0.9, c.Confidence, 1e-9)
}

func TestDetect_PageCountSeverityBands(t *testing.T) {
	t.Parallel()
	d := newTestDetector()
	tests := []struct {
		name     string
		a, b     int
		severity Severity
		auto     bool
	}{
		{"counting convention", 400, 410, SeverityInformational, true},
		{"printing variant", 400, 450, SeverityMinor, true},
		{"different edition", 300, 450, SeverityMajor, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conflicts := d.Detect([]*domain.MetadataRecord{
				{Source: "openlibrary", Title: "Dune", PageCount: tt.a},
				{Source: "googlebooks", Title: "Dune", PageCount: tt.b},
			})
			c := findByField(conflicts, domain.FieldPageCount)
			require.NotNil(t, c)
			assert.Equal(t, tt.severity, c.Severity)
			assert.Equal(t, tt.auto, c.AutoResolvable)
			assert.Equal(t, TypeNumericDelta, c.Type)
		})
	}
}

func TestDetect_YearSpanBands(t *testing.T) {
	t.Parallel()
	d := newTestDetector()
	tests := []struct {
		name     string
		a, b     string
		severity Severity
	}{
		{"hardcover vs paperback", "1965", "1966", SeverityInformational},
		{"regional release", "1965", "1968", SeverityMinor},
		{"possible reissue", "1965", "1972", SeverityMajor},
		{"different works", "1965", "1990", SeverityCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conflicts := d.Detect([]*domain.MetadataRecord{
				{Source: "openlibrary", Title: "Dune", PublicationDate: tt.a},
				{Source: "googlebooks", Title: "Dune", PublicationDate: tt.b},
			})
			c := findByField(conflicts, domain.FieldPublicationDate)
			require.NotNil(t, c)
			assert.Equal(t, tt.severity, c.Severity)
			assert.Equal(t, TypeDateMismatch, c.Type)
		})
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()
	d := newTestDetector()

	empty := d.Summarize(nil)
	assert.Equal(t, 0, empty.Total)
	assert.Contains(t, empty.Recommendations, "no conflicts detected; safe to import")

	conflicts := d.Detect([]*domain.MetadataRecord{
		{Source: "openlibrary", Title: "Dune", ISBN: []string{"9780441013593"}, PublicationDate: "1965", Publisher: "Knopf"},
		{Source: "googlebooks", Title: "Dune", ISBN: []string{"9780140283297"}, PublicationDate: "1990", Publisher: "Vintage"},
	})
	s := d.Summarize(conflicts)

	assert.Equal(t, len(conflicts), s.Total)
	assert.Equal(t, len(s.AutoResolvable)+len(s.Manual), s.Total)
	assert.GreaterOrEqual(t, s.BySeverity[SeverityCritical], 1)
	assert.Contains(t, s.Recommendations[0], "critical conflict(s) require manual review")
	assert.Contains(t, s.Recommendations, "ISBN disagreement usually means different editions; verify the edition before merging")
	assert.Contains(t, s.Recommendations, "publication years diverge widely; check whether sources describe a reissue")
}

func TestSelectBestEdition(t *testing.T) {
	t.Parallel()
	sparse := &domain.MetadataRecord{Source: "wikidata", Confidence: 0.95, Title: "Dune"}
	complete := &domain.MetadataRecord{
		Source:          "openlibrary",
		Confidence:      0.8,
		Title:           "Dune",
		Authors:         []string{"Frank Herbert"},
		ISBN:            []string{"9780441013593"},
		Publisher:       "Chilton",
		PublicationDate: "1965",
		Language:        "en",
		PageCount:       412,
		Description:     "Desert planet epic.",
		CoverImage:      "https://covers.example/dune.jpg",
	}

	// Completeness outweighs the sparse record's higher self-confidence.
	best := SelectBestEdition([]*domain.MetadataRecord{sparse, complete})
	require.NotNil(t, best)
	assert.Equal(t, "openlibrary", best.Source)

	assert.Nil(t, SelectBestEdition(nil))
}

func findPreviewField(fields []FieldPreview, field domain.FieldType) *FieldPreview {
	for i := range fields {
		if fields[i].Field == field {
			return &fields[i]
		}
	}
	return nil
}

func TestPreview_AttributesFieldsAndFlagsConflicts(t *testing.T) {
	t.Parallel()
	d := newTestDetector()

	raw := []*domain.MetadataRecord{
		{Source: "openlibrary", Title: "Dune", Authors: []string{"Frank Herbert"}, ISBN: []string{"9780441013593"}, PublicationDate: "1965", Publisher: "Chilton Books"},
		{Source: "googlebooks", Title: "Dune", Authors: []string{"Frank Herbert"}, ISBN: []string{"9780441013593"}, PublicationDate: "1972", PageCount: 412},
	}
	merged := &domain.MetadataRecord{
		Source:          "openlibrary",
		Provider:        "openlibrary, googlebooks",
		Title:           "Dune",
		Authors:         []string{"Frank Herbert"},
		ISBN:            []string{"9780441013593"},
		PublicationDate: "1965",
		Publisher:       "Chilton Books",
		PageCount:       412,
	}

	p := d.Preview(merged, raw)
	require.NotNil(t, p)
	assert.Same(t, merged, p.Chosen)
	assert.Equal(t, len(p.Conflicts), p.Summary.Total)
	require.NotNil(t, findByField(p.Conflicts, domain.FieldPublicationDate))

	date := findPreviewField(p.Fields, domain.FieldPublicationDate)
	require.NotNil(t, date)
	assert.True(t, date.Conflicted)
	assert.Equal(t, "1965", date.Value)
	require.Len(t, date.Claims, 2)
	assert.Equal(t, FieldClaim{Value: "1965", Source: "openlibrary"}, date.Claims[0])
	assert.Equal(t, FieldClaim{Value: "1972", Source: "googlebooks"}, date.Claims[1])

	title := findPreviewField(p.Fields, domain.FieldTitle)
	require.NotNil(t, title)
	assert.False(t, title.Conflicted)
	assert.Len(t, title.Claims, 2)

	// Only one source claimed a publisher; the claim list says which.
	pub := findPreviewField(p.Fields, domain.FieldPublisher)
	require.NotNil(t, pub)
	assert.False(t, pub.Conflicted)
	require.Len(t, pub.Claims, 1)
	assert.Equal(t, "openlibrary", pub.Claims[0].Source)

	// Fields nobody claims are left out entirely.
	assert.Nil(t, findPreviewField(p.Fields, domain.FieldEdition))
}

func TestPreview_SingleRawRecordHasNoConflicts(t *testing.T) {
	t.Parallel()
	d := newTestDetector()

	merged := &domain.MetadataRecord{Source: "openlibrary", Title: "Dune"}
	p := d.Preview(merged, []*domain.MetadataRecord{merged})

	require.NotNil(t, p)
	assert.Empty(t, p.Conflicts)
	assert.Equal(t, 0, p.Summary.Total)
	title := findPreviewField(p.Fields, domain.FieldTitle)
	require.NotNil(t, title)
	assert.False(t, title.Conflicted)
}

func TestSelectBestSeries(t *testing.T) {
	t.Parallel()
	assert.Nil(t, SelectBestSeries(nil))

	series := []domain.Series{
		{Name: "The Expanse"},
		{Name: "The Expanse", Volume: 1, TotalVolumes: 9},
		{Name: "The Expanse", Volume: 1},
	}
	best := SelectBestSeries(series)
	require.NotNil(t, best)
	assert.Same(t, &series[1], best)

	// Ties keep the earlier claim.
	tied := []domain.Series{
		{Name: "Discworld", Volume: 4},
		{Name: "Discworld", TotalVolumes: 41},
	}
	assert.Same(t, &tied[0], SelectBestSeries(tied))
}
