// Package domain provides domain models and business logic for the metadata service.
package domain

import (
	"time"
)

// FieldType identifies a metadata field for reliability lookups and
// conflict reporting. These values are stable and appear in API responses.
type FieldType string

const (
	FieldTitle           FieldType = "title"
	FieldAuthors         FieldType = "authors"
	FieldISBN            FieldType = "isbn"
	FieldPublisher       FieldType = "publisher"
	FieldPublicationDate FieldType = "publication_date"
	FieldLanguage        FieldType = "language"
	FieldPageCount       FieldType = "page_count"
	FieldSubjects        FieldType = "subjects"
	FieldDescription     FieldType = "description"
	FieldSeries          FieldType = "series"
	FieldCoverImage      FieldType = "cover_image"
	FieldEdition         FieldType = "edition"
	FieldIdentifiers     FieldType = "identifiers"
)

// SeriesType discriminates how a series groups its members.
type SeriesType string

const (
	SeriesTypeNumbered   SeriesType = "numbered"
	SeriesTypeCollection SeriesType = "collection"
	SeriesTypeOmnibus    SeriesType = "omnibus"
	SeriesTypeUnknown    SeriesType = "unknown"
)

// IdentifierType represents the type of a bibliographic identifier.
type IdentifierType string

const (
	IdentifierTypeISBN10      IdentifierType = "isbn10"
	IdentifierTypeISBN13      IdentifierType = "isbn13"
	IdentifierTypeOCLC        IdentifierType = "oclc"
	IdentifierTypeLCCN        IdentifierType = "lccn"
	IdentifierTypeASIN        IdentifierType = "asin"
	IdentifierTypeGoodreads   IdentifierType = "goodreads"
	IdentifierTypeOpenLibrary IdentifierType = "openlibrary"
)

// Identifier is a typed external identifier attached to a bibliographic entity.
type Identifier struct {
	Type  IdentifierType
	Value string
}

// SeriesRef is a provider's raw claim that a record belongs to a series.
// Volume is nil when the provider did not state a position.
type SeriesRef struct {
	Name   string
	Volume *int
}

// MetadataRecord is one provider's view of one bibliographic entity.
// Records are immutable once produced by a provider: the aggregator copies
// before merging and never writes back into a provider's record.
type MetadataRecord struct {
	// ID is the provider-local identifier for this record.
	ID string

	// Source is the name of the provider that produced the record.
	Source string

	// Provider is the attribution string on merged records: a comma-joined
	// list of every contributing provider in confidence order. Equal to
	// Source for unmerged records.
	Provider string

	// Confidence is the provider's own confidence in this record, 0..1.
	Confidence float64

	// Timestamp is when the provider produced the record.
	Timestamp time.Time

	Title              string
	Authors            []string
	ISBN               []string
	Publisher          string
	PublicationDate    string
	Language           string
	PageCount          int
	Subjects           []string
	Description        string
	Series             *SeriesRef
	Edition            string
	CoverImage         string
	PhysicalDimensions string

	// ProviderData is an opaque passthrough of source-specific fields.
	ProviderData map[string]any
}

// Clone returns a deep copy of the record. Merge operations work on clones so
// provider-owned records stay immutable.
func (r *MetadataRecord) Clone() *MetadataRecord {
	if r == nil {
		return nil
	}
	out := *r
	out.Authors = append([]string(nil), r.Authors...)
	out.ISBN = append([]string(nil), r.ISBN...)
	out.Subjects = append([]string(nil), r.Subjects...)
	if r.Series != nil {
		s := *r.Series
		if r.Series.Volume != nil {
			v := *r.Series.Volume
			s.Volume = &v
		}
		out.Series = &s
	}
	if r.ProviderData != nil {
		out.ProviderData = make(map[string]any, len(r.ProviderData))
		for k, v := range r.ProviderData {
			out.ProviderData[k] = v
		}
	}
	return &out
}

// MetadataSource records which provider contributed a reconciled value and
// how reliable that provider is for the field in question.
type MetadataSource struct {
	Name        string
	Reliability float64
	Timestamp   time.Time
}

// ConflictValue is one source's claim for a disputed field.
type ConflictValue struct {
	Value  string
	Source string
}

// Conflict is a detected disagreement between sources on a single field.
// Conflicts are always attached to the ReconciledField or record they were
// discovered on, never stored independently.
type Conflict struct {
	Field  FieldType
	Values []ConflictValue

	// Resolution explains in prose how the disagreement was resolved.
	Resolution string
}

// ReconciledField is the uniform output shape of every domain reconciler:
// one best-estimate value, the confidence in it, the sources that voted,
// any conflicts found on the way, and a human-readable audit string.
// Reasoning is never used for control flow.
type ReconciledField[T any] struct {
	Value      T
	Confidence float64
	Sources    []MetadataSource
	Conflicts  []Conflict
	Reasoning  string
}
