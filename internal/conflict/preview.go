package conflict

import (
	"fmt"
	"strings"

	"github.com/openshelf/metadata-service/internal/domain"
)

// FieldClaim is one source's claim for a previewed field.
type FieldClaim struct {
	Value  string
	Source string
}

// FieldPreview shows the chosen value for one field alongside every
// source's claim, so a reviewer can see where the value came from and who
// disagreed.
type FieldPreview struct {
	Field      domain.FieldType
	Value      string
	Claims     []FieldClaim
	Conflicted bool
}

// Preview is the caller-facing view of one aggregation outcome: the chosen
// record, a per-field breakdown with attribution, and the classified
// conflicts with their summary.
type Preview struct {
	Chosen    *domain.MetadataRecord
	Fields    []FieldPreview
	Conflicts []DetailedConflict
	Summary   Summary
}

// Preview builds the field-by-field view of a merged record against the
// raw provider records it was merged from. The merged record is not
// modified.
func (d *Detector) Preview(merged *domain.MetadataRecord, raw []*domain.MetadataRecord) *Preview {
	conflicts := d.Detect(raw)
	conflicted := make(map[domain.FieldType]bool, len(conflicts))
	for _, c := range conflicts {
		conflicted[c.Field] = true
	}

	fields := []struct {
		field domain.FieldType
		get   func(*domain.MetadataRecord) string
	}{
		{domain.FieldTitle, func(r *domain.MetadataRecord) string { return r.Title }},
		{domain.FieldAuthors, func(r *domain.MetadataRecord) string { return strings.Join(r.Authors, "; ") }},
		{domain.FieldISBN, func(r *domain.MetadataRecord) string { return strings.Join(r.ISBN, "; ") }},
		{domain.FieldPublisher, func(r *domain.MetadataRecord) string { return r.Publisher }},
		{domain.FieldPublicationDate, func(r *domain.MetadataRecord) string { return r.PublicationDate }},
		{domain.FieldLanguage, func(r *domain.MetadataRecord) string { return r.Language }},
		{domain.FieldPageCount, func(r *domain.MetadataRecord) string {
			if r.PageCount <= 0 {
				return ""
			}
			return fmt.Sprintf("%d", r.PageCount)
		}},
		{domain.FieldSeries, func(r *domain.MetadataRecord) string {
			if r.Series == nil {
				return ""
			}
			if r.Series.Volume != nil {
				return fmt.Sprintf("%s #%d", r.Series.Name, *r.Series.Volume)
			}
			return r.Series.Name
		}},
		{domain.FieldEdition, func(r *domain.MetadataRecord) string { return r.Edition }},
	}

	p := &Preview{
		Chosen:    merged,
		Conflicts: conflicts,
		Summary:   d.Summarize(conflicts),
	}
	for _, f := range fields {
		fp := FieldPreview{
			Field:      f.field,
			Value:      f.get(merged),
			Conflicted: conflicted[f.field],
		}
		for _, r := range raw {
			if v := f.get(r); v != "" {
				fp.Claims = append(fp.Claims, FieldClaim{Value: v, Source: r.Source})
			}
		}
		if fp.Value == "" && len(fp.Claims) == 0 {
			continue
		}
		p.Fields = append(p.Fields, fp)
	}
	return p
}

// SelectBestEdition picks the record to present as the primary edition:
// the record's own confidence weighted against how completely it is filled
// in. Ties keep the earlier record, so input order (confidence order after
// a merge) stays deterministic.
func SelectBestEdition(records []*domain.MetadataRecord) *domain.MetadataRecord {
	var best *domain.MetadataRecord
	bestScore := -1.0
	for _, r := range records {
		if r == nil {
			continue
		}
		score := r.Confidence*0.6 + recordCompleteness(r)*0.4
		if score > bestScore {
			best = r
			bestScore = score
		}
	}
	return best
}

// SelectBestSeries picks the most completely described series claim.
// Ties keep the earlier claim.
func SelectBestSeries(series []domain.Series) *domain.Series {
	var best *domain.Series
	bestScore := -1.0
	for i := range series {
		if score := series[i].Complete(); score > bestScore {
			best = &series[i]
			bestScore = score
		}
	}
	return best
}

func recordCompleteness(r *domain.MetadataRecord) float64 {
	filled := 0
	if r.Title != "" {
		filled++
	}
	if len(r.Authors) > 0 {
		filled++
	}
	if len(r.ISBN) > 0 {
		filled++
	}
	if r.Publisher != "" {
		filled++
	}
	if r.PublicationDate != "" {
		filled++
	}
	if r.Language != "" {
		filled++
	}
	if r.PageCount > 0 {
		filled++
	}
	if len(r.Subjects) > 0 {
		filled++
	}
	if r.Description != "" {
		filled++
	}
	if r.Series != nil {
		filled++
	}
	return float64(filled) / 10
}
