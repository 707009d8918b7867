package aggregate

import (
	"sort"
	"strings"

	"github.com/openshelf/metadata-service/internal/domain"
	"github.com/openshelf/metadata-service/internal/match"
	"github.com/openshelf/metadata-service/internal/normalize"
)

// dedupe groups raw provider records describing the same entity and merges
// each group into one record. Grouping is by normalized ISBN (the first
// ISBN per record that passes checksum normalization); records without a
// usable ISBN fall back to normalized-title grouping with a first-match
// linear scan, which stays cheap on large result sets.
//
// The input order is provider registration order, so grouping and
// attribution are deterministic for identical inputs.
func dedupe(records []*domain.MetadataRecord, titleSimilarity float64) []*domain.MetadataRecord {
	type group struct {
		key      string
		titleKey string
		members  []*domain.MetadataRecord
	}

	var byISBN []*group
	isbnIndex := make(map[string]*group)
	var byTitle []*group

	for _, r := range records {
		if key := firstValidISBN(r); key != "" {
			g, ok := isbnIndex[key]
			if !ok {
				g = &group{key: key}
				isbnIndex[key] = g
				byISBN = append(byISBN, g)
			}
			g.members = append(g.members, r)
			continue
		}

		titleKey := normalize.Title(r.Title)
		var home *group
		for _, g := range byTitle {
			if g.titleKey == titleKey ||
				(titleKey != "" && match.Similarity(g.titleKey, titleKey) >= titleSimilarity) {
				home = g
				break
			}
		}
		if home == nil {
			home = &group{titleKey: titleKey}
			byTitle = append(byTitle, home)
		}
		home.members = append(home.members, r)
	}

	out := make([]*domain.MetadataRecord, 0, len(byISBN)+len(byTitle))
	for _, g := range byISBN {
		out = append(out, mergeGroup(g.members))
	}
	for _, g := range byTitle {
		out = append(out, mergeGroup(g.members))
	}
	return out
}

// firstValidISBN returns the first checksum-valid ISBN of a record in
// ISBN-13 form, or "" when the record carries no usable ISBN.
func firstValidISBN(r *domain.MetadataRecord) string {
	for _, raw := range r.ISBN {
		if norm := normalize.NormalizeISBN(raw, true); norm != "" {
			return norm
		}
	}
	return ""
}

// mergeGroup collapses one group into a single record: sort by each
// record's own confidence descending (stable, so provider registration
// order breaks ties), take the top as primary, union array fields, and
// fill every unset scalar from the next-highest-confidence record that has
// it. Fill-missing never overwrites a present value.
func mergeGroup(members []*domain.MetadataRecord) *domain.MetadataRecord {
	if len(members) == 1 {
		out := members[0].Clone()
		if out.Provider == "" {
			out.Provider = out.Source
		}
		return out
	}

	ranked := append([]*domain.MetadataRecord(nil), members...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})

	out := ranked[0].Clone()
	names := make([]string, 0, len(ranked))
	for _, r := range ranked {
		names = append(names, r.Source)
	}
	out.Provider = strings.Join(names, ", ")

	for _, r := range ranked[1:] {
		out.ISBN = unionBy(out.ISBN, r.ISBN, func(s string) string {
			if n := normalize.NormalizeISBN(s, true); n != "" {
				return n
			}
			return normalize.CleanISBN(s)
		})
		out.Authors = unionBy(out.Authors, r.Authors, normalize.CreatorName)
		out.Subjects = unionBy(out.Subjects, r.Subjects, normalize.ForComparison)

		if out.Title == "" {
			out.Title = r.Title
		}
		if out.Description == "" {
			out.Description = r.Description
		}
		if out.Publisher == "" {
			out.Publisher = r.Publisher
		}
		if out.PublicationDate == "" {
			out.PublicationDate = r.PublicationDate
		}
		if out.Language == "" {
			out.Language = r.Language
		}
		if out.Edition == "" {
			out.Edition = r.Edition
		}
		if out.PageCount == 0 {
			out.PageCount = r.PageCount
		}
		if out.Series == nil && r.Series != nil {
			s := *r.Series
			out.Series = &s
		}
		if out.CoverImage == "" {
			out.CoverImage = r.CoverImage
		}
		if out.PhysicalDimensions == "" {
			out.PhysicalDimensions = r.PhysicalDimensions
		}
	}
	return out
}

// unionBy appends elements of add whose key is not already present in base,
// preserving base's display forms and order.
func unionBy(base, add []string, key func(string) string) []string {
	seen := make(map[string]bool, len(base))
	for _, v := range base {
		seen[key(v)] = true
	}
	out := base
	for _, v := range add {
		k := key(v)
		if v == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, v)
	}
	return out
}
