package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/openshelf/metadata-service/internal/domain"
	"github.com/openshelf/metadata-service/internal/normalize"
)

// SubjectReconciler unions subject lists across sources, deduplicated by
// comparison key, keeping the first-seen display form.
type SubjectReconciler struct{}

// NewSubjectReconciler creates a SubjectReconciler.
func NewSubjectReconciler() *SubjectReconciler {
	return &SubjectReconciler{}
}

// Reconcile merges subject lists. Returns domain.ErrNoInput when called
// with zero inputs.
func (r *SubjectReconciler) Reconcile(inputs []Input[[]string]) (domain.ReconciledField[[]string], error) {
	var out domain.ReconciledField[[]string]
	if len(inputs) == 0 {
		return out, domain.ErrNoInput
	}

	ranked := sortByReliability(inputs)
	seen := make(map[string]bool)
	var subjects []string
	for _, in := range ranked {
		for _, s := range in.Value {
			key := normalize.ForComparison(s)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			subjects = append(subjects, strings.TrimSpace(s))
		}
	}

	out.Value = subjects
	out.Sources = sources(ranked)
	out.Confidence = clamp(avgReliability(out.Sources))
	out.Reasoning = fmt.Sprintf("union of %d subject lists, %d distinct subjects", len(inputs), len(subjects))
	return out, nil
}

// IdentifierReconciler unions typed identifiers, normalizing ISBNs before
// deduplication so a hyphenated and a bare form of the same number collapse.
type IdentifierReconciler struct{}

// NewIdentifierReconciler creates an IdentifierReconciler.
func NewIdentifierReconciler() *IdentifierReconciler {
	return &IdentifierReconciler{}
}

// Reconcile merges identifier sets. Returns domain.ErrNoInput when called
// with zero inputs.
func (r *IdentifierReconciler) Reconcile(inputs []Input[[]domain.Identifier]) (domain.ReconciledField[[]domain.Identifier], error) {
	var out domain.ReconciledField[[]domain.Identifier]
	if len(inputs) == 0 {
		return out, domain.ErrNoInput
	}

	ranked := sortByReliability(inputs)
	seen := make(map[domain.Identifier]bool)
	var ids []domain.Identifier
	for _, in := range ranked {
		for _, id := range in.Value {
			norm := id
			switch id.Type {
			case domain.IdentifierTypeISBN10, domain.IdentifierTypeISBN13:
				if v := normalize.NormalizeISBN(id.Value, id.Type == domain.IdentifierTypeISBN13); v != "" {
					norm.Value = v
				} else {
					norm.Value = normalize.CleanISBN(id.Value)
				}
			default:
				norm.Value = strings.TrimSpace(id.Value)
			}
			if norm.Value == "" || seen[norm] {
				continue
			}
			seen[norm] = true
			ids = append(ids, norm)
		}
	}
	sort.SliceStable(ids, func(i, j int) bool {
		if ids[i].Type != ids[j].Type {
			return ids[i].Type < ids[j].Type
		}
		return ids[i].Value < ids[j].Value
	})

	out.Value = ids
	out.Sources = sources(ranked)
	out.Confidence = clamp(avgReliability(out.Sources))
	out.Reasoning = fmt.Sprintf("union of %d identifier sets, %d distinct identifiers", len(inputs), len(ids))
	return out, nil
}

// PageCountReconciler resolves page counts. Counts within 5% of each other
// are treated as the same edition (binding differences); a larger spread is
// a conflict.
type PageCountReconciler struct{}

// NewPageCountReconciler creates a PageCountReconciler.
func NewPageCountReconciler() *PageCountReconciler {
	return &PageCountReconciler{}
}

// Reconcile resolves one page count. Returns domain.ErrNoInput when called
// with zero inputs.
func (r *PageCountReconciler) Reconcile(inputs []Input[int]) (domain.ReconciledField[int], error) {
	var out domain.ReconciledField[int]
	if len(inputs) == 0 {
		return out, domain.ErrNoInput
	}

	ranked := sortByReliability(inputs)
	winner := ranked[0]

	disagree := false
	for _, in := range ranked[1:] {
		if in.Value <= 0 || winner.Value <= 0 {
			continue
		}
		maxV := winner.Value
		if in.Value > maxV {
			maxV = in.Value
		}
		diff := winner.Value - in.Value
		if diff < 0 {
			diff = -diff
		}
		if float64(diff)/float64(maxV) > 0.05 {
			disagree = true
		}
	}
	if disagree {
		conflict := domain.Conflict{Field: domain.FieldPageCount}
		for _, in := range ranked {
			conflict.Values = append(conflict.Values, domain.ConflictValue{
				Value:  fmt.Sprintf("%d", in.Value),
				Source: in.Source.Name,
			})
		}
		conflict.Resolution = "kept the most reliable source's count"
		out.Conflicts = append(out.Conflicts, conflict)
	}

	out.Value = winner.Value
	out.Sources = sources(ranked)
	conf := winner.Source.Reliability
	if disagree {
		conf *= 0.8
	}
	out.Confidence = clamp(conf)
	if len(inputs) == 1 {
		out.Reasoning = fmt.Sprintf("single source %s", winner.Source.Name)
	} else {
		out.Reasoning = fmt.Sprintf("%d sources, kept %d pages from %s", len(inputs), winner.Value, winner.Source.Name)
	}
	return out, nil
}

// LanguageReconciler resolves a language code by normalized majority vote,
// with reliability breaking ties.
type LanguageReconciler struct{}

// NewLanguageReconciler creates a LanguageReconciler.
func NewLanguageReconciler() *LanguageReconciler {
	return &LanguageReconciler{}
}

// Reconcile resolves one language code. Returns domain.ErrNoInput when
// called with zero inputs.
func (r *LanguageReconciler) Reconcile(inputs []Input[string]) (domain.ReconciledField[string], error) {
	var out domain.ReconciledField[string]
	if len(inputs) == 0 {
		return out, domain.ErrNoInput
	}

	ranked := sortByReliability(inputs)
	votes := make(map[string]int)
	var order []string
	for _, in := range ranked {
		code := normalize.LanguageCode(in.Value)
		if code == "" {
			continue
		}
		if votes[code] == 0 {
			order = append(order, code)
		}
		votes[code]++
	}

	// Majority wins; ties keep the earliest claimant, which is the most
	// reliable because ranked is reliability-ordered.
	best := ""
	for _, code := range order {
		if best == "" || votes[code] > votes[best] {
			best = code
		}
	}

	if len(votes) > 1 {
		conflict := domain.Conflict{Field: domain.FieldLanguage}
		for _, in := range ranked {
			conflict.Values = append(conflict.Values, domain.ConflictValue{
				Value:  in.Value,
				Source: in.Source.Name,
			})
		}
		conflict.Resolution = fmt.Sprintf("majority vote chose %q", best)
		out.Conflicts = append(out.Conflicts, conflict)
	}

	out.Value = best
	out.Sources = sources(ranked)
	conf := avgReliability(out.Sources)
	if len(votes) > 1 {
		conf *= float64(votes[best]) / float64(len(inputs))
	}
	out.Confidence = clamp(conf)
	out.Reasoning = fmt.Sprintf("%d sources, %d distinct codes", len(inputs), len(votes))
	return out, nil
}
