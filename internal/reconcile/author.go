package reconcile

import (
	"fmt"
	"sort"

	"github.com/openshelf/metadata-service/internal/domain"
	"github.com/openshelf/metadata-service/internal/match"
)

// AuthorReconciler merges author lists across sources. Name variants that
// are equivalent under match.NamesEquivalent collapse into one author,
// represented by the best display form among the variants.
type AuthorReconciler struct{}

// NewAuthorReconciler creates an AuthorReconciler.
func NewAuthorReconciler() *AuthorReconciler {
	return &AuthorReconciler{}
}

// authorClass is one equivalence class of name variants.
type authorClass struct {
	variants []string
	// sources that contributed at least one variant.
	sources map[string]bool
	// firstSeen preserves candidate order for deterministic output.
	firstSeen int
}

// Reconcile resolves the author list. Returns domain.ErrNoInput when called
// with zero inputs.
func (r *AuthorReconciler) Reconcile(inputs []Input[[]string]) (domain.ReconciledField[[]string], error) {
	var out domain.ReconciledField[[]string]
	if len(inputs) == 0 {
		return out, domain.ErrNoInput
	}

	ranked := sortByReliability(inputs)

	var classes []*authorClass
	order := 0
	for _, in := range ranked {
		for _, name := range in.Value {
			if name == "" {
				continue
			}
			var home *authorClass
			for _, c := range classes {
				if match.NamesEquivalent(c.variants[0], name) {
					home = c
					break
				}
			}
			if home == nil {
				home = &authorClass{sources: make(map[string]bool), firstSeen: order}
				order++
				classes = append(classes, home)
			}
			home.variants = append(home.variants, name)
			home.sources[in.Source.Name] = true
		}
	}

	sort.SliceStable(classes, func(i, j int) bool {
		return classes[i].firstSeen < classes[j].firstSeen
	})

	names := make([]string, 0, len(classes))
	shared := 0
	for _, c := range classes {
		names = append(names, match.PreferredNameFormat(c.variants))
		if len(c.sources) > 1 {
			shared++
		}
	}

	// Sources that list authors the others lack constitute a conflict.
	if len(ranked) > 1 && shared < len(classes) {
		conflict := domain.Conflict{Field: domain.FieldAuthors}
		for _, in := range ranked {
			conflict.Values = append(conflict.Values, domain.ConflictValue{
				Value:  fmt.Sprintf("%v", in.Value),
				Source: in.Source.Name,
			})
		}
		conflict.Resolution = "kept the union of all equivalent author names"
		out.Conflicts = append(out.Conflicts, conflict)
	}

	out.Value = names
	out.Sources = sources(ranked)

	// Confidence rewards corroboration: fully shared author lists score the
	// average reliability; authors only one source knows about drag it down.
	sharedFraction := 1.0
	if len(classes) > 0 && len(ranked) > 1 {
		sharedFraction = float64(shared) / float64(len(classes))
	}
	out.Confidence = clamp(avgReliability(out.Sources) * (0.5 + 0.5*sharedFraction))

	switch {
	case len(inputs) == 1:
		out.Reasoning = fmt.Sprintf("single source %s", ranked[0].Source.Name)
	default:
		out.Reasoning = fmt.Sprintf("%d author lists merged into %d authors (%d corroborated)",
			len(inputs), len(classes), shared)
	}
	return out, nil
}
