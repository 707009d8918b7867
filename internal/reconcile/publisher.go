package reconcile

import (
	"fmt"
	"strings"

	"github.com/openshelf/metadata-service/internal/domain"
	"github.com/openshelf/metadata-service/internal/match"
)

// PublisherReconciler merges publisher name claims using canonical alias
// clusters (imprint -> parent group) with edit-distance fallback.
type PublisherReconciler struct{}

// NewPublisherReconciler creates a PublisherReconciler.
func NewPublisherReconciler() *PublisherReconciler {
	return &PublisherReconciler{}
}

// Reconcile resolves one publisher name. Returns domain.ErrNoInput when
// called with zero inputs.
func (r *PublisherReconciler) Reconcile(inputs []Input[string]) (domain.ReconciledField[string], error) {
	var out domain.ReconciledField[string]
	if len(inputs) == 0 {
		return out, domain.ErrNoInput
	}

	ranked := sortByReliability(inputs)

	// Group by publisher identity: normalized match, shared alias cluster,
	// or similarity fallback. First-match linear scan; groups keep
	// reliability order because ranked does.
	var groups [][]Input[string]
	for _, in := range ranked {
		placed := false
		for gi, group := range groups {
			if match.SamePublisher(group[0].Value, in.Value) {
				groups[gi] = append(group, in)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, []Input[string]{in})
		}
	}

	if len(groups) > 1 {
		conflict := domain.Conflict{Field: domain.FieldPublisher}
		for _, in := range ranked {
			conflict.Values = append(conflict.Values, domain.ConflictValue{
				Value:  in.Value,
				Source: in.Source.Name,
			})
		}
		conflict.Resolution = "chose the most reliable source in the largest publisher group"
		out.Conflicts = append(out.Conflicts, conflict)
	}

	// Winner group: largest, then most reliable leading member.
	best := groups[0]
	for _, g := range groups[1:] {
		if len(g) > len(best) {
			best = g
		}
	}
	winner := best[0] // highest reliability in the group

	conf := winner.Source.Reliability
	canonical, resolved := match.CanonicalPublisher(winner.Value)
	switch {
	case resolved && match.IsMajorPublisher(canonical):
		conf *= 1.2
	case resolved:
		conf *= 1.1
	}

	out.Value = strings.TrimSpace(winner.Value)
	out.Confidence = clamp(conf)
	out.Sources = sources(ranked)

	switch {
	case len(inputs) == 1:
		out.Reasoning = fmt.Sprintf("single source %s", winner.Source.Name)
	case len(groups) == 1:
		out.Reasoning = fmt.Sprintf("%d sources agree on publisher", len(inputs))
	default:
		out.Reasoning = fmt.Sprintf("%d sources split across %d publisher groups; took %q from %s",
			len(inputs), len(groups), out.Value, winner.Source.Name)
	}
	if resolved {
		out.Reasoning += fmt.Sprintf(" (canonical: %s)", canonical)
	}
	return out, nil
}
