package reconcile

import (
	"fmt"

	"github.com/openshelf/metadata-service/internal/domain"
	"github.com/openshelf/metadata-service/internal/normalize"
)

// DateReconciler merges publication date claims. Finer precision wins;
// remaining ties break by source reliability.
type DateReconciler struct{}

// NewDateReconciler creates a DateReconciler.
func NewDateReconciler() *DateReconciler {
	return &DateReconciler{}
}

// precisionFactor weights confidence by how much of the date is known.
func precisionFactor(p domain.DatePrecision) float64 {
	switch p {
	case domain.PrecisionDay:
		return 1.0
	case domain.PrecisionMonth:
		return 0.9
	case domain.PrecisionYear:
		return 0.8
	default:
		return 0.3
	}
}

// Reconcile parses each source's raw date string and resolves one
// publication date. Returns domain.ErrNoInput when called with zero inputs.
func (r *DateReconciler) Reconcile(inputs []Input[string]) (domain.ReconciledField[domain.PublicationDate], error) {
	var out domain.ReconciledField[domain.PublicationDate]
	if len(inputs) == 0 {
		return out, domain.ErrNoInput
	}

	type candidate struct {
		date domain.PublicationDate
		in   Input[string]
	}
	ranked := sortByReliability(inputs)
	candidates := make([]candidate, len(ranked))
	for i, in := range ranked {
		candidates[i] = candidate{date: normalize.ParseDate(in.Value), in: in}
	}

	// Group compatible dates: two dates agree when equal at the coarser of
	// their precisions. First-match linear scan keeps grouping deterministic.
	var groups [][]candidate
	for _, c := range candidates {
		placed := false
		for gi, group := range groups {
			if c.date.Precision != domain.PrecisionUnknown && group[0].date.Equal(c.date) {
				groups[gi] = append(group, c)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, []candidate{c})
		}
	}

	if len(groups) > 1 {
		conflict := domain.Conflict{Field: domain.FieldPublicationDate}
		for _, c := range candidates {
			conflict.Values = append(conflict.Values, domain.ConflictValue{
				Value:  c.in.Value,
				Source: c.in.Source.Name,
			})
		}
		conflict.Resolution = "chose the most precise date from the most reliable source"
		out.Conflicts = append(out.Conflicts, conflict)
	}

	// Winner: finest precision across all candidates; reliability breaks
	// ties because candidates are already in reliability order.
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.date.Precision.FinerThan(best.date.Precision) {
			best = c
		}
	}

	conf := best.in.Source.Reliability * precisionFactor(best.date.Precision)
	if best.date.Precision != domain.PrecisionUnknown && !best.date.YearPlausible() {
		conf *= 0.5
	}
	out.Value = best.date
	out.Confidence = clamp(conf)
	out.Sources = sources(ranked)

	switch {
	case len(inputs) == 1:
		out.Reasoning = fmt.Sprintf("single source %s, precision %s", best.in.Source.Name, best.date.Precision)
	case len(groups) == 1:
		out.Reasoning = fmt.Sprintf("%d sources agree, finest precision %s from %s",
			len(inputs), best.date.Precision, best.in.Source.Name)
	default:
		out.Reasoning = fmt.Sprintf("%d sources disagree across %d date groups; took %s precision from %s",
			len(inputs), len(groups), best.date.Precision, best.in.Source.Name)
	}
	return out, nil
}
