// Package reconcile resolves single semantic fields (dates, publishers,
// series, authors, subjects, identifiers, page counts) across multiple
// disagreeing sources into one best value with a confidence score and an
// explicit conflict trail.
//
// Every reconciler follows the same shape: normalize each input into the
// canonical entity form, group by a similarity key, record a conflict when
// more than one group survives, select the best candidate by the field's
// tie-break rule, merge supplementary data fill-missing from lower-ranked
// candidates, and compute a field-specific confidence.
//
// Reconcilers fail only on a caller contract violation (zero inputs); all
// data-level noise degrades to best-effort output.
package reconcile

import (
	"sort"

	"github.com/openshelf/metadata-service/internal/domain"
)

// Input pairs one source's claim for a field with its provenance.
type Input[T any] struct {
	Value  T
	Source domain.MetadataSource
}

// sortByReliability orders inputs by descending source reliability, with
// source name as the stable secondary key so output is deterministic when
// reliabilities tie.
func sortByReliability[T any](inputs []Input[T]) []Input[T] {
	out := append([]Input[T](nil), inputs...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Source.Reliability != out[j].Source.Reliability {
			return out[i].Source.Reliability > out[j].Source.Reliability
		}
		return out[i].Source.Name < out[j].Source.Name
	})
	return out
}

// sources extracts the provenance list from a set of inputs.
func sources[T any](inputs []Input[T]) []domain.MetadataSource {
	out := make([]domain.MetadataSource, len(inputs))
	for i, in := range inputs {
		out[i] = in.Source
	}
	return out
}

// clamp bounds a confidence to [0,1]. Reconciler outputs are further
// floored/ceilinged by the confidence engine's [0.3, 0.98] bounds when they
// feed a consensus computation.
func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// avgReliability is the arithmetic mean of the sources' reliabilities.
func avgReliability(srcs []domain.MetadataSource) float64 {
	if len(srcs) == 0 {
		return 0
	}
	var sum float64
	for _, s := range srcs {
		sum += s.Reliability
	}
	return sum / float64(len(srcs))
}
