// Package aggregate coordinates metadata queries across all registered
// providers: concurrent settle-all fan-out with per-provider timing and
// error isolation, identifier- and title-based deduplication, confidence-
// ordered record merging, and consensus scoring over the merged results.
package aggregate

import (
	"time"

	"github.com/openshelf/metadata-service/internal/confidence"
	"github.com/openshelf/metadata-service/internal/domain"
)

// Consensus summarizes the confidence engine's verdict over one call's
// deduplicated results.
type Consensus struct {
	Confidence     float64
	AgreementScore float64
	Factors        confidence.Factors
}

// AggregatedResult is the outcome of one aggregation call. It is transient
// and call-scoped; nothing in it is persisted by the core.
type AggregatedResult struct {
	// Results are the deduplicated, merged records. Each merged record's
	// Provider field is the comma-joined attribution of every contributor
	// in confidence order. May be empty: no results is a valid outcome.
	Results []*domain.MetadataRecord

	// ProviderResults maps each provider to its raw, unmerged records.
	ProviderResults map[string][]*domain.MetadataRecord

	// Timing records each provider's elapsed time, including failures.
	Timing map[string]time.Duration

	// Errors maps failed providers to their error. A provider that had not
	// settled when the global timeout fired maps to domain.ErrNotReached,
	// distinguishing "failed" from "never got a chance to answer."
	Errors map[string]error

	// Consensus is the confidence verdict over Results; nil when consensus
	// scoring is disabled or no results remained.
	Consensus *Consensus
}

// Succeeded returns the number of providers that answered without error.
func (r *AggregatedResult) Succeeded() int {
	return len(r.ProviderResults)
}
