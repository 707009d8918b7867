package aggregate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/openshelf/metadata-service/internal/confidence"
	"github.com/openshelf/metadata-service/internal/domain"
	"github.com/openshelf/metadata-service/internal/match"
	"github.com/openshelf/metadata-service/internal/observability"
	"github.com/openshelf/metadata-service/internal/providers"
)

// Options configures an Aggregator. The zero value enables deduplication
// and consensus with a quorum of one and no global timeout.
type Options struct {
	// MinProviders is the number of providers that must respond
	// successfully for a call to succeed. Defaults to 1.
	MinProviders int

	// DisableDedup returns raw per-provider records without merging.
	DisableDedup bool

	// DisableConsensus skips the consensus confidence computation.
	DisableConsensus bool

	// GlobalTimeout bounds the whole fan-out. When it fires, whatever
	// providers had already settled form the result; the rest are marked
	// domain.ErrNotReached. Zero means no global bound.
	GlobalTimeout time.Duration

	// TitleSimilarity is the threshold for title-based dedup grouping.
	// Defaults to match.DefaultSimilarityThreshold.
	TitleSimilarity float64
}

// Aggregator fans queries out to every registered provider concurrently
// under error isolation, then deduplicates, merges, and scores the results.
// It holds no long-lived mutable state; all bookkeeping is per-call.
type Aggregator struct {
	registry *providers.Registry
	engine   *confidence.Engine
	opts     Options
	logger   zerolog.Logger
	metrics  *observability.Metrics
}

// New creates an Aggregator. Fails with domain.ErrNoProviders when the
// registry is empty: an aggregator with nothing to aggregate is a
// configuration error, not a degraded mode. metrics may be nil.
func New(registry *providers.Registry, engine *confidence.Engine, opts Options, logger zerolog.Logger, metrics *observability.Metrics) (*Aggregator, error) {
	if registry == nil || registry.Len() == 0 {
		return nil, domain.ErrNoProviders
	}
	if opts.MinProviders <= 0 {
		opts.MinProviders = 1
	}
	if opts.TitleSimilarity == 0 {
		opts.TitleSimilarity = match.DefaultSimilarityThreshold
	}
	return &Aggregator{
		registry: registry,
		engine:   engine,
		opts:     opts,
		logger:   logger.With().Str("component", "aggregator").Logger(),
		metrics:  metrics,
	}, nil
}

// SearchByISBN fans an ISBN lookup out to all providers.
func (a *Aggregator) SearchByISBN(ctx context.Context, isbn string) (*AggregatedResult, error) {
	if isbn == "" {
		return nil, fmt.Errorf("%w: empty ISBN", domain.ErrInvalidInput)
	}
	return a.run(ctx, "isbn", isbn, func(ctx context.Context, p providers.MetadataProvider) ([]*domain.MetadataRecord, error) {
		return p.SearchByISBN(ctx, isbn)
	})
}

// SearchByTitle fans a title search out to all providers.
func (a *Aggregator) SearchByTitle(ctx context.Context, q providers.TitleQuery) (*AggregatedResult, error) {
	if q.Title == "" {
		return nil, fmt.Errorf("%w: empty title", domain.ErrInvalidInput)
	}
	return a.run(ctx, "title", q.Title, func(ctx context.Context, p providers.MetadataProvider) ([]*domain.MetadataRecord, error) {
		return p.SearchByTitle(ctx, q)
	})
}

// SearchMultiCriteria fans a multi-criteria search out to all providers.
func (a *Aggregator) SearchMultiCriteria(ctx context.Context, q providers.MultiQuery) (*AggregatedResult, error) {
	if q.Title == "" && q.Creator == "" && q.ISBN == "" && q.Publisher == "" && q.Year == 0 {
		return nil, fmt.Errorf("%w: at least one search criterion is required", domain.ErrInvalidInput)
	}
	desc := q.Title
	if desc == "" {
		desc = q.ISBN
	}
	return a.run(ctx, "multi", desc, func(ctx context.Context, p providers.MetadataProvider) ([]*domain.MetadataRecord, error) {
		return p.SearchMultiCriteria(ctx, q)
	})
}

// outcome is one provider's settled fan-out result.
type outcome struct {
	name    string
	order   int
	records []*domain.MetadataRecord
	err     error
	took    time.Duration
}

// run executes the settle-all fan-out: every provider is queried
// concurrently, failures are captured rather than propagated, and siblings
// are never cancelled because one of them failed. The only error paths out
// are context cancellation bookkeeping and the quorum check after all
// providers settle.
func (a *Aggregator) run(ctx context.Context, op, queryDesc string, call func(context.Context, providers.MetadataProvider) ([]*domain.MetadataRecord, error)) (*AggregatedResult, error) {
	provs := a.registry.All()
	logger := observability.WithAggregationContext(a.logger, uuid.NewString(), queryDesc)
	start := time.Now()
	if a.metrics != nil {
		a.metrics.AggregationsStarted.WithLabelValues(op).Inc()
	}

	// Cancellable so stragglers can stop early once the global timeout
	// fires. Cooperative only: a provider that ignores its context simply
	// keeps running in the background.
	fanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan outcome, len(provs))
	for i, p := range provs {
		go func(order int, p providers.MetadataProvider) {
			callCtx := fanCtx
			if t := p.Timeout().OperationTimeout; t > 0 {
				var cancelOp context.CancelFunc
				callCtx, cancelOp = context.WithTimeout(fanCtx, t)
				defer cancelOp()
			}
			if a.metrics != nil {
				a.metrics.SearchesStarted.WithLabelValues(p.Name()).Inc()
			}
			began := time.Now()
			records, err := call(callCtx, p)
			ch <- outcome{
				name:    p.Name(),
				order:   order,
				records: records,
				err:     err,
				took:    time.Since(began),
			}
		}(i, p)
	}

	var globalTimer <-chan time.Time
	if a.opts.GlobalTimeout > 0 {
		t := time.NewTimer(a.opts.GlobalTimeout)
		defer t.Stop()
		globalTimer = t.C
	}

	settled := make([]outcome, 0, len(provs))
	timedOut := false
collect:
	for len(settled) < len(provs) {
		select {
		case o := <-ch:
			settled = append(settled, o)
		case <-globalTimer:
			timedOut = true
			break collect
		}
	}
	if timedOut {
		cancel()
	}
	sort.Slice(settled, func(i, j int) bool { return settled[i].order < settled[j].order })

	result := &AggregatedResult{
		ProviderResults: make(map[string][]*domain.MetadataRecord),
		Timing:          make(map[string]time.Duration, len(provs)),
		Errors:          make(map[string]error),
	}
	settledNames := make(map[string]bool, len(settled))
	var raw []*domain.MetadataRecord
	for _, o := range settled {
		settledNames[o.name] = true
		result.Timing[o.name] = o.took
		if o.err != nil {
			result.Errors[o.name] = o.err
			if a.metrics != nil {
				a.metrics.SearchesFailed.WithLabelValues(o.name).Inc()
			}
			logger.Warn().Err(o.err).Str("provider", o.name).Dur("took", o.took).Msg("provider search failed")
			continue
		}
		result.ProviderResults[o.name] = o.records
		raw = append(raw, o.records...)
		if a.metrics != nil {
			a.metrics.SearchesCompleted.WithLabelValues(o.name).Inc()
			a.metrics.SearchDuration.WithLabelValues(o.name).Observe(o.took.Seconds())
			a.metrics.RecordsPerSearch.WithLabelValues(o.name).Observe(float64(len(o.records)))
		}
	}
	for _, p := range provs {
		if !settledNames[p.Name()] {
			result.Errors[p.Name()] = domain.ErrNotReached
			result.Timing[p.Name()] = a.opts.GlobalTimeout
		}
	}

	if succeeded := len(result.ProviderResults); succeeded < a.opts.MinProviders {
		if a.metrics != nil {
			a.metrics.AggregationsFailed.WithLabelValues(op).Inc()
		}
		logger.Error().
			Int("succeeded", succeeded).
			Int("required", a.opts.MinProviders).
			Msg("provider quorum not met")
		return nil, domain.NewQuorumError(succeeded, a.opts.MinProviders, result.Errors)
	}

	if a.opts.DisableDedup {
		for _, r := range raw {
			c := r.Clone()
			if c.Provider == "" {
				c.Provider = c.Source
			}
			result.Results = append(result.Results, c)
		}
	} else {
		result.Results = dedupe(raw, a.opts.TitleSimilarity)
		if a.metrics != nil && len(raw) > len(result.Results) {
			a.metrics.RecordsMerged.Add(float64(len(raw) - len(result.Results)))
		}
	}

	if !a.opts.DisableConsensus && len(result.Results) > 0 {
		result.Consensus = a.consensus(result.Results)
		if a.metrics != nil {
			a.metrics.ConsensusConfidence.Observe(result.Consensus.Confidence)
		}
	}

	if a.metrics != nil {
		a.metrics.AggregationDuration.Observe(time.Since(start).Seconds())
	}
	logger.Info().
		Str("operation", op).
		Int("providers", len(provs)).
		Int("succeeded", len(result.ProviderResults)).
		Int("results", len(result.Results)).
		Dur("took", time.Since(start)).
		Msg("aggregation complete")
	return result, nil
}

// consensus scores the deduplicated results with provider-tagging fields
// stripped, so attribution strings never influence agreement.
func (a *Aggregator) consensus(results []*domain.MetadataRecord) *Consensus {
	stripped := make([]*domain.MetadataRecord, len(results))
	for i, r := range results {
		c := r.Clone()
		c.Provider = ""
		c.Source = ""
		stripped[i] = c
	}
	factors := a.engine.Score(stripped)
	return &Consensus{
		Confidence:     factors.Final,
		AgreementScore: factors.Underlying.AgreementScore,
		Factors:        factors,
	}
}

// Engine exposes the aggregator's confidence engine for callers (the
// conflict detector) that score subsets of a result.
func (a *Aggregator) Engine() *confidence.Engine {
	return a.engine
}
