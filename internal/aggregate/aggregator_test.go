package aggregate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/metadata-service/internal/confidence"
	"github.com/openshelf/metadata-service/internal/domain"
	"github.com/openshelf/metadata-service/internal/providers"
)

func duneRecord(source string, conf float64) *domain.MetadataRecord {
	return &domain.MetadataRecord{
		Source:          source,
		Confidence:      conf,
		Title:           "Dune",
		Authors:         []string{"Frank Herbert"},
		ISBN:            []string{"9780441013593"},
		PublicationDate: "1965",
	}
}

// slowProvider delays every search until either its delay elapses or the
// context is cancelled.
type slowProvider struct {
	*providers.StaticProvider
	delay time.Duration
}

func (p *slowProvider) SearchByISBN(ctx context.Context, isbn string) ([]*domain.MetadataRecord, error) {
	select {
	case <-time.After(p.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return p.StaticProvider.SearchByISBN(ctx, isbn)
}

func newTestAggregator(t *testing.T, opts Options, provs ...providers.MetadataProvider) *Aggregator {
	t.Helper()
	registry := providers.NewRegistry()
	for _, p := range provs {
		registry.Register(p)
	}
	agg, err := New(registry, confidence.NewEngine(confidence.DefaultTuning()), opts, zerolog.Nop(), nil)
	require.NoError(t, err)
	return agg
}

func TestNew_RequiresProviders(t *testing.T) {
	t.Parallel()
	engine := confidence.NewEngine(confidence.DefaultTuning())

	_, err := New(nil, engine, Options{}, zerolog.Nop(), nil)
	assert.ErrorIs(t, err, domain.ErrNoProviders)

	_, err = New(providers.NewRegistry(), engine, Options{}, zerolog.Nop(), nil)
	assert.ErrorIs(t, err, domain.ErrNoProviders)
}

func TestSearchByISBN_MergesAcrossProviders(t *testing.T) {
	t.Parallel()
	agg := newTestAggregator(t, Options{},
		providers.NewStaticProvider("openlibrary", 10, []*domain.MetadataRecord{duneRecord("openlibrary", 0.9)}, nil),
		providers.NewStaticProvider("googlebooks", 5, []*domain.MetadataRecord{duneRecord("googlebooks", 0.8)}, nil),
	)

	result, err := agg.SearchByISBN(context.Background(), "9780441013593")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Succeeded())
	require.Len(t, result.Results, 1)
	assert.Equal(t, "openlibrary, googlebooks", result.Results[0].Provider)
	assert.Len(t, result.ProviderResults["openlibrary"], 1)
	assert.Len(t, result.ProviderResults["googlebooks"], 1)
	assert.Empty(t, result.Errors)

	require.NotNil(t, result.Consensus)
	assert.GreaterOrEqual(t, result.Consensus.Confidence, 0.3)
	assert.LessOrEqual(t, result.Consensus.Confidence, 0.98)
}

func TestSearchByISBN_IsolatesFailures(t *testing.T) {
	t.Parallel()
	upstream := errors.New("upstream down")
	agg := newTestAggregator(t, Options{},
		providers.NewStaticProvider("openlibrary", 10, []*domain.MetadataRecord{duneRecord("openlibrary", 0.9)}, nil),
		providers.NewFailingProvider("broken", upstream),
	)

	result, err := agg.SearchByISBN(context.Background(), "9780441013593")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Succeeded())
	require.Len(t, result.Results, 1)
	assert.ErrorIs(t, result.Errors["broken"], upstream)
	assert.Contains(t, result.Timing, "broken")
}

func TestSearchByISBN_QuorumNotMet(t *testing.T) {
	t.Parallel()
	agg := newTestAggregator(t, Options{MinProviders: 2},
		providers.NewStaticProvider("openlibrary", 10, []*domain.MetadataRecord{duneRecord("openlibrary", 0.9)}, nil),
		providers.NewFailingProvider("broken", errors.New("upstream down")),
	)

	_, err := agg.SearchByISBN(context.Background(), "9780441013593")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrQuorumNotMet)

	var qErr *domain.QuorumError
	require.ErrorAs(t, err, &qErr)
	assert.Equal(t, 1, qErr.Succeeded)
	assert.Equal(t, 2, qErr.Required)
	assert.Contains(t, qErr.Errors, "broken")
	assert.Equal(t, "only 1 provider(s) responded successfully, 2 required", qErr.Error())
}

func TestSearchByISBN_GlobalTimeout(t *testing.T) {
	t.Parallel()
	slow := &slowProvider{
		StaticProvider: providers.NewStaticProvider("slow", 1, []*domain.MetadataRecord{duneRecord("slow", 0.9)}, nil),
		delay:          time.Second,
	}
	agg := newTestAggregator(t, Options{GlobalTimeout: 50 * time.Millisecond},
		providers.NewStaticProvider("openlibrary", 10, []*domain.MetadataRecord{duneRecord("openlibrary", 0.9)}, nil),
		slow,
	)

	result, err := agg.SearchByISBN(context.Background(), "9780441013593")
	require.NoError(t, err)

	// The fast provider's answer stands; the straggler is marked as never
	// reached rather than failed.
	assert.Equal(t, 1, result.Succeeded())
	assert.ErrorIs(t, result.Errors["slow"], domain.ErrNotReached)
	assert.Equal(t, 50*time.Millisecond, result.Timing["slow"])
}

func TestSearchByTitle_EmptyResultsIsValid(t *testing.T) {
	t.Parallel()
	agg := newTestAggregator(t, Options{},
		providers.NewStaticProvider("openlibrary", 10, []*domain.MetadataRecord{duneRecord("openlibrary", 0.9)}, nil),
	)

	result, err := agg.SearchByTitle(context.Background(), providers.TitleQuery{Title: "No Such Book"})
	require.NoError(t, err)

	assert.Empty(t, result.Results)
	assert.Nil(t, result.Consensus)
	assert.Equal(t, 1, result.Succeeded())
}

func TestSearchByISBN_DisableDedup(t *testing.T) {
	t.Parallel()
	agg := newTestAggregator(t, Options{DisableDedup: true, DisableConsensus: true},
		providers.NewStaticProvider("openlibrary", 10, []*domain.MetadataRecord{duneRecord("openlibrary", 0.9)}, nil),
		providers.NewStaticProvider("googlebooks", 5, []*domain.MetadataRecord{duneRecord("googlebooks", 0.8)}, nil),
	)

	result, err := agg.SearchByISBN(context.Background(), "9780441013593")
	require.NoError(t, err)

	require.Len(t, result.Results, 2)
	for _, r := range result.Results {
		assert.Equal(t, r.Source, r.Provider)
	}
	assert.Nil(t, result.Consensus)
}

func TestSearchMultiCriteria_Conjunctive(t *testing.T) {
	t.Parallel()
	other := duneRecord("openlibrary", 0.8)
	other.Title = "Dune Messiah"
	other.ISBN = []string{"9780140283297"}
	agg := newTestAggregator(t, Options{},
		providers.NewStaticProvider("openlibrary", 10, []*domain.MetadataRecord{duneRecord("openlibrary", 0.9), other}, nil),
	)

	result, err := agg.SearchMultiCriteria(context.Background(), providers.MultiQuery{
		Title:   "Dune",
		Creator: "Frank Herbert",
		Year:    1965,
	})
	require.NoError(t, err)

	require.Len(t, result.Results, 1)
	assert.Equal(t, "Dune", result.Results[0].Title)
}

func TestSearch_RejectsEmptyQueries(t *testing.T) {
	t.Parallel()
	agg := newTestAggregator(t, Options{},
		providers.NewStaticProvider("openlibrary", 10, []*domain.MetadataRecord{duneRecord("openlibrary", 0.9)}, nil),
	)

	_, err := agg.SearchByISBN(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = agg.SearchByTitle(context.Background(), providers.TitleQuery{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = agg.SearchMultiCriteria(context.Background(), providers.MultiQuery{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
