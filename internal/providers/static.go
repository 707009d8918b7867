package providers

import (
	"context"
	"strings"

	"github.com/openshelf/metadata-service/internal/domain"
	"github.com/openshelf/metadata-service/internal/normalize"
)

// StaticProvider serves a fixed set of records. It backs two real use cases:
// metadata extracted from ebook files themselves (the file parser emits
// records once, then the set is fixed for the request) and deterministic
// fixtures in tests.
type StaticProvider struct {
	name        string
	priority    int
	records     []*domain.MetadataRecord
	reliability map[domain.FieldType]float64
	err         error
}

// NewStaticProvider creates a provider that answers every search from the
// given records. reliability may be nil, in which case every field scores
// a neutral 0.5.
func NewStaticProvider(name string, priority int, records []*domain.MetadataRecord, reliability map[domain.FieldType]float64) *StaticProvider {
	return &StaticProvider{
		name:        name,
		priority:    priority,
		records:     records,
		reliability: reliability,
	}
}

// NewFailingProvider creates a provider whose every search returns err.
// Used to exercise partial-failure paths.
func NewFailingProvider(name string, err error) *StaticProvider {
	return &StaticProvider{name: name, err: err}
}

// Name implements MetadataProvider.
func (p *StaticProvider) Name() string { return p.name }

// Priority implements MetadataProvider.
func (p *StaticProvider) Priority() int { return p.priority }

// RateLimit implements MetadataProvider. Static data needs no budget.
func (p *StaticProvider) RateLimit() RateLimitConfig { return RateLimitConfig{} }

// Timeout implements MetadataProvider.
func (p *StaticProvider) Timeout() TimeoutConfig { return TimeoutConfig{} }

// SearchByISBN implements MetadataProvider.
func (p *StaticProvider) SearchByISBN(ctx context.Context, isbn string) ([]*domain.MetadataRecord, error) {
	if err := p.pending(ctx); err != nil {
		return nil, err
	}
	want := normalize.NormalizeISBN(isbn, true)
	if want == "" {
		want = normalize.CleanISBN(isbn)
	}
	var out []*domain.MetadataRecord
	for _, r := range p.records {
		for _, raw := range r.ISBN {
			got := normalize.NormalizeISBN(raw, true)
			if got == "" {
				got = normalize.CleanISBN(raw)
			}
			if got == want {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}

// SearchByTitle implements MetadataProvider.
func (p *StaticProvider) SearchByTitle(ctx context.Context, q TitleQuery) ([]*domain.MetadataRecord, error) {
	if err := p.pending(ctx); err != nil {
		return nil, err
	}
	want := normalize.Title(q.Title)
	var out []*domain.MetadataRecord
	for _, r := range p.records {
		got := normalize.Title(r.Title)
		if q.ExactMatch {
			if got == want {
				out = append(out, r)
			}
			continue
		}
		if strings.Contains(got, want) || got == want {
			out = append(out, r)
		}
	}
	return out, nil
}

// SearchByCreator implements MetadataProvider.
func (p *StaticProvider) SearchByCreator(ctx context.Context, q CreatorQuery) ([]*domain.MetadataRecord, error) {
	if err := p.pending(ctx); err != nil {
		return nil, err
	}
	want := normalize.CreatorName(q.Name)
	var out []*domain.MetadataRecord
	for _, r := range p.records {
		for _, a := range r.Authors {
			if normalize.CreatorName(a) == want {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}

// SearchMultiCriteria implements MetadataProvider. Criteria are conjunctive.
func (p *StaticProvider) SearchMultiCriteria(ctx context.Context, q MultiQuery) ([]*domain.MetadataRecord, error) {
	if err := p.pending(ctx); err != nil {
		return nil, err
	}
	out := p.records
	if q.ISBN != "" {
		var err error
		out, err = p.SearchByISBN(ctx, q.ISBN)
		if err != nil {
			return nil, err
		}
	}
	var filtered []*domain.MetadataRecord
	for _, r := range out {
		if q.Title != "" && normalize.Title(r.Title) != normalize.Title(q.Title) {
			continue
		}
		if q.Publisher != "" && normalize.PublisherName(r.Publisher) != normalize.PublisherName(q.Publisher) {
			continue
		}
		if q.Creator != "" {
			found := false
			for _, a := range r.Authors {
				if normalize.CreatorName(a) == normalize.CreatorName(q.Creator) {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		if q.Year != 0 {
			d := normalize.ParseDate(r.PublicationDate)
			if d.Precision == domain.PrecisionUnknown || d.Year != q.Year {
				continue
			}
		}
		filtered = append(filtered, r)
	}
	return filtered, nil
}

// ReliabilityFor implements MetadataProvider.
func (p *StaticProvider) ReliabilityFor(field domain.FieldType) float64 {
	if p.reliability == nil {
		return 0.5
	}
	if v, ok := p.reliability[field]; ok {
		return v
	}
	return 0.5
}

// SupportsField implements MetadataProvider.
func (p *StaticProvider) SupportsField(field domain.FieldType) bool {
	if p.reliability == nil {
		return true
	}
	_, ok := p.reliability[field]
	return ok
}

// pending surfaces either the configured failure or context cancellation.
func (p *StaticProvider) pending(ctx context.Context) error {
	if p.err != nil {
		return domain.NewProviderError(p.name, 0, p.err)
	}
	return ctx.Err()
}
