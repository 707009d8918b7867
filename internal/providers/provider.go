// Package providers defines the capability contract every external metadata
// provider adapter must satisfy, plus the registry and shared transport
// plumbing (rate limiting, retrying HTTP client) the adapters build on.
//
// Each bibliographic source (a library catalog API, a commercial book API,
// an open-access repository, or an ebook file parser emitting embedded
// metadata) implements the MetadataProvider interface, letting the
// aggregator search many sources concurrently with one unified API.
//
// Example usage:
//
//	reg := providers.NewRegistry()
//	reg.Register(openlibrary.New(cfg, httpClient))
//	records, err := reg.Get("openlibrary").SearchByISBN(ctx, "9780140283297")
package providers

import (
	"context"
	"time"

	"github.com/openshelf/metadata-service/internal/domain"
)

// TitleQuery is a title search request.
type TitleQuery struct {
	// Title is the search string (required).
	Title string

	// ExactMatch requests exact-title matching where the provider supports it.
	ExactMatch bool

	// Fuzzy requests fuzzy matching where the provider supports it.
	Fuzzy bool
}

// CreatorQuery is an author/creator search request.
type CreatorQuery struct {
	// Name is the creator name to search for (required).
	Name string

	// Fuzzy requests fuzzy matching where the provider supports it.
	Fuzzy bool
}

// MultiQuery combines several criteria into one search. Empty fields are
// ignored; providers apply whichever criteria they support.
type MultiQuery struct {
	Title     string
	Creator   string
	ISBN      string
	Publisher string
	Year      int
}

// RateLimitConfig describes a provider's request budget.
type RateLimitConfig struct {
	// MaxRequests is the number of requests allowed per Window.
	MaxRequests int

	// Window is the rate-limit measurement window.
	Window time.Duration

	// RequestDelay is the minimum delay between consecutive requests.
	RequestDelay time.Duration
}

// TimeoutConfig describes a provider's timeout behavior.
type TimeoutConfig struct {
	// RequestTimeout bounds a single HTTP request.
	RequestTimeout time.Duration

	// OperationTimeout bounds one whole search operation including retries.
	OperationTimeout time.Duration
}

// MetadataProvider is the capability contract between the aggregation core
// and external provider adapters. A failing call must return an error rather
// than a sentinel value; the aggregator relies on errors to populate its
// per-provider error map.
//
// Implementations should:
//   - Respect context cancellation on every search method
//   - Apply their own rate limiting and retries
//   - Transform source-specific responses to domain.MetadataRecord
//   - Wrap errors with source attribution (domain.ProviderError)
type MetadataProvider interface {
	// Name returns the provider's stable identity, used as a map key.
	Name() string

	// Priority is the tie-break weight among providers; higher wins.
	Priority() int

	// RateLimit returns the provider's request budget.
	RateLimit() RateLimitConfig

	// Timeout returns the provider's timeout configuration.
	Timeout() TimeoutConfig

	// SearchByISBN finds records matching an ISBN (10 or 13, any formatting).
	SearchByISBN(ctx context.Context, isbn string) ([]*domain.MetadataRecord, error)

	// SearchByTitle finds records matching a title query.
	SearchByTitle(ctx context.Context, q TitleQuery) ([]*domain.MetadataRecord, error)

	// SearchByCreator finds records by author/creator name.
	SearchByCreator(ctx context.Context, q CreatorQuery) ([]*domain.MetadataRecord, error)

	// SearchMultiCriteria finds records matching a combination of criteria.
	SearchMultiCriteria(ctx context.Context, q MultiQuery) ([]*domain.MetadataRecord, error)

	// ReliabilityFor returns this provider's reliability for a given field,
	// in 0..1. Used to weight reconciliation votes.
	ReliabilityFor(field domain.FieldType) float64

	// SupportsField reports whether the provider supplies a given field at all.
	SupportsField(field domain.FieldType) bool
}
