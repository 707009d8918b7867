package providers

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/openshelf/metadata-service/internal/domain"
)

// Settings carries the configuration an adapter needs to construct a
// provider. It mirrors the provider block of the service configuration.
type Settings struct {
	Name       string
	BaseURL    string
	APIKey     string
	Priority   int
	MaxResults int
	RateLimit  RateLimitConfig
	Timeout    TimeoutConfig
}

// Factory constructs a provider from its settings. Adapter packages
// register one per provider name, usually from init, the same way
// database/sql drivers register themselves.
type Factory func(Settings, zerolog.Logger) (MetadataProvider, error)

var (
	factoryMu sync.RWMutex
	factories = map[string]Factory{}
)

// RegisterFactory makes an adapter available under the given name.
// Registering the same name twice panics: two adapters claiming one name
// is a linker-level mistake, not a runtime condition.
func RegisterFactory(name string, f Factory) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	if f == nil {
		panic("providers: RegisterFactory with nil factory")
	}
	if _, dup := factories[name]; dup {
		panic("providers: RegisterFactory called twice for " + name)
	}
	factories[name] = f
}

// Build constructs the provider registered under settings.Name.
func Build(settings Settings, logger zerolog.Logger) (MetadataProvider, error) {
	factoryMu.RLock()
	f, ok := factories[settings.Name]
	factoryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no provider adapter registered for %q (available: %v)",
			domain.ErrNotFound, settings.Name, FactoryNames())
	}
	return f(settings, logger)
}

// FactoryNames lists the registered adapter names, sorted.
func FactoryNames() []string {
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
