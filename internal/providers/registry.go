package providers

import (
	"sync"
)

// Registry holds the set of registered metadata providers. It is an
// explicitly constructed value owned by whoever builds the aggregator;
// there is no process-wide registry.
//
// Registration order is preserved and used as the deterministic secondary
// sort key wherever provider outputs tie.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]MetadataProvider
	order  []MetadataProvider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]MetadataProvider),
	}
}

// Register adds a provider. Registering a name twice replaces the earlier
// provider but keeps its original position in the order.
// This method is thread-safe.
func (r *Registry) Register(p MetadataProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[p.Name()]; exists {
		for i, existing := range r.order {
			if existing.Name() == p.Name() {
				r.order[i] = p
				break
			}
		}
	} else {
		r.order = append(r.order, p)
	}
	r.byName[p.Name()] = p
}

// Get returns a provider by name, or nil if not registered.
// This method is thread-safe.
func (r *Registry) Get(name string) MetadataProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

// All returns every registered provider in registration order. The returned
// slice is a snapshot and is safe to iterate even if providers are added
// concurrently.
// This method is thread-safe.
func (r *Registry) All() []MetadataProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]MetadataProvider(nil), r.order...)
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
