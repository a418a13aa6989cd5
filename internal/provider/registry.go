package provider

import (
	"errors"
	"sort"
	"sync"
)

var (
	// ErrNilProvider is returned when registering a nil provider.
	ErrNilProvider = errors.New("provider cannot be nil")
	// ErrEmptyName is returned for a provider without a name.
	ErrEmptyName = errors.New("provider name cannot be empty")
)

// Registry maps provider names to live instances. At most one instance is held per name.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Provider
}

func NewRegistry() *Registry {
	return &Registry{entries: map[string]*Provider{}}
}

// Default is the process-wide registry.
var Default = NewRegistry()

// Register adds p under p.Name() unless that name is already taken.
// It reports whether p was inserted; an existing entry is never replaced.
func (r *Registry) Register(p *Provider) (bool, error) {
	if p == nil {
		return false, ErrNilProvider
	}
	if p.name == "" {
		return false, ErrEmptyName
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[p.name]; exists {
		return false, nil
	}
	r.entries[p.name] = p
	return true, nil
}

// Lookup returns the registered instance for name.
func (r *Registry) Lookup(name string) (*Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.entries[name]
	return p, ok
}

// Unregister removes name and reports whether it was present.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; !ok {
		return false
	}
	delete(r.entries, name)
	return true
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Register adds p to the Default registry.
func Register(p *Provider) (bool, error) { return Default.Register(p) }

// Lookup queries the Default registry.
func Lookup(name string) (*Provider, bool) { return Default.Lookup(name) }

// Unregister removes name from the Default registry.
func Unregister(name string) bool { return Default.Unregister(name) }
