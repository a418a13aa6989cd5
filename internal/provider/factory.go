package provider

import (
	"fmt"
	"sync"
)

// Factory creates a provider instance from opaque config (provider-specific).
type Factory func(any) (*Provider, error)

var (
	factoriesMu sync.RWMutex
	factories   = map[string]Factory{}
)

// RegisterFactory binds a provider name to its factory.
func RegisterFactory(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// Build constructs a new, unregistered provider by name.
func Build(name string, cfg any) (*Provider, error) {
	factoriesMu.RLock()
	f, ok := factories[name]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("provider factory not found: %s", name)
	}
	return f(cfg)
}
