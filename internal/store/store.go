package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotFound is returned by Get when no stream exists under the key.
var ErrNotFound = errors.New("stream not found")

// Store holds encoded provider streams between encode and decode.
// Keys are plain slash-separated strings; implementations map them to their own layout.
type Store interface {
	// Put writes data under key, replacing any previous stream.
	Put(ctx context.Context, key string, data []byte) error

	// Get reads the stream stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Name returns the store identifier (e.g. "memory", "azure").
	Name() string
}

// Factory creates a store instance from opaque config (store-specific).
type Factory func(any) (Store, error)

var (
	mu       sync.RWMutex
	registry = map[string]Factory{}
)

// Register binds a store name to its factory.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = f
}

// New returns a store instance by name.
func New(name string, cfg any) (Store, error) {
	mu.RLock()
	f, ok := registry[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("store not found: %s", name)
	}
	return f(cfg)
}

// Names lists the registered store names.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
