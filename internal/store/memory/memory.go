// Package memory keeps streams in process memory.
package memory

import (
	"context"
	"sync"

	"github.com/Chapsvision-dev/provider-identity/internal/store"
)

type Store struct {
	mu      sync.RWMutex
	streams map[string][]byte
}

func New() *Store {
	return &Store{streams: map[string][]byte{}}
}

func (s *Store) Name() string { return "memory" }

// Put stores a copy of data.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streams[key] = append([]byte(nil), data...)
	return nil
}

// Get returns a copy so callers cannot mutate the stored stream.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.streams[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func init() {
	store.Register("memory", func(any) (store.Store, error) {
		return New(), nil
	})
}
