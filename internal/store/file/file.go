// Package file stores streams as files under a base directory, each with a
// "<name>.sha256" sidecar that is verified on read.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Chapsvision-dev/provider-identity/internal/config"
	"github.com/Chapsvision-dev/provider-identity/internal/store"
	"github.com/Chapsvision-dev/provider-identity/internal/util"
)

const sumSuffix = ".sha256"

type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("file store: directory is required")
	}
	return &Store{dir: filepath.Clean(dir)}, nil
}

func (s *Store) Name() string { return "file" }

// path maps key onto the base directory, refusing keys that escape it.
func (s *Store) path(key string) (string, error) {
	k := strings.TrimPrefix(filepath.ToSlash(strings.TrimSpace(key)), "/")
	if k == "" {
		return "", errors.New("file store: empty key")
	}
	p := filepath.Join(s.dir, filepath.FromSlash(k))
	rel, err := filepath.Rel(s.dir, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("file store: key %q escapes base directory", key)
	}
	return p, nil
}

// Put writes data through a ".part" file and renames it, then writes the sidecar.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	tmp := p + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, p); err != nil {
		return err
	}
	sum := util.SHA256(data)
	if err := os.WriteFile(p+sumSuffix, []byte(sum+"\n"), 0o644); err != nil {
		return fmt.Errorf("write checksum: %w", err)
	}
	log.Debug().Str("action", "file_put").Str("path", p).Int("bytes", len(data)).Str("sha256", sum).Msg("stream written")
	return nil
}

// Get reads the stream and checks it against its sidecar when one exists.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	want, err := os.ReadFile(p + sumSuffix)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Warn().Str("action", "file_get").Str("path", p).Msg("no checksum sidecar; skipping verification")
	case err != nil:
		return nil, fmt.Errorf("read checksum: %w", err)
	default:
		if got := util.SHA256(data); got != strings.TrimSpace(string(want)) {
			return nil, fmt.Errorf("sha256 mismatch: local=%s, recorded=%s", got, strings.TrimSpace(string(want)))
		}
	}
	return data, nil
}

func init() {
	store.Register("file", func(cfg any) (store.Store, error) {
		c, ok := cfg.(config.Config)
		if !ok {
			return nil, fmt.Errorf("file: invalid config type")
		}
		return New(c.FileDir)
	})
}
