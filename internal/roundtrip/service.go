package roundtrip

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Chapsvision-dev/provider-identity/internal/codec"
	"github.com/Chapsvision-dev/provider-identity/internal/provider"
	"github.com/Chapsvision-dev/provider-identity/internal/store"
	"github.com/Chapsvision-dev/provider-identity/internal/util"
)

// Options controls where the encoded stream is parked.
type Options struct {
	// Key is the store key for the stream (default: providers/roundtrip.ser).
	Key string
}

// Result describes a successful round trip.
type Result struct {
	Key      string
	Bytes    int
	SHA256   string
	Verified []*provider.Provider
}

// Ensure registers p unless that exact instance is already registered.
// A different instance already holding the name stays in place.
func Ensure(reg *provider.Registry, p *provider.Provider) error {
	if cur, ok := reg.Lookup(p.Name()); ok && cur == p {
		return nil
	}
	added, err := reg.Register(p)
	if err != nil {
		return err
	}
	if !added {
		log.Warn().
			Str("action", "register").
			Str("provider", p.Name()).
			Str("id", p.ID().String()).
			Msg("name already held by another instance; keeping existing registration")
	}
	return nil
}

// Run registers providers, encodes them into one stream, parks it in st,
// reads it back and checks every decoded provider is the encoded instance.
func Run(ctx context.Context, reg *provider.Registry, st store.Store, providers []*provider.Provider, opt Options) (Result, error) {
	var res Result
	if len(providers) == 0 {
		return res, errors.New("roundtrip: no providers")
	}
	if reg == nil {
		reg = provider.Default
	}
	key := strings.TrimSpace(opt.Key)
	if key == "" {
		key = "providers/roundtrip.ser"
	}

	for _, p := range providers {
		if p == nil {
			return res, provider.ErrNilProvider
		}
		if err := Ensure(reg, p); err != nil {
			return res, fmt.Errorf("register %s: %w", p.Name(), err)
		}
	}

	data, err := codec.EncodeAll(providers...)
	if err != nil {
		return res, fmt.Errorf("encode: %w", err)
	}
	sum := util.SHA256(data)
	log.Debug().Str("action", "encode").Int("providers", len(providers)).Int("bytes", len(data)).
		Str("sha256", sum).Msg("stream encoded")

	start := time.Now()
	if err := st.Put(ctx, key, data); err != nil {
		return res, fmt.Errorf("store put: %w", err)
	}
	loaded, err := st.Get(ctx, key)
	if err != nil {
		return res, fmt.Errorf("store get: %w", err)
	}
	log.Debug().Str("action", "store").Str("store", st.Name()).Str("key", key).
		Dur("elapsed_ms", time.Since(start)).Msg("stream parked and reloaded")

	decoded, err := codec.DecodeAll(loaded, reg)
	if err != nil {
		return res, fmt.Errorf("decode: %w", err)
	}
	if len(decoded) != len(providers) {
		return res, fmt.Errorf("decode: got %d providers, want %d", len(decoded), len(providers))
	}
	for i, want := range providers {
		if err := Verify(want, decoded[i]); err != nil {
			return res, err
		}
		log.Info().Str("action", "verify").Str("provider", want.Name()).
			Str("version", want.Version().String()).Str("id", want.ID().String()).Msg("identity verified")
	}

	res.Key = key
	res.Bytes = len(loaded)
	res.SHA256 = sum
	res.Verified = decoded
	return res, nil
}

// Verify fails unless got is the very instance want.
func Verify(want, got *provider.Provider) error {
	if want != got {
		name := ""
		if want != nil {
			name = want.Name()
		}
		return &IdentityMismatchError{Name: name, Want: want, Got: got}
	}
	return nil
}
