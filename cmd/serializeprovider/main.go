package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Chapsvision-dev/provider-identity/internal/codec"
	"github.com/Chapsvision-dev/provider-identity/internal/config"
	"github.com/Chapsvision-dev/provider-identity/internal/logx"
	"github.com/Chapsvision-dev/provider-identity/internal/provider"
	"github.com/Chapsvision-dev/provider-identity/internal/roundtrip"
	"github.com/Chapsvision-dev/provider-identity/internal/store"
	"github.com/Chapsvision-dev/provider-identity/internal/version"

	_ "github.com/Chapsvision-dev/provider-identity/internal/provider/example"
	_ "github.com/Chapsvision-dev/provider-identity/internal/store/azure"
	_ "github.com/Chapsvision-dev/provider-identity/internal/store/file"
	_ "github.com/Chapsvision-dev/provider-identity/internal/store/memory"
)

const binary = "serializeprovider"

// Test seams, overridden in unit tests.
var (
	loadConfig    = config.Load
	buildProvider = provider.Build
	newStore      = store.New
	runRoundtrip  = roundtrip.Run
	exit          = os.Exit
)

const usage = `
Usage:
  serializeprovider [run] [providerName...]
  serializeprovider encode [streamKey]
  serializeprovider decode [streamKey]
  serializeprovider version | --version | -v
  serializeprovider help    | --help    | -h

Notes:
  - With no command, run round-trips PROVIDER_NAME (default: ExampleProvider).
  - The stream is parked in STREAM_STORE (memory|file|azure, default: memory)
    under STREAM_KEY (default: providers/<name>.ser).
  - Exit codes: 0 same instance reconstituted, 1 failure, 2 usage error.
`

// main wires CLI -> config -> registry -> store -> round trip.
// Exit codes: 0 success, 1 runtime error, 2 usage error.
func main() {
	_ = godotenv.Load() // best-effort
	logx.InitFromEnv()

	args := os.Args[1:]
	action := "run"
	if len(args) > 0 {
		action = strings.ToLower(args[0])
	}

	switch action {
	case "version", "--version", "-v":
		fmt.Println(version.Banner(binary))
		exit(0)
		return
	case "help", "--help", "-h":
		fmt.Print(usage)
		exit(0)
		return
	case "run", "encode", "decode":
	default:
		fmt.Print(usage)
		exit(2)
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Error().Err(err).Msg("config error")
		exit(1)
		return
	}

	st, err := newStore(cfg.Store, cfg)
	if err != nil {
		log.Error().Err(err).Str("store", cfg.Store).Msg("store init error")
		exit(1)
		return
	}

	ctx := withSignals(context.Background())

	switch action {
	case "run":
		names := []string{cfg.ProviderName}
		if len(args) > 1 {
			names = args[1:]
		}
		providers := make([]*provider.Provider, 0, len(names))
		for _, name := range names {
			p, err := buildProvider(name, cfg)
			if err != nil {
				log.Error().Err(err).Str("provider", name).Msg("provider init error")
				exit(1)
				return
			}
			providers = append(providers, p)
		}

		start := time.Now()
		res, err := runRoundtrip(ctx, provider.Default, st, providers, roundtrip.Options{Key: cfg.StreamKey})
		if err != nil {
			logFailure(err, "roundtrip")
			exit(1)
			return
		}
		for _, p := range res.Verified {
			fmt.Printf("Reconstituted: %s\n", p)
		}
		log.Info().
			Str("action", "roundtrip").
			Str("store", st.Name()).
			Str("key", res.Key).
			Int("bytes", res.Bytes).
			Int("providers", len(res.Verified)).
			Dur("elapsed_ms", time.Since(start)).
			Msg("roundtrip OK")

	case "encode":
		key := pickArgOrEnv(2, "STREAM_KEY", cfg.StreamKey)
		p, ok := registered(cfg)
		if !ok {
			exit(1)
			return
		}
		data, err := codec.Encode(p)
		if err != nil {
			logFailure(err, "encode")
			exit(1)
			return
		}
		if err := st.Put(ctx, key, data); err != nil {
			log.Error().Err(err).Str("action", "encode").Str("store", st.Name()).Str("key", key).Msg("store put failed")
			exit(1)
			return
		}
		log.Info().
			Str("action", "encode").
			Str("provider", p.Name()).
			Str("id", p.ID().String()).
			Str("store", st.Name()).
			Str("key", key).
			Int("bytes", len(data)).
			Msg("encode OK")

	case "decode":
		key := pickArgOrEnv(2, "STREAM_KEY", cfg.StreamKey)
		if _, ok := registered(cfg); !ok {
			exit(1)
			return
		}
		data, err := st.Get(ctx, key)
		if err != nil {
			log.Error().Err(err).Str("action", "decode").Str("store", st.Name()).Str("key", key).Msg("store get failed")
			exit(1)
			return
		}
		decoded, err := codec.DecodeAll(data, provider.Default)
		if err != nil {
			logFailure(err, "decode")
			exit(1)
			return
		}
		for _, p := range decoded {
			fmt.Printf("Reconstituted: %s\n", p)
		}
		log.Info().
			Str("action", "decode").
			Str("store", st.Name()).
			Str("key", key).
			Int("providers", len(decoded)).
			Msg("decode OK")
	}
}

// registered builds the configured provider and makes sure its name is registered.
func registered(cfg config.Config) (*provider.Provider, bool) {
	p, err := buildProvider(cfg.ProviderName, cfg)
	if err != nil {
		log.Error().Err(err).Str("provider", cfg.ProviderName).Msg("provider init error")
		return nil, false
	}
	if err := roundtrip.Ensure(provider.Default, p); err != nil {
		log.Error().Err(err).Str("provider", cfg.ProviderName).Msg("register failed")
		return nil, false
	}
	return p, true
}

// logFailure names the failure class so a red run says why at a glance.
func logFailure(err error, action string) {
	var mismatch *roundtrip.IdentityMismatchError
	var unresolved *codec.UnresolvedProviderError
	var malformed *codec.DecodeError

	ev := log.Error().Err(err).Str("action", action)
	switch {
	case errors.As(err, &mismatch):
		ev = ev.Str("failure", "identity_mismatch").Str("provider", mismatch.Name)
	case errors.As(err, &unresolved):
		ev = ev.Str("failure", "unresolved_provider").Str("provider", unresolved.Name)
	case errors.As(err, &malformed):
		ev = ev.Str("failure", "decode")
	}
	ev.Msg(action + " failed")
}

func pickArgOrEnv(idx int, env string, def string) string {
	if len(os.Args) > idx && os.Args[idx] != "" {
		return os.Args[idx]
	}
	if v, ok := os.LookupEnv(env); ok && v != "" {
		return v
	}
	return def
}

func withSignals(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		<-ch
		cancel()
	}()
	return ctx
}
