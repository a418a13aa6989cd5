package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Chapsvision-dev/provider-identity/internal/retry"
)

type Config struct {
	// Provider under test
	ProviderName    string
	ProviderVersion string
	ProviderInfo    string

	// Where the encoded stream lives between encode and decode
	Store     string
	StreamKey string
	FileDir   string

	Azure AzureConfig

	RetryMaxAttempts  int
	RetryInitialDelay time.Duration
	RetryMaxDelay     time.Duration
	RetryMultiplier   float64
	RetryEnableJitter bool
}

type AzureConfig struct {
	Account   string
	Container string
	SASToken  string
	Endpoint  string // optional, defaults to https://<account>.blob.core.windows.net/

	ClientID     string
	ClientSecret string
	TenantID     string
}

const (
	DefaultProviderName    = "ExampleProvider"
	DefaultProviderVersion = "1.0.0"
	DefaultFileDir         = "./streams"
)

// Load reads config from environment variables, applies defaults and validates.
func Load() (Config, error) {
	get := func(key, def string) string {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	parseInt := func(key string, def int) int {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				return n
			}
		}
		return def
	}

	parseDur := func(key string, def time.Duration) time.Duration {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			if d, err := time.ParseDuration(v); err == nil {
				return d
			}
		}
		return def
	}

	parseFloat := func(key string, def float64) float64 {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
				return f
			}
		}
		return def
	}

	parseBool := func(key string, def bool) bool {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			switch strings.ToLower(v) {
			case "1", "true", "yes", "y", "on":
				return true
			case "0", "false", "no", "n", "off":
				return false
			}
		}
		return def
	}

	name := get("PROVIDER_NAME", DefaultProviderName)

	cfg := Config{
		ProviderName:    name,
		ProviderVersion: get("PROVIDER_VERSION", DefaultProviderVersion),
		ProviderInfo:    get("PROVIDER_INFO", ""),

		Store:     strings.ToLower(get("STREAM_STORE", "memory")),
		StreamKey: get("STREAM_KEY", "providers/"+name+".ser"),
		FileDir:   get("FILE_STORE_DIR", DefaultFileDir),

		Azure: AzureConfig{
			Account:      get("AZURE_STORAGE_ACCOUNT", ""),
			Container:    get("AZURE_STORAGE_CONTAINER", ""),
			SASToken:     get("AZURE_STORAGE_SAS", ""),
			Endpoint:     get("AZURE_BLOB_ENDPOINT", ""),
			ClientID:     get("AZURE_CLIENT_ID", ""),
			ClientSecret: get("AZURE_CLIENT_SECRET", ""),
			TenantID:     get("AZURE_TENANT_ID", ""),
		},

		RetryMaxAttempts:  parseInt("RETRY_MAX_ATTEMPTS", retry.Default.MaxAttempts),
		RetryInitialDelay: parseDur("RETRY_INITIAL_DELAY", retry.Default.InitialDelay),
		RetryMaxDelay:     parseDur("RETRY_MAX_DELAY", retry.Default.MaxDelay),
		RetryMultiplier:   parseFloat("RETRY_MULTIPLIER", retry.Default.Multiplier),
		RetryEnableJitter: parseBool("RETRY_JITTER", retry.Default.Jitter),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate checks store-specific requirements.
// Azure accepts SAS, a service principal, or falls back to DefaultAzureCredential.
func (c *Config) validate() error {
	switch c.Store {
	case "memory":
	case "file":
		if c.FileDir == "" {
			return errors.New("file: FILE_STORE_DIR is required")
		}
	case "azure":
		if c.Azure.Account == "" || c.Azure.Container == "" {
			return errors.New("azure: AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_CONTAINER are required")
		}
	default:
		return errors.New("unsupported stream store: " + c.Store)
	}
	if strings.TrimSpace(c.StreamKey) == "" {
		return errors.New("STREAM_KEY cannot be empty")
	}
	return nil
}

// RetryOptions converts retry-related config values to retry.Options.
func (c Config) RetryOptions() retry.Options {
	return retry.Options{
		MaxAttempts:  c.RetryMaxAttempts,
		InitialDelay: c.RetryInitialDelay,
		MaxDelay:     c.RetryMaxDelay,
		Multiplier:   c.RetryMultiplier,
		Jitter:       c.RetryEnableJitter,
	}
}
