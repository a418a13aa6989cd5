package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chapsvision-dev/provider-identity/internal/retry"
)

var allKeys = []string{
	"PROVIDER_NAME", "PROVIDER_VERSION", "PROVIDER_INFO",
	"STREAM_STORE", "STREAM_KEY", "FILE_STORE_DIR",
	"AZURE_STORAGE_ACCOUNT", "AZURE_STORAGE_CONTAINER", "AZURE_STORAGE_SAS", "AZURE_BLOB_ENDPOINT",
	"AZURE_CLIENT_ID", "AZURE_CLIENT_SECRET", "AZURE_TENANT_ID",
	"RETRY_MAX_ATTEMPTS", "RETRY_INITIAL_DELAY", "RETRY_MAX_DELAY", "RETRY_MULTIPLIER", "RETRY_JITTER",
}

// clearEnv blanks every key Load reads; blank values count as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "ExampleProvider", cfg.ProviderName)
	assert.Equal(t, "1.0.0", cfg.ProviderVersion)
	assert.Equal(t, "memory", cfg.Store)
	assert.Equal(t, "providers/ExampleProvider.ser", cfg.StreamKey)
	assert.Equal(t, DefaultFileDir, cfg.FileDir)
	assert.Equal(t, retry.Default, cfg.RetryOptions())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROVIDER_NAME", "OtherProvider")
	t.Setenv("STREAM_STORE", "FILE")
	t.Setenv("FILE_STORE_DIR", "/tmp/streams")
	t.Setenv("RETRY_MAX_ATTEMPTS", "2")
	t.Setenv("RETRY_INITIAL_DELAY", "10ms")
	t.Setenv("RETRY_MULTIPLIER", "1.5")
	t.Setenv("RETRY_JITTER", "off")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "OtherProvider", cfg.ProviderName)
	assert.Equal(t, "file", cfg.Store)
	assert.Equal(t, "providers/OtherProvider.ser", cfg.StreamKey)
	assert.Equal(t, "/tmp/streams", cfg.FileDir)

	ro := cfg.RetryOptions()
	assert.Equal(t, 2, ro.MaxAttempts)
	assert.Equal(t, 10*time.Millisecond, ro.InitialDelay)
	assert.Equal(t, 1.5, ro.Multiplier)
	assert.False(t, ro.Jitter)
}

func TestLoadIgnoresUnparseableNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("RETRY_MAX_ATTEMPTS", "many")
	t.Setenv("RETRY_MAX_DELAY", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, retry.Default.MaxAttempts, cfg.RetryMaxAttempts)
	assert.Equal(t, retry.Default.MaxDelay, cfg.RetryMaxDelay)
}

func TestLoadAzureRequiresAccountAndContainer(t *testing.T) {
	clearEnv(t)
	t.Setenv("STREAM_STORE", "azure")

	_, err := Load()
	assert.ErrorContains(t, err, "AZURE_STORAGE_ACCOUNT")

	t.Setenv("AZURE_STORAGE_ACCOUNT", "acct")
	t.Setenv("AZURE_STORAGE_CONTAINER", "streams")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "acct", cfg.Azure.Account)
}

func TestLoadUnknownStore(t *testing.T) {
	clearEnv(t)
	t.Setenv("STREAM_STORE", "tape")
	_, err := Load()
	assert.ErrorContains(t, err, "unsupported stream store: tape")
}
