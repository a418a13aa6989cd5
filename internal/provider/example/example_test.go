package example

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chapsvision-dev/provider-identity/internal/config"
	"github.com/Chapsvision-dev/provider-identity/internal/provider"
)

func TestFactoryDefaults(t *testing.T) {
	p, err := provider.Build(Name, config.Config{})
	require.NoError(t, err)
	assert.Equal(t, "ExampleProvider version 1.0.0", p.String())
	assert.Equal(t, defaultInfo, p.Info())
}

func TestFactoryUsesConfig(t *testing.T) {
	p, err := provider.Build(Name, config.Config{ProviderVersion: "2.0.1", ProviderInfo: "custom"})
	require.NoError(t, err)
	assert.Equal(t, "2.0.1", p.Version().String())
	assert.Equal(t, "custom", p.Info())
}

func TestFactoryRejectsForeignConfig(t *testing.T) {
	_, err := provider.Build(Name, "not a config")
	assert.ErrorContains(t, err, "invalid config type")
}

func TestEachBuildIsANewInstance(t *testing.T) {
	a, err := provider.Build(Name, config.Config{})
	require.NoError(t, err)
	b, err := provider.Build(Name, config.Config{})
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}
