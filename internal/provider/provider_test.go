package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	p, err := New("  ExampleProvider ", "2.1.3", "info text")
	require.NoError(t, err)

	assert.Equal(t, "ExampleProvider", p.Name())
	assert.Equal(t, 2, p.Version().Major)
	assert.Equal(t, 1, p.Version().Minor)
	assert.Equal(t, 3, p.Version().Patch)
	assert.Equal(t, "info text", p.Info())
	assert.Equal(t, "ExampleProvider version 2.1.3", p.String())
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New("", "1.0.0", "")
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = New("ExampleProvider", "not-a-version", "")
	assert.ErrorContains(t, err, "invalid version")
}

func TestEqualAttributesAreDistinctInstances(t *testing.T) {
	a, err := New("ExampleProvider", "1.0.0", "x")
	require.NoError(t, err)
	b, err := New("ExampleProvider", "1.0.0", "x")
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestBuild(t *testing.T) {
	RegisterFactory("FactoryTestProvider", func(cfg any) (*Provider, error) {
		return New("FactoryTestProvider", cfg.(string), "")
	})

	p, err := Build("FactoryTestProvider", "3.0.0")
	require.NoError(t, err)
	assert.Equal(t, "FactoryTestProvider version 3.0.0", p.String())

	_, err = Build("Nonexistent", nil)
	assert.ErrorContains(t, err, "provider factory not found: Nonexistent")
}
