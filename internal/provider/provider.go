package provider

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/juju/version/v2"
)

// Provider is a named service provider. Two providers are the same provider
// only if they are the same *Provider; name, version and info are descriptive.
type Provider struct {
	name    string
	version version.Number
	info    string
	id      uuid.UUID
}

// New builds a provider. ver must parse as a semantic version ("1.0.0", "2.1-beta1").
func New(name, ver, info string) (*Provider, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	n, err := version.Parse(strings.TrimSpace(ver))
	if err != nil {
		return nil, fmt.Errorf("provider %s: invalid version %q: %w", name, ver, err)
	}
	return &Provider{name: name, version: n, info: info, id: uuid.New()}, nil
}

// Name returns the registry key (e.g. "ExampleProvider").
func (p *Provider) Name() string { return p.name }

func (p *Provider) Version() version.Number { return p.version }

func (p *Provider) Info() string { return p.info }

// ID identifies this instance. A provider rebuilt with identical attributes gets a new ID.
func (p *Provider) ID() uuid.UUID { return p.id }

func (p *Provider) String() string {
	return p.name + " version " + p.version.String()
}
