// Package example registers the ExampleProvider factory.
// Import it for side effects.
package example

import (
	"fmt"

	"github.com/Chapsvision-dev/provider-identity/internal/config"
	"github.com/Chapsvision-dev/provider-identity/internal/provider"
)

const (
	Name        = "ExampleProvider"
	defaultInfo = "Example provider used for identity round trips"
)

func init() {
	provider.RegisterFactory(Name, func(cfg any) (*provider.Provider, error) {
		c, ok := cfg.(config.Config)
		if !ok {
			return nil, fmt.Errorf("%s: invalid config type", Name)
		}
		ver := c.ProviderVersion
		if ver == "" {
			ver = config.DefaultProviderVersion
		}
		info := c.ProviderInfo
		if info == "" {
			info = defaultInfo
		}
		return provider.New(Name, ver, info)
	})
}
