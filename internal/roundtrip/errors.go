package roundtrip

import (
	"fmt"

	"github.com/Chapsvision-dev/provider-identity/internal/provider"
)

// IdentityMismatchError reports a decode that resolved to a different
// instance than the one that was encoded.
type IdentityMismatchError struct {
	Name string
	Want *provider.Provider
	Got  *provider.Provider
}

func (e *IdentityMismatchError) Error() string {
	return fmt.Sprintf("provider object mismatch for %q: encoded instance %s, decoded instance %s",
		e.Name, idOf(e.Want), idOf(e.Got))
}

func idOf(p *provider.Provider) string {
	if p == nil {
		return "<nil>"
	}
	return p.ID().String()
}
