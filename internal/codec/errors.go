package codec

import "fmt"

// DecodeError reports a malformed or truncated provider stream.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode provider stream: %s: %v", e.Reason, e.Err)
	}
	return "decode provider stream: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// UnresolvedProviderError reports a well-formed stream naming a provider
// that is not registered.
type UnresolvedProviderError struct {
	Name string
}

func (e *UnresolvedProviderError) Error() string {
	return fmt.Sprintf("provider %q is not registered", e.Name)
}
