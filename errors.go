package proxy

import (
	"fmt"
)

// ParseError is returned by TrustConfig.AddTrustedNetwork when the value is
// neither a CIDR nor an IP address.
type ParseError struct {
	// Spec is the rejected value, as passed by the caller.
	Spec string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid trusted network %q: %v", e.Spec, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
