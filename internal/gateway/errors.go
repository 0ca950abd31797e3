package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies a FetchError.
type Kind int

const (
	// KindInvalid is a request the gateway refuses before any I/O.
	KindInvalid Kind = iota + 1
	// KindCredential means no token could be obtained.
	KindCredential
	// KindUpstream covers transport failures, error statuses, API errors and
	// malformed payloads. Callers may recover from it with synthetic data.
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindCredential:
		return "credential"
	case KindUpstream:
		return "upstream"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// FetchError is returned by every Gateway operation.
type FetchError struct {
	Kind   Kind
	Symbol string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s (%s): %v", e.Symbol, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsUpstream reports whether err is a recoverable upstream failure.
func IsUpstream(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == KindUpstream
}
