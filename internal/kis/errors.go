package kis

import (
	"errors"
	"fmt"
)

// ErrMissingSecrets is returned when the app key or secret is not configured.
var ErrMissingSecrets = errors.New("kis: app key or secret not configured")

// StatusError is a non-2xx response from the API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string { return fmt.Sprintf("unexpected status code: %d: %s", e.Code, e.Body) }

// APIError is a 2xx response whose rt_cd reports failure.
type APIError struct {
	Code    string
	MsgCode string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("kis error rt_cd=%s msg_cd=%s: %s", e.Code, e.MsgCode, e.Message)
}

// DecodeError is a response whose shape is not one the client accepts.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string { return "decoding response: " + e.Reason }
