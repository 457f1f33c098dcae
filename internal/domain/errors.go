package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors - use with errors.Is()
var (
	// ErrNotFound indicates an unknown conversation id.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("validation failed")
)

// GatewayKind classifies completion gateway failures.
type GatewayKind string

const (
	// GatewayTransport means the HTTP round trip itself failed.
	GatewayTransport GatewayKind = "transport"
	// GatewayRemote means the remote service reported an error
	// (non-2xx status, quota, auth).
	GatewayRemote GatewayKind = "remote"
	// GatewayMalformed means the response could not be interpreted
	// (undecodable body, empty choices).
	GatewayMalformed GatewayKind = "malformed"
)

// GatewayError carries the kind and message of a failed completion call.
// Gateway failures are surfaced out-of-band to the caller and are never
// written into conversation history.
type GatewayError struct {
	Kind    GatewayKind
	Message string
	Err     error // underlying cause, may be nil
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s error: %s", e.Kind, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
