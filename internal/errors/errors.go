// Package errors provides structured error types for the Poe client.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	// ErrNotFound reports that a referenced bot, user, or conversation
	// does not exist on the backend.
	ErrNotFound = errors.New("resource not found")

	// ErrNotConnected reports that an operation needing the push channel
	// ran before ConnectChannel.
	ErrNotConnected = errors.New("push channel not connected")
)

// ServerError is the backend's generic failure (the literal "Server Error"
// message). It is plausibly transient, so callers may choose to retry it.
// Raw carries the unmodified response body for diagnostics.
type ServerError struct {
	Raw []byte
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error, raw response: %s", e.Raw)
}

// APIError is an explicit backend-reported failure with a specific message.
// The message is surfaced verbatim and never retried.
type APIError struct {
	Message string
}

func (e *APIError) Error() string { return e.Message }

// NewAPIError creates an APIError with a formatted message.
func NewAPIError(format string, args ...any) *APIError {
	return &APIError{Message: fmt.Sprintf(format, args...)}
}

// ParseError reports a push payload or response missing an expected field.
// Inside an envelope loop the affected item is dropped; at the top level the
// whole call fails.
type ParseError struct {
	Field string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("expected value %q, found none", e.Field)
}

// IsRetryable returns true if the error is likely transient and worth
// retrying. Only the backend's generic server failure qualifies; explicit
// application errors and transport failures are surfaced as-is.
func IsRetryable(err error) bool {
	var srvErr *ServerError
	return errors.As(err, &srvErr)
}
