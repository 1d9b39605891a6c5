// Package apierrors provides shared error types for the Swarm client.
package apierrors

import (
	"errors"
	"fmt"
	"strconv"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrNotFound matches every *NotFoundError.
	ErrNotFound = errors.New("not found")

	// ErrIncompatible matches every *CompatibilityError.
	ErrIncompatible = errors.New("unsupported API version")

	// ErrMissingVersion is returned when the connection URL has no /api/v<version> segment.
	ErrMissingVersion = errors.New("please specify using API version in host URL")

	// ErrClosed is returned when a request is attempted on a closed client.
	ErrClosed = errors.New("client has been closed")
)

// SwarmError is implemented by every error this module returns.
type SwarmError interface {
	error
	SwarmError() // marker method
}

// Error is the generic Swarm failure: malformed JSON, unexpected HTTP status,
// exhausted retries, transport failures and invalid configuration.
type Error struct {
	StatusCode int    // zero when no response was received
	Body       string // raw response body, if any
	Message    string
	Err        error
}

func (e *Error) Error() string {
	var msg string
	switch {
	case e.Message != "" && e.Err != nil:
		msg = fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		msg = e.Message
	case e.Err != nil:
		msg = e.Err.Error()
	case e.Body != "":
		msg = e.Body
	default:
		msg = "swarm error"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("swarm error %d: %s", e.StatusCode, msg)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// SwarmError implements the SwarmError interface.
func (e *Error) SwarmError() {}

// NotFoundError is returned for an HTTP 404 whose body carries an "error" key.
type NotFoundError struct {
	StatusCode int // always http.StatusNotFound when built from a response
	Body       map[string]any
}

func (e *NotFoundError) Error() string {
	if msg, ok := e.Body["error"].(string); ok && msg != "" {
		return "swarm error 404: " + msg
	}
	return "swarm error 404"
}

// Is implements errors.Is for sentinel error matching.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// SwarmError implements the SwarmError interface.
func (e *NotFoundError) SwarmError() {}

// CompatibilityError is returned when an operation needs a newer API version
// than the one the client was constructed with.
type CompatibilityError struct {
	Have string
	Need float64
}

func (e *CompatibilityError) Error() string {
	return fmt.Sprintf("unsupported with API v%s (needed v%s+)",
		e.Have, strconv.FormatFloat(e.Need, 'f', -1, 64))
}

// Is implements errors.Is for sentinel error matching.
func (e *CompatibilityError) Is(target error) bool {
	return target == ErrIncompatible
}

// SwarmError implements the SwarmError interface.
func (e *CompatibilityError) SwarmError() {}

// Errorf returns a generic *Error with a formatted message.
func Errorf(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// Wrap returns a generic *Error wrapping err. Errors that already implement
// SwarmError are returned unchanged.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var se SwarmError
	if errors.As(err, &se) {
		return err
	}
	return &Error{Message: message, Err: err}
}
