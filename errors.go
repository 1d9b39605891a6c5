package swarm

import (
	"github.com/pbelskiy/helix-swarm/internal/apierrors"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrNotFound matches every *NotFoundError.
	ErrNotFound = apierrors.ErrNotFound

	// ErrIncompatible matches every *CompatibilityError.
	ErrIncompatible = apierrors.ErrIncompatible

	// ErrMissingVersion is returned by New when the URL has no /api/v<version> segment.
	ErrMissingVersion = apierrors.ErrMissingVersion

	// ErrClientClosed is returned when a request is attempted on a closed client.
	ErrClientClosed = apierrors.ErrClosed
)

// SwarmError is implemented by every error returned by this package.
type SwarmError = apierrors.SwarmError

// Error is the generic failure: malformed JSON, unexpected HTTP status,
// exhausted retries, transport failures and invalid arguments.
type Error = apierrors.Error

// NotFoundError is returned for an HTTP 404 whose body carries an "error"
// key. Body holds the decoded response.
type NotFoundError = apierrors.NotFoundError

// CompatibilityError is returned, before any request is made, when an
// operation needs a newer API version than the client was created with.
type CompatibilityError = apierrors.CompatibilityError

// invalidArgument wraps a parameter validation failure.
func invalidArgument(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Message: "invalid argument", Err: err}
}
