package swarm

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	sentinels := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrIncompatible", ErrIncompatible},
		{"ErrMissingVersion", ErrMissingVersion},
		{"ErrClientClosed", ErrClientClosed},
	}

	for _, s := range sentinels {
		t.Run(s.name, func(t *testing.T) {
			if s.err == nil {
				t.Error("sentinel error is nil")
			}
			if s.err.Error() == "" {
				t.Error("sentinel error has empty message")
			}
		})
	}
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "status and body",
			err:      &Error{StatusCode: 401, Body: `{"error": "Unauthorized"}`},
			expected: `swarm error 401: {"error": "Unauthorized"}`,
		},
		{
			name:     "message only",
			err:      &Error{Message: "request failed after 3 attempts"},
			expected: "request failed after 3 attempts",
		},
		{
			name:     "message and cause",
			err:      &Error{Message: "invalid argument", Err: errors.New("cannot be blank")},
			expected: "invalid argument: cannot be blank",
		},
		{
			name:     "empty",
			err:      &Error{},
			expected: "swarm error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestNotFoundError(t *testing.T) {
	err := &NotFoundError{Body: map[string]any{"error": "Not Found"}}

	if err.Error() != "swarm error 404: Not Found" {
		t.Errorf("Error() = %s, want 'swarm error 404: Not Found'", err.Error())
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("errors.Is() should match ErrNotFound")
	}
	if errors.Is(err, ErrIncompatible) {
		t.Error("errors.Is() should not match ErrIncompatible")
	}
}

func TestCompatibilityError(t *testing.T) {
	tests := []struct {
		have     string
		need     float64
		expected string
	}{
		{"8", 9, "unsupported with API v8 (needed v9+)"},
		{"1.2", 2, "unsupported with API v1.2 (needed v2+)"},
		{"1", 1.2, "unsupported with API v1 (needed v1.2+)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			err := &CompatibilityError{Have: tt.have, Need: tt.need}
			if err.Error() != tt.expected {
				t.Errorf("Error() = %s, want %s", err.Error(), tt.expected)
			}
			if !errors.Is(err, ErrIncompatible) {
				t.Error("errors.Is() should match ErrIncompatible")
			}
		})
	}
}

func TestSwarmError_Marker(t *testing.T) {
	errs := []error{
		&Error{},
		&NotFoundError{},
		&CompatibilityError{Have: "1", Need: 2},
	}

	for _, err := range errs {
		wrapped := fmt.Errorf("operation failed: %w", err)
		var se SwarmError
		if !errors.As(wrapped, &se) {
			t.Errorf("%T should implement SwarmError", err)
		}
	}
}

func TestInvalidArgument(t *testing.T) {
	if invalidArgument(nil) != nil {
		t.Error("invalidArgument(nil) should return nil")
	}

	cause := errors.New("must be a valid value")
	err := invalidArgument(cause)

	var swarmErr *Error
	if !errors.As(err, &swarmErr) {
		t.Fatal("invalidArgument should return *Error")
	}
	if swarmErr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0", swarmErr.StatusCode)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is() should match the cause")
	}
}
