package api

import (
	"context"
	"net/url"
	"time"
)

// BasicAuth contains basic authentication credentials.
type BasicAuth struct {
	Username string
	Password string
}

// Request is a single HTTP call handed to a Transport.
type Request struct {
	Method string
	URL    string
	Query  url.Values
	// Form is sent as application/x-www-form-urlencoded. Mutually exclusive with JSON.
	Form url.Values
	// JSON is encoded and sent as application/json.
	JSON any
	// Timeout overrides the transport default when positive.
	Timeout time.Duration
	Auth    *BasicAuth
}

// Response is the raw outcome of a request. It is produced per call and
// consumed immediately by the response interpreter.
type Response struct {
	Method     string
	StatusCode int
	Body       []byte
}

// Transport performs exactly one HTTP request and returns the status and raw
// body. Implementations do not retry and do not interpret status codes.
type Transport interface {
	RoundTrip(ctx context.Context, req *Request) (*Response, error)
	Close() error
}
