package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/pbelskiy/helix-swarm/internal/apierrors"
)

// Config holds the settings of a Core.
type Config struct {
	Host      string
	Version   Version
	Transport Transport
	Username  string
	Password  string
	// Timeout applies to every request that does not set its own.
	Timeout time.Duration
	Logger  hclog.Logger
}

// Core builds requests against one Swarm server, dispatches them through a
// Transport and interprets the responses. It is safe for concurrent use.
type Core struct {
	host      string
	version   Version
	transport Transport
	timeout   time.Duration
	logger    hclog.Logger

	mu   sync.RWMutex
	auth BasicAuth
}

// NewCore creates a Core from cfg.
func NewCore(cfg Config) *Core {
	logger := cfg.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Core{
		host:      strings.TrimRight(cfg.Host, "/"),
		version:   cfg.Version,
		transport: cfg.Transport,
		timeout:   cfg.Timeout,
		logger:    logger,
		auth:      BasicAuth{Username: cfg.Username, Password: cfg.Password},
	}
}

// Host returns the server address without the API segment.
func (c *Core) Host() string {
	return c.host
}

// Version returns the API version requests are sent to.
func (c *Core) Version() Version {
	return c.version
}

// Transport returns the transport requests are dispatched through.
func (c *Core) Transport() Transport {
	return c.transport
}

// Logger returns the core logger.
func (c *Core) Logger() hclog.Logger {
	return c.logger
}

// Credentials returns the current basic-auth credentials.
func (c *Core) Credentials() BasicAuth {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.auth
}

// SetCredentials replaces the basic-auth credentials for subsequent requests.
func (c *Core) SetCredentials(username, password string) {
	c.mu.Lock()
	c.auth = BasicAuth{Username: username, Password: password}
	c.mu.Unlock()
}

// URL returns the absolute URL of an endpoint path such as "reviews/12".
func (c *Core) URL(path string) string {
	return c.host + "/api/v" + c.version.String() + "/" + strings.TrimLeft(path, "/")
}

// Call describes one endpoint invocation relative to the API root.
type Call struct {
	Method  string
	Path    string
	Query   url.Values
	Form    url.Values
	JSON    any
	Timeout time.Duration
}

// Request turns call into a transport request carrying the current credentials.
func (c *Core) Request(call *Call) *Request {
	auth := c.Credentials()
	timeout := call.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	return &Request{
		Method:  call.Method,
		URL:     c.URL(call.Path),
		Query:   call.Query,
		Form:    call.Form,
		JSON:    call.JSON,
		Timeout: timeout,
		Auth:    &auth,
	}
}

// Do sends call and interprets the response.
func (c *Core) Do(ctx context.Context, call *Call) (Result, error) {
	resp, err := c.transport.RoundTrip(ctx, c.Request(call))
	if err != nil {
		return Result{}, apierrors.Wrap(err, strings.ToUpper(call.Method)+" "+call.Path)
	}
	return Interpret(resp)
}

// Do sends call and post-processes a successful result with fcb.
func Do[T any](ctx context.Context, c *Core, call *Call, fcb func(Result) (T, error)) (T, error) {
	var zero T
	res, err := c.Do(ctx, call)
	if err != nil {
		return zero, err
	}
	return fcb(res)
}

// Interpret maps a raw response onto a Result or a typed error.
//
// A 404 whose body is not an object with an "error" key counts as success;
// some endpoints answer that way with a valid payload.
func Interpret(resp *Response) (Result, error) {
	res, err := NewResult(resp.Body)
	if err != nil {
		return Result{}, &apierrors.Error{
			StatusCode: resp.StatusCode,
			Body:       string(resp.Body),
			Message:    "invalid JSON in response",
			Err:        err,
		}
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return res, nil
	case http.StatusNotFound:
		body := res.Map()
		if _, ok := body["error"]; !ok {
			return res, nil
		}
		return Result{}, &apierrors.NotFoundError{StatusCode: resp.StatusCode, Body: body}
	default:
		return Result{}, &apierrors.Error{
			StatusCode: resp.StatusCode,
			Body:       string(resp.Body),
		}
	}
}
