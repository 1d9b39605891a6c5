package swarm

import (
	"context"
	"errors"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/singleflight"

	"github.com/pbelskiy/helix-swarm/internal/api"
)

// Result is a successfully decoded response body.
type Result = api.Result

// Client is a blocking Swarm client. Every call blocks the calling goroutine
// until the request, including retries, completes. It is safe for concurrent use.
type Client struct {
	core       *api.Core
	logger     hclog.Logger
	authUpdate AuthUpdateFunc
	refresh    singleflight.Group
}

// New creates a client for url, which must contain the API version, for
// example "https://swarm.example.com/api/v9".
func New(url, user, password string, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return newClient(url, user, password, cfg, nil)
}

// newClient assembles the transport chain. wrap, when non-nil, decorates the
// HTTP transport before the retry layer is applied.
func newClient(url, user, password string, cfg *clientConfig, wrap func(api.Transport) api.Transport) (*Client, error) {
	host, version, err := api.ParseURL(url)
	if err != nil {
		return nil, err
	}

	policy, err := cfg.retryPolicy()
	if err != nil {
		return nil, err
	}

	var transport api.Transport = api.NewHTTPTransport(api.HTTPConfig{
		HTTPClient: cfg.httpClient,
		Verify:     cfg.verify,
		UserAgent:  cfg.userAgent,
		Limiter:    cfg.limiter,
		Logger:     cfg.logger,
	})
	if wrap != nil {
		transport = wrap(transport)
	}
	if policy != nil {
		transport = api.NewRetryTransport(transport, *policy, cfg.logger)
	}

	core := api.NewCore(api.Config{
		Host:      host,
		Version:   version,
		Transport: transport,
		Username:  user,
		Password:  password,
		Timeout:   cfg.timeout,
		Logger:    cfg.logger,
	})

	return &Client{
		core:       core,
		logger:     cfg.logger,
		authUpdate: cfg.authUpdate,
	}, nil
}

// Close releases pooled connections. Requests made afterwards fail with
// ErrClientClosed. It is safe to call more than once.
func (c *Client) Close() error {
	return c.core.Transport().Close()
}

// Host returns the server address without the API segment.
func (c *Client) Host() string {
	return c.core.Host()
}

// APIVersion returns the API version as given in the construction URL.
func (c *Client) APIVersion() string {
	return c.core.Version().String()
}

// SetCredentials replaces the credentials used by subsequent requests.
func (c *Client) SetCredentials(user, password string) {
	c.core.SetCredentials(user, password)
}

// RefreshAuth obtains new credentials from the WithAuthUpdate callback and
// installs them. Concurrent calls share one callback invocation. It is never
// called automatically; call it after observing an authentication failure.
func (c *Client) RefreshAuth(ctx context.Context) error {
	if c.authUpdate == nil {
		return &Error{Err: errors.New("no auth update callback configured")}
	}

	_, err, _ := c.refresh.Do("auth", func() (any, error) {
		user, password, err := c.authUpdate(ctx)
		if err != nil {
			return nil, err
		}
		c.core.SetCredentials(user, password)
		c.logger.Debug("credentials refreshed", "user", user)
		return nil, nil
	})
	if err != nil {
		return &Error{Message: "refresh credentials", Err: err}
	}
	return nil
}

// require guards operations introduced in a later API version.
func (c *Client) require(minVersion float64) error {
	return c.core.Version().Require(minVersion)
}

func (c *Client) do(ctx context.Context, call *api.Call) (Result, error) {
	return c.core.Do(ctx, call)
}

// Version returns server version information. It can be used to check that
// the Swarm API is responding.
func (c *Client) Version(ctx context.Context) (Result, error) {
	return c.do(ctx, &api.Call{Method: "GET", Path: "version"})
}

// CheckAuth checks two-factor authentication. With a token it is verified,
// without one the current state is returned. Requires API v9.
func (c *Client) CheckAuth(ctx context.Context, token string) (Result, error) {
	if err := c.require(9); err != nil {
		return Result{}, err
	}
	if token != "" {
		form := api.Params{}
		form.Set("token", token)
		return c.do(ctx, &api.Call{Method: "POST", Path: "checkauth", Form: form.Values()})
	}
	return c.do(ctx, &api.Call{Method: "GET", Path: "checkauth"})
}

// AuthMethods lists the available two-factor authentication methods.
// Requires API v9.
func (c *Client) AuthMethods(ctx context.Context) (Result, error) {
	if err := c.require(9); err != nil {
		return Result{}, err
	}
	return c.do(ctx, &api.Call{Method: "GET", Path: "listmethods"})
}

// InitAuth starts two-factor authentication with method. Requires API v9.
func (c *Client) InitAuth(ctx context.Context, method string) (Result, error) {
	if err := c.require(9); err != nil {
		return Result{}, err
	}
	if method == "" {
		return Result{}, invalidArgument(errors.New("method is required"))
	}
	form := api.Params{}
	form.Set("method", method)
	return c.do(ctx, &api.Call{Method: "POST", Path: "initauth", Form: form.Values()})
}

// Session returns the current effective user. Requires API v9.
func (c *Client) Session(ctx context.Context) (Result, error) {
	if err := c.require(9); err != nil {
		return Result{}, err
	}
	return c.do(ctx, &api.Call{Method: "GET", Path: "session"})
}

// InitSession creates a Swarm session for the client credentials.
// Requires API v9.
func (c *Client) InitSession(ctx context.Context) (Result, error) {
	if err := c.require(9); err != nil {
		return Result{}, err
	}
	return c.do(ctx, &api.Call{Method: "POST", Path: "session"})
}

// DestroySession destroys the current session. Requires API v9.
func (c *Client) DestroySession(ctx context.Context) (Result, error) {
	if err := c.require(9); err != nil {
		return Result{}, err
	}
	return c.do(ctx, &api.Call{Method: "DELETE", Path: "session"})
}

// Login logs in to Swarm, through SAML when saml is set. Requires API v9.
func (c *Client) Login(ctx context.Context, saml bool) (Result, error) {
	if err := c.require(9); err != nil {
		return Result{}, err
	}
	path := "login"
	if saml {
		path = "login/saml"
	}
	return c.do(ctx, &api.Call{Method: "POST", Path: path})
}

// Logout logs out of Swarm. Requires API v9.
func (c *Client) Logout(ctx context.Context) (Result, error) {
	if err := c.require(9); err != nil {
		return Result{}, err
	}
	return c.do(ctx, &api.Call{Method: "POST", Path: "logout"})
}

// service is the underlying type of every endpoint group.
type service struct {
	client *Client
}

// Activities returns the activity endpoints.
func (c *Client) Activities() *Activities { return &Activities{client: c} }

// Changes returns the change endpoints.
func (c *Client) Changes() *Changes { return &Changes{client: c} }

// Comments returns the comment endpoints.
func (c *Client) Comments() *Comments { return &Comments{client: c} }

// Groups returns the group endpoints.
func (c *Client) Groups() *Groups { return &Groups{client: c} }

// Projects returns the project endpoints.
func (c *Client) Projects() *Projects { return &Projects{client: c} }

// Reviews returns the review endpoints.
func (c *Client) Reviews() *Reviews { return &Reviews{client: c} }

// Servers returns the server endpoints.
func (c *Client) Servers() *Servers { return &Servers{client: c} }

// Users returns the user endpoints.
func (c *Client) Users() *Users { return &Users{client: c} }

// Workflows returns the workflow endpoints.
func (c *Client) Workflows() *Workflows { return &Workflows{client: c} }
