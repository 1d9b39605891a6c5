package swarm

import (
	"context"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/time/rate"

	"github.com/pbelskiy/helix-swarm/internal/api"
)

// RetryPolicy configures retries of failed requests.
//
// Total is the number of attempts including the first one. The wait before
// retry n (from 0) is Factor * 2^(n-1) seconds. Connection failures are retried
// for every method; a status in Statuses is retried only for methods in
// Methods, by default the idempotent ones.
type RetryPolicy = api.RetryPolicy

// DefaultRetryPolicy returns a policy of total attempts with factor 1, no
// retryable statuses and the idempotent methods.
func DefaultRetryPolicy(total int) RetryPolicy {
	return api.DefaultRetryPolicy(total)
}

// AuthUpdateFunc returns fresh credentials. It is called by Client.RefreshAuth.
type AuthUpdateFunc func(ctx context.Context) (user, password string, err error)

// clientConfig holds configuration for the client.
type clientConfig struct {
	httpClient     *http.Client
	timeout        time.Duration
	verify         bool
	retry          *RetryPolicy
	retryOptions   map[string]any
	logger         hclog.Logger
	limiter        *rate.Limiter
	maxConcurrency int
	authUpdate     AuthUpdateFunc
	userAgent      string
}

func defaultConfig() *clientConfig {
	return &clientConfig{
		verify:    true,
		logger:    hclog.NewNullLogger(),
		userAgent: api.DefaultUserAgent,
	}
}

// Option configures the client.
type Option func(*clientConfig)

// WithTimeout sets the timeout of every request.
// Default: 30 seconds
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithVerify enables or disables TLS certificate verification.
// Default: true
func WithVerify(verify bool) Option {
	return func(c *clientConfig) {
		c.verify = verify
	}
}

// WithRetry enables retries with the given policy.
func WithRetry(policy RetryPolicy) Option {
	return func(c *clientConfig) {
		c.retry = &policy
	}
}

// WithRetryOptions enables retries from a map with the keys total, factor,
// statuses and methods, for example loaded from a config file. An empty map
// disables retries. Unknown keys and total <= 0 make New fail.
func WithRetryOptions(opts map[string]any) Option {
	return func(c *clientConfig) {
		c.retryOptions = opts
	}
}

// WithLogger sets the logger. Requests and retries are logged at debug level.
func WithLogger(logger hclog.Logger) Option {
	return func(c *clientConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRateLimit throttles outgoing requests to limit per second with the
// given burst.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *clientConfig) {
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithMaxConcurrency bounds the number of requests an AsyncClient runs at
// once. It has no effect on Client.
// Default: 16
func WithMaxConcurrency(n int) Option {
	return func(c *clientConfig) {
		c.maxConcurrency = n
	}
}

// WithHTTPClient sets a custom HTTP client. WithVerify is ignored when set.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithAuthUpdate sets the callback used by RefreshAuth.
func WithAuthUpdate(fn AuthUpdateFunc) Option {
	return func(c *clientConfig) {
		c.authUpdate = fn
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *clientConfig) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// retryPolicy resolves the configured policy. WithRetryOptions wins over WithRetry.
func (c *clientConfig) retryPolicy() (*RetryPolicy, error) {
	if c.retryOptions != nil {
		return api.ParseRetryPolicy(c.retryOptions)
	}
	if c.retry == nil {
		return nil, nil
	}
	if err := c.retry.Validate(); err != nil {
		return nil, err
	}
	return c.retry, nil
}
