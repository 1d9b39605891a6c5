package swarm

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/pbelskiy/helix-swarm/internal/api"
)

// AsyncClient runs requests without blocking the caller. Every submitted
// operation executes on its own goroutine; at most WithMaxConcurrency
// requests are on the wire at once.
type AsyncClient struct {
	client *Client
}

// NewAsync creates an asynchronous client. It accepts the same arguments as New.
func NewAsync(url, user, password string, opts ...Option) (*AsyncClient, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	wrap := func(t api.Transport) api.Transport {
		return api.NewAsyncTransport(t, cfg.maxConcurrency)
	}
	c, err := newClient(url, user, password, cfg, wrap)
	if err != nil {
		return nil, err
	}
	return &AsyncClient{client: c}, nil
}

// Client returns the underlying client. Calls made on it directly block.
func (a *AsyncClient) Client() *Client {
	return a.client
}

// Close stops accepting requests, waits for in-flight ones and releases
// pooled connections. It is safe to call more than once.
func (a *AsyncClient) Close() error {
	return a.client.Close()
}

// RefreshAuth obtains new credentials from the WithAuthUpdate callback.
func (a *AsyncClient) RefreshAuth(ctx context.Context) *Future[struct{}] {
	return Submit(ctx, a, func(ctx context.Context, c *Client) (struct{}, error) {
		return struct{}{}, c.RefreshAuth(ctx)
	})
}

// Future is the pending result of an operation submitted to an AsyncClient.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Submit runs fn against the client of a on a new goroutine. Every error fn
// returns, including a *CompatibilityError from the API version check, is
// reported by Await; Submit itself never fails. The version check still runs
// before any request is sent.
//
//	f := swarm.Submit(ctx, ac, func(ctx context.Context, c *swarm.Client) (swarm.Result, error) {
//		return c.Reviews().Info(ctx, 12204, nil)
//	})
//	review, err := f.Await(ctx)
func Submit[T any](ctx context.Context, a *AsyncClient, fn func(context.Context, *Client) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.value, f.err = fn(ctx, a.client)
	}()
	return f
}

// Done is closed once the operation has completed.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the operation completes or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Wait is Await without the value.
func (f *Future[T]) Wait(ctx context.Context) error {
	_, err := f.Await(ctx)
	return err
}

// Waiter is implemented by every Future.
type Waiter interface {
	Wait(ctx context.Context) error
}

// AwaitAll waits for every future and returns the failures combined, or nil
// when all succeeded.
func AwaitAll(ctx context.Context, futures ...Waiter) error {
	var (
		mu     sync.Mutex
		result *multierror.Error
		g      errgroup.Group
	)
	for _, f := range futures {
		g.Go(func() error {
			if err := f.Wait(ctx); err != nil {
				mu.Lock()
				result = multierror.Append(result, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return result.ErrorOrNil()
}
