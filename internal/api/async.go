package api

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/pbelskiy/helix-swarm/internal/apierrors"
)

// DefaultMaxConcurrency bounds in-flight requests of an AsyncTransport.
const DefaultMaxConcurrency = 16

// Pending is the handle of a request scheduled on an AsyncTransport.
type Pending struct {
	done chan struct{}
	resp *Response
	err  error
}

// Done is closed once the request has completed.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the request completes or ctx is done.
func (p *Pending) Wait(ctx context.Context) (*Response, error) {
	select {
	case <-p.done:
		return p.resp, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// AsyncTransport runs every request on its own goroutine. The number of
// requests in flight at once is bounded by a weighted semaphore.
type AsyncTransport struct {
	inner Transport
	sem   *semaphore.Weighted

	mu       sync.RWMutex
	closed   bool
	inflight sync.WaitGroup

	closeOnce sync.Once
	closeErr  error
}

var _ Transport = (*AsyncTransport)(nil)

// NewAsyncTransport wraps inner. maxConcurrency <= 0 selects DefaultMaxConcurrency.
func NewAsyncTransport(inner Transport, maxConcurrency int) *AsyncTransport {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	return &AsyncTransport{
		inner: inner,
		sem:   semaphore.NewWeighted(int64(maxConcurrency)),
	}
}

// Go schedules req and returns immediately.
func (t *AsyncTransport) Go(ctx context.Context, req *Request) *Pending {
	p := &Pending{done: make(chan struct{})}

	t.mu.RLock()
	if t.closed {
		t.mu.RUnlock()
		p.err = apierrors.ErrClosed
		close(p.done)
		return p
	}
	t.inflight.Add(1)
	t.mu.RUnlock()

	go func() {
		defer t.inflight.Done()
		defer close(p.done)

		if err := t.sem.Acquire(ctx, 1); err != nil {
			p.err = err
			return
		}
		defer t.sem.Release(1)

		p.resp, p.err = t.inner.RoundTrip(ctx, req)
	}()

	return p
}

// RoundTrip schedules req and waits for it.
func (t *AsyncTransport) RoundTrip(ctx context.Context, req *Request) (*Response, error) {
	return t.Go(ctx, req).Wait(ctx)
}

// Close stops accepting requests, waits for in-flight ones and closes the
// wrapped transport. Later calls return the first result.
func (t *AsyncTransport) Close() error {
	t.closeOnce.Do(func() {
		t.mu.Lock()
		t.closed = true
		t.mu.Unlock()

		t.inflight.Wait()
		t.closeErr = t.inner.Close()
	})
	return t.closeErr
}
