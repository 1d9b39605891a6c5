package swarm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAsync(t *testing.T, fake *fakeSwarm, version string, opts ...Option) *AsyncClient {
	t.Helper()
	ac, err := NewAsync(fake.url(version), "login", "password", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { ac.Close() })
	return ac
}

func TestNewAsync_MissingVersion(t *testing.T) {
	_, err := NewAsync("https://swarm.example.com", "login", "password")
	assert.ErrorIs(t, err, ErrMissingVersion)
}

func TestAsync_Submit(t *testing.T) {
	fake := newFakeSwarm(t)
	fake.ok("GET", "reviews/12204", `{"review": {"id": 12204, "state": "approved"}}`)
	ac := newTestAsync(t, fake, "9")
	ctx := context.Background()

	f := Submit(ctx, ac, func(ctx context.Context, c *Client) (Result, error) {
		return c.Reviews().Info(ctx, 12204, nil)
	})
	res, err := f.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, "approved", res.Get("review.state").String())

	select {
	case <-f.Done():
	default:
		t.Fatal("Done should be closed after Await returned")
	}
}

func TestAsync_SubmitTypedResult(t *testing.T) {
	fake := newFakeSwarm(t)
	fake.ok("GET", "reviews/12345", `{"review": {"versions": [{"change": 1}, {"change": 2}]}}`)
	ac := newTestAsync(t, fake, "9")
	ctx := context.Background()

	f := Submit(ctx, ac, func(ctx context.Context, c *Client) (int, error) {
		_, change, err := c.Reviews().LatestRevisionAndChange(ctx, 12345)
		return change, err
	})
	change, err := f.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, change)
}

func TestAsync_VersionGateFailsFuture(t *testing.T) {
	fake := newFakeSwarm(t)
	ac := newTestAsync(t, fake, "8")

	f := Submit(context.Background(), ac, func(ctx context.Context, c *Client) (Result, error) {
		return c.Servers().List(ctx)
	})
	err := f.Wait(context.Background())
	assert.ErrorIs(t, err, ErrIncompatible)
	assert.Zero(t, fake.count())
}

func TestAsync_AwaitContext(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	server := newBlockingServer(t, block)

	ac, err := NewAsync(server+"/api/v9", "login", "password")
	require.NoError(t, err)
	t.Cleanup(func() { ac.Close() })

	f := Submit(context.Background(), ac, func(ctx context.Context, c *Client) (Result, error) {
		return c.Version(ctx)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAwaitAll(t *testing.T) {
	fake := newFakeSwarm(t)
	fake.ok("GET", "version", `{"version": "SWARM/2023.1"}`)
	fake.ok("GET", "servers", `{"servers": {}}`)
	ac := newTestAsync(t, fake, "9")
	ctx := context.Background()

	version := Submit(ctx, ac, func(ctx context.Context, c *Client) (Result, error) {
		return c.Version(ctx)
	})
	servers := Submit(ctx, ac, func(ctx context.Context, c *Client) (Result, error) {
		return c.Servers().List(ctx)
	})

	require.NoError(t, AwaitAll(ctx, version, servers))
	assert.Equal(t, 2, fake.count())
}

func TestAwaitAll_CombinesFailures(t *testing.T) {
	fake := newFakeSwarm(t)
	fake.ok("GET", "version", `{}`)
	ac := newTestAsync(t, fake, "9")
	ctx := context.Background()

	ok := Submit(ctx, ac, func(ctx context.Context, c *Client) (Result, error) {
		return c.Version(ctx)
	})
	missing := Submit(ctx, ac, func(ctx context.Context, c *Client) (Result, error) {
		return c.Reviews().Info(ctx, 1, nil)
	})
	boom := errors.New("boom")
	failed := Submit(ctx, ac, func(context.Context, *Client) (struct{}, error) {
		return struct{}{}, boom
	})

	err := AwaitAll(ctx, ok, missing, failed)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, boom)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 2)
}

func TestAsync_RefreshAuth(t *testing.T) {
	fake := newFakeSwarm(t)
	fake.ok("GET", "session", `{}`)
	ac := newTestAsync(t, fake, "9", WithAuthUpdate(func(context.Context) (string, string, error) {
		return "carol", "ticket", nil
	}))
	ctx := context.Background()

	require.NoError(t, ac.RefreshAuth(ctx).Wait(ctx))

	_, err := ac.Client().Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, "carol", fake.last(t).User)
}

func TestAsync_Close(t *testing.T) {
	fake := newFakeSwarm(t)
	fake.ok("GET", "version", `{}`)

	ac, err := NewAsync(fake.url("9"), "login", "password")
	require.NoError(t, err)
	require.NoError(t, ac.Close())
	require.NoError(t, ac.Close())

	f := Submit(context.Background(), ac, func(ctx context.Context, c *Client) (Result, error) {
		return c.Version(ctx)
	})
	assert.ErrorIs(t, f.Wait(context.Background()), ErrClientClosed)
	assert.Zero(t, fake.count())
}
