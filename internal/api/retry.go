package api

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/mapstructure"

	"github.com/pbelskiy/helix-swarm/internal/apierrors"
)

// IdempotentMethods are retried on a retryable status by default.
var IdempotentMethods = []string{
	"DELETE", "GET", "HEAD", "OPTIONS", "PUT", "TRACE",
}

// RetryPolicy configures retry behavior for failed HTTP requests.
type RetryPolicy struct {
	// Total is the number of attempts, including the first one. Must be > 0.
	Total int `retry:"total"`
	// Factor scales the backoff: Factor * 2^(n-1) seconds before retry n (n from 0).
	Factor float64 `retry:"factor"`
	// Statuses lists HTTP status codes that trigger a retry.
	Statuses []int `retry:"statuses"`
	// Methods lists HTTP methods retried on a status in Statuses. Connection
	// failures are retried for every method. Nil selects IdempotentMethods.
	Methods []string `retry:"methods"`
}

// DefaultRetryPolicy returns a policy with the given number of attempts and
// default factor, statuses and methods.
func DefaultRetryPolicy(total int) RetryPolicy {
	p := RetryPolicy{Total: total, Factor: 1}
	p.applyDefaults()
	return p
}

// ParseRetryPolicy decodes retry options given as a map with the keys total,
// factor, statuses and methods. A nil or empty map disables retries and
// returns nil. Unknown keys and a non-positive total are rejected.
func ParseRetryPolicy(opts map[string]any) (*RetryPolicy, error) {
	if len(opts) == 0 {
		return nil, nil
	}

	p := RetryPolicy{Factor: 1}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		TagName:          "retry",
		Result:           &p,
	})
	if err != nil {
		return nil, &apierrors.Error{Message: "build retry decoder", Err: err}
	}
	if err := dec.Decode(opts); err != nil {
		return nil, &apierrors.Error{Message: "invalid retry argument", Err: err}
	}

	p.applyDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *RetryPolicy) applyDefaults() {
	if p.Methods == nil {
		p.Methods = slices.Clone(IdempotentMethods)
	}
	for i, m := range p.Methods {
		p.Methods[i] = strings.ToUpper(m)
	}
}

// Validate checks the policy fields.
func (p RetryPolicy) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Total, validation.Required.Error("must be > 0"), validation.Min(1)),
		validation.Field(&p.Factor, validation.Min(0.0)),
		validation.Field(&p.Statuses, validation.Each(validation.Min(100), validation.Max(599))),
	)
	if err != nil {
		return &apierrors.Error{Message: "invalid retry argument", Err: err}
	}
	return nil
}

// Delay returns the wait before retry n, where n is 0 for the first retry.
// With Factor 1 the sequence is 0.5s, 1s, 2s, 4s, ...
func (p RetryPolicy) Delay(n int) time.Duration {
	seconds := p.Factor * math.Pow(2, float64(n-1))
	return time.Duration(seconds * float64(time.Second))
}

// ShouldRetry reports whether a response with the given method and status
// should be retried.
func (p RetryPolicy) ShouldRetry(method string, statusCode int) bool {
	return p.AllowsMethod(method) && slices.Contains(p.Statuses, statusCode)
}

// AllowsMethod reports whether a retryable status may be retried for method.
func (p RetryPolicy) AllowsMethod(method string) bool {
	return slices.Contains(p.Methods, strings.ToUpper(method))
}

// doublingBackOff is a deterministic backoff.BackOff following RetryPolicy.Delay.
type doublingBackOff struct {
	policy RetryPolicy
	n      int
}

func (b *doublingBackOff) NextBackOff() time.Duration {
	d := b.policy.Delay(b.n)
	b.n++
	return d
}

func (b *doublingBackOff) Reset() {
	b.n = 0
}

// retryableStatusError marks a response whose status is in RetryPolicy.Statuses.
type retryableStatusError struct {
	statusCode int
}

func (e *retryableStatusError) Error() string {
	return fmt.Sprintf("retryable status %d", e.statusCode)
}

// RetryTransport decorates a Transport with bounded retries. Every call owns
// its backoff state, so concurrent calls do not interfere.
type RetryTransport struct {
	inner  Transport
	policy RetryPolicy
	logger hclog.Logger

	// newTimer overrides the backoff timer; used by tests.
	newTimer func() backoff.Timer
}

var _ Transport = (*RetryTransport)(nil)

// NewRetryTransport wraps inner with policy.
func NewRetryTransport(inner Transport, policy RetryPolicy, logger hclog.Logger) *RetryTransport {
	policy.applyDefaults()
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &RetryTransport{inner: inner, policy: policy, logger: logger}
}

// Policy returns the retry policy.
func (t *RetryTransport) Policy() RetryPolicy {
	return t.policy
}

// RoundTrip performs req, retrying transport errors and retryable statuses.
func (t *RetryTransport) RoundTrip(ctx context.Context, req *Request) (*Response, error) {
	var (
		resp     *Response
		attempts int
	)

	// Connection failures are retried for every method; Methods only gates
	// retries on a received status.
	operation := func() error {
		attempts++
		resp = nil

		r, err := t.inner.RoundTrip(ctx, req)
		if err != nil {
			var be *buildError
			if ctx.Err() != nil || errors.Is(err, apierrors.ErrClosed) || errors.As(err, &be) {
				return backoff.Permanent(err)
			}
			return err
		}

		resp = r
		if t.policy.ShouldRetry(req.Method, r.StatusCode) {
			return &retryableStatusError{statusCode: r.StatusCode}
		}
		return nil
	}

	notify := func(err error, wait time.Duration) {
		t.logger.Debug("retrying request",
			"method", req.Method,
			"url", req.URL,
			"attempt", attempts,
			"total", t.policy.Total,
			"wait", wait,
			"reason", err,
		)
	}

	var b backoff.BackOff = &doublingBackOff{policy: t.policy}
	b = backoff.WithContext(backoff.WithMaxRetries(b, uint64(t.policy.Total-1)), ctx)

	var timer backoff.Timer
	if t.newTimer != nil {
		timer = t.newTimer()
	}

	err := backoff.RetryNotifyWithTimer(operation, b, notify, timer)

	var statusErr *retryableStatusError
	switch {
	case err == nil:
		return resp, nil
	case errors.As(err, &statusErr) && resp != nil:
		// Status never cleared; hand the response back for normal interpretation.
		return resp, nil
	case ctx.Err() != nil:
		return nil, &apierrors.Error{Message: "request cancelled", Err: ctx.Err()}
	case attempts < t.policy.Total:
		return nil, err
	default:
		return nil, &apierrors.Error{
			Message: fmt.Sprintf("request failed after %d attempts", attempts),
			Err:     err,
		}
	}
}

// Close closes the wrapped transport.
func (t *RetryTransport) Close() error {
	return t.inner.Close()
}
