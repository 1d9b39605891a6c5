// Package api implements the request pipeline shared by the synchronous and
// asynchronous Swarm clients: URL building, basic authentication, retries,
// transport and response interpretation.
//
// # Pipeline
//
// A request flows through a chain of [Transport] implementations:
//
//	Core.Do -> RetryTransport (optional) -> AsyncTransport (async only) -> HTTPTransport
//
// [HTTPTransport] performs exactly one HTTP call. [AsyncTransport] runs each
// call on its own goroutine, bounded by a semaphore. [RetryTransport] re-sends
// requests according to a [RetryPolicy].
//
// # Retry Behavior
//
// Connection errors are retried for every method. A response whose status is
// in [RetryPolicy.Statuses] is retried only for methods listed in
// [RetryPolicy.Methods]; by default these are the idempotent methods DELETE,
// GET, HEAD, OPTIONS, PUT and TRACE. Requests that cannot be built are never
// retried. The wait before retry n (from 0) is Factor * 2^(n-1)
// seconds, so a factor of 1 gives 0.5s, 1s, 2s, 4s, ...
//
// # Response Interpretation
//
// [Interpret] requires a JSON body. A 200 yields a [Result]. A 404 whose body
// carries an "error" key becomes a NotFoundError; any other 404 body is
// returned as a Result. All other statuses become a generic Error.
package api
