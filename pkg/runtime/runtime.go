// Package runtime provides the blocking bridge between the
// synchronous scan lifecycle and asynchronous network I/O.
//
// Each wrapper instance owns one Runtime. The host calling convention
// is strictly synchronous (one blocking call per scan phase), while
// the transport layer is context-driven; BlockOn isolates that
// mismatch to a single seam. It is a deliberate blocking bridge, not a
// scheduler: the calling goroutine is blocked until the driven
// operation resolves, and no concurrent operations are multiplexed
// within one call.
package runtime

import (
	"context"
	"time"

	"github.com/openfdw/openfdw/pkg/errors"
)

// Runtime drives one operation at a time to completion. Invocations
// are independent: a panic or failure inside one driven operation
// never corrupts the runtime for subsequent calls.
type Runtime struct {
	timeout time.Duration
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithTimeout bounds each driven operation. Zero means no bound beyond
// the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(r *Runtime) { r.timeout = d }
}

// New creates a Runtime.
func New(opts ...Option) *Runtime {
	r := &Runtime{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type result[T any] struct {
	value T
	err   error
}

// BlockOn drives op to completion and returns its result to the
// calling goroutine. The op runs on its own goroutine so a panic
// inside it is recovered and surfaced as an internal error instead of
// unwinding the caller. BlockOn always waits for op to finish; there
// is no mid-flight abandonment, a host-level cancellation must release
// the wrapper instance after the blocked call returns.
func BlockOn[T any](rt *Runtime, ctx context.Context, op func(context.Context) (T, error)) (T, error) {
	if rt.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rt.timeout)
		defer cancel()
	}

	ch := make(chan result[T], 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				var zero T
				ch <- result[T]{zero, errors.Newf(errors.ErrorTypeInternal, "panic in driven operation: %v", p)}
			}
		}()
		v, err := op(ctx)
		ch <- result[T]{v, err}
	}()

	res := <-ch
	return res.value, res.err
}
