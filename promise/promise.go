// Copyright 2025 The kivi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package promise

import (
	"context"
	"sync"

	"github.com/gokivi/kivi/conn"
	"github.com/gokivi/kivi/internal"
	"github.com/gokivi/kivi/retry"
)

// A Future is the read-only view of a Promise. It is what the client
// hands back for an in-flight request: the caller can block on Done or
// Wait, and read the terminal error from Err, without being able to
// complete the promise itself.
type Future interface {
	// Done returns a channel that is closed when the promise reaches
	// its terminal state.
	Done() <-chan struct{}

	// Err returns nil while the promise is pending, the terminal
	// error if the promise failed, and nil if it succeeded. Check
	// Done before relying on a nil return value.
	Err() error

	// Wait blocks until the promise reaches its terminal state or
	// the given context is done. It returns the promise's terminal
	// error in the first case and ctx.Err() in the second. The
	// context must be non-nil.
	Wait(ctx context.Context) error
}

// Config binds a Promise to the retry machinery that drives it. All
// fields except OnFinal are required.
type Config struct {
	// Context is the root context of the request. When it is done,
	// FailAttempt stops retrying and fails the promise with
	// context.Cause of the context.
	Context context.Context

	// State is the connection state of the request. FailAttempt
	// records the attempt error in State.Err and, when it schedules a
	// retry, advances State.Attempt and State.Endpoint. All other
	// bookkeeping on the state belongs to the caller.
	State *conn.State

	// Policy decides whether a failed attempt is retried, how long to
	// wait before the retry, and, if it implements retry.Selector,
	// which endpoint the retry connects to. Policies that do not
	// implement retry.Selector get round-robin failover.
	Policy retry.Policy

	// Clock tells time for the backoff wait.
	Clock internal.Clock

	// Retry starts the next connection attempt. FailAttempt invokes
	// it on a fresh goroutine once the backoff wait has elapsed.
	Retry func()

	// OnFinal, if non-nil, is invoked exactly once, after the promise
	// reaches its terminal state and any OnComplete callbacks have
	// run. The argument is the terminal error, nil on success.
	OnFinal func(err error)
}

// A Promise is the write side of a response future. It is created
// pending and moves exactly once to one of two terminal states,
// succeeded or failed. The same Promise instance spans every
// connection attempt of its request: a retry never creates a new one.
//
// Succeed and Fail are the terminal transitions. FailAttempt is the
// retry side-channel: it reports an attempt failure without
// terminalizing the promise, leaving the bound retry policy to decide
// between another attempt and terminal failure.
//
// A Promise must not be copied after first use. All methods are safe
// for concurrent use by multiple goroutines.
type Promise[T any] struct {
	mu    sync.Mutex
	done  chan struct{}
	val   T
	err   error
	final bool
	cbs   []func(T, error)
	cfg   Config
	bound bool
}

// New creates a pending, unbound Promise.
func New[T any]() *Promise[T] {
	return &Promise[T]{done: make(chan struct{})}
}

// Bind attaches the retry configuration to the promise. It must be
// called at most once, and before the first FailAttempt. Bind panics
// if the promise is already bound or if a required Config field is
// missing.
func (p *Promise[T]) Bind(cfg Config) {
	if cfg.Context == nil {
		panic("kivi/promise: nil context")
	}
	if cfg.State == nil {
		panic("kivi/promise: nil state")
	}
	if cfg.Policy == nil {
		panic("kivi/promise: nil policy")
	}
	if cfg.Clock == nil {
		panic("kivi/promise: nil clock")
	}
	if cfg.Retry == nil {
		panic("kivi/promise: nil retry function")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bound {
		panic("kivi/promise: already bound")
	}
	p.cfg = cfg
	p.bound = true
}

// Succeed moves the promise to its succeeded terminal state with the
// given value. It returns true if the promise was still pending and
// false if it had already reached a terminal state, in which case the
// earlier outcome is untouched.
func (p *Promise[T]) Succeed(val T) bool {
	return p.complete(val, nil)
}

// Fail moves the promise to its failed terminal state with the given
// error, which must be non-nil. It returns true if the promise was
// still pending and false if it had already reached a terminal state,
// in which case the earlier outcome is untouched.
func (p *Promise[T]) Fail(err error) bool {
	if err == nil {
		panic("kivi/promise: nil error")
	}
	var zero T
	return p.complete(zero, err)
}

// FailAttempt reports that the current connection attempt failed with
// err, without directly terminalizing the promise. The promise must be
// bound.
//
// FailAttempt records err in the bound State, then consults the bound
// retry policy. If the policy declines a retry, or the root context is
// done, the promise fails terminally. Otherwise FailAttempt waits out
// the policy's backoff on the bound clock, advances the attempt
// counter, moves the state to the next endpoint (the policy's choice
// if it implements retry.Selector, round-robin otherwise), and invokes
// the bound retry function on a new goroutine.
//
// The backoff wait is interruptible: if the root context is cancelled
// the promise fails with the context's cause, and if the promise
// reaches a terminal state by other means FailAttempt returns without
// retrying. Attempts are strictly sequential: the next attempt starts
// only from here, after the previous one has fully failed.
func (p *Promise[T]) FailAttempt(err error) {
	p.mu.Lock()
	if !p.bound {
		p.mu.Unlock()
		panic("kivi/promise: not bound")
	}
	cfg := p.cfg
	final := p.final
	p.mu.Unlock()
	if final {
		return
	}

	s := cfg.State
	s.Err = err

	if cfg.Context.Err() != nil {
		p.Fail(context.Cause(cfg.Context))
		return
	}
	if !cfg.Policy.Decide(s) {
		p.Fail(err)
		return
	}

	if d := cfg.Policy.Wait(s); d > 0 {
		t := cfg.Clock.NewTimer(d)
		select {
		case <-t.Chan():
		case <-cfg.Context.Done():
			t.Stop()
			p.Fail(context.Cause(cfg.Context))
			return
		case <-p.done:
			t.Stop()
			return
		}
	}
	select {
	case <-p.done:
		return
	default:
	}

	s.Attempt++
	if sel, ok := cfg.Policy.(retry.Selector); ok {
		s.Endpoint = sel.Select(s)
	} else {
		s.Rotate()
	}

	go cfg.Retry()
}

// Done returns a channel that is closed when the promise reaches its
// terminal state.
func (p *Promise[T]) Done() <-chan struct{} {
	return p.done
}

// Err returns nil while the promise is pending, the terminal error if
// the promise failed, and nil if it succeeded. Check Done before
// relying on a nil return value.
func (p *Promise[T]) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Wait blocks until the promise reaches its terminal state or the
// given context is done. It returns the promise's terminal error in
// the first case and ctx.Err() in the second. The context must be
// non-nil.
func (p *Promise[T]) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Result blocks until the promise reaches its terminal state or the
// given context is done, then returns the terminal value and error.
// If the context wins, Result returns the zero value and ctx.Err().
// The context must be non-nil.
func (p *Promise[T]) Result(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.val, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// OnComplete registers a callback to run when the promise reaches its
// terminal state. If the promise is already terminal, the callback
// runs immediately on the calling goroutine; otherwise it runs on the
// goroutine that completes the promise, after the Done channel is
// closed. Callbacks run in registration order.
func (p *Promise[T]) OnComplete(f func(T, error)) {
	if f == nil {
		panic("kivi/promise: nil callback")
	}
	p.mu.Lock()
	if p.final {
		val, err := p.val, p.err
		p.mu.Unlock()
		f(val, err)
		return
	}
	p.cbs = append(p.cbs, f)
	p.mu.Unlock()
}

func (p *Promise[T]) complete(val T, err error) bool {
	p.mu.Lock()
	if p.final {
		p.mu.Unlock()
		return false
	}
	p.val = val
	p.err = err
	p.final = true
	cbs := p.cbs
	p.cbs = nil
	onFinal := p.cfg.OnFinal
	p.mu.Unlock()

	close(p.done)
	for _, cb := range cbs {
		cb(val, err)
	}
	if onFinal != nil {
		onFinal(err)
	}
	return true
}
