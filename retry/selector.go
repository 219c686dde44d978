// Copyright 2025 The kivi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"github.com/gokivi/kivi/conn"
)

// A Selector chooses the endpoint a retry connects to.
//
// Selector is an optional interface. If the retry Policy installed on
// a client implements Selector, the client asks it for the endpoint
// index of each retry once the backoff wait has elapsed. Policies that
// do not implement Selector get round-robin failover: each retry moves
// on to the next endpoint in the list.
//
// Implementations of Selector must be safe for concurrent use by
// multiple goroutines, and must return an index in the range
// [0, len(s.Endpoints)).
type Selector interface {
	Select(s *conn.State) int
}

// The SelectorFunc type is an adapter to allow the use of ordinary
// functions as endpoint selectors. It implements the Selector
// interface.
//
// Every SelectorFunc must be safe for concurrent use by multiple
// goroutines.
type SelectorFunc func(s *conn.State) int

// Select returns the index of the endpoint the next retry should
// connect to, after examining the current connection state.
func (f SelectorFunc) Select(s *conn.State) int {
	return f(s)
}

// RoundRobin is a selector that picks the endpoint after the current
// one, wrapping around at the end of the list. It reproduces the
// default failover behavior and exists mainly to compose with
// WithSelector.
var RoundRobin SelectorFunc = roundRobin

// Sticky is a selector that picks the endpoint the failed attempt
// used, so every retry reconnects to the same endpoint.
var Sticky SelectorFunc = sticky

// WithSelector attaches a Selector to an existing Policy. The
// returned policy retries exactly as p does, but directs each retry
// to the endpoint chosen by sel:
//
//	policy := retry.WithSelector(retry.DefaultPolicy, retry.Sticky)
func WithSelector(p Policy, sel Selector) Policy {
	if p == nil {
		panic("kivi/retry: nil policy")
	}
	if sel == nil {
		panic("kivi/retry: nil selector")
	}
	return selectorPolicy{Policy: p, sel: sel}
}

type selectorPolicy struct {
	Policy
	sel Selector
}

func (p selectorPolicy) Select(s *conn.State) int {
	return p.sel.Select(s)
}

func roundRobin(s *conn.State) int {
	return (s.Endpoint + 1) % len(s.Endpoints)
}

func sticky(s *conn.State) int {
	return s.Endpoint
}
