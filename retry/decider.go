// Copyright 2025 The kivi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"time"

	"github.com/gokivi/kivi/conn"
	"github.com/gokivi/kivi/transient"
)

// A Decider decides if a retry should be done.
//
// Implementations of Decider must be safe for concurrent use by
// multiple goroutines.
//
// Use the built-in constructors Times and Before, and the built-in
// decider TransientErr; or implement your own Decider. Use DeciderFunc
// to convert an ordinary function into a Decider, and to compose
// deciders logically using DeciderFunc.And and DeciderFunc.Or.
type Decider interface {
	Decide(s *conn.State) bool
}

// The DeciderFunc type is an adapter to allow the use of ordinary
// functions as retry deciders. It implements the Decider interface, and
// also provides the logical composition methods And and Or.
//
// Every DeciderFunc must be safe for concurrent use by multiple
// goroutines.
//
// Simple DeciderFunc functions can be composed into complex decision
// trees using the logical composition functions DeciderFunc.And and
// DeciderFunc.Or. Because of this composition ability, it will often
// be convenient to work directly with DeciderFunc rather than with
// Decider.
type DeciderFunc func(s *conn.State) bool

// DefaultTimes is the number of times DefaultPolicy will retry.
const DefaultTimes = 5

// DefaultDecider is a general-purpose retry decider suitable for
// common use cases. It will allow up to DefaultTimes retries (i.e. up
// to 6 total attempts) on any error.
//
// Every error a retry policy sees is a connection-level failure (a
// dial, write, or read error, or a garbled response payload) for which
// failing over to the next endpoint is a plausible remedy, so the
// default decider does not discriminate between error kinds. Compose
// TransientErr into your own policy for stricter behavior.
var DefaultDecider = Times(DefaultTimes)

// TransientErr is a decider that indicates a retry if the current
// error is transient according to transient.Categorize.
//
// Compose it with other deciders, for example an attempt cap
// constructed with Times, to get more complex functionality.
var TransientErr DeciderFunc = transientErr

// Decide returns true if a retry should be done, and false otherwise,
// after examining the current connection state.
func (f DeciderFunc) Decide(s *conn.State) bool {
	return f(s)
}

// And composes two retry deciders into a new decider which returns true
// if both sub-deciders return true, and false otherwise.
//
// Short-circuit logic is used, so g will not be evaluated if f returns
// false.
func (f DeciderFunc) And(g DeciderFunc) DeciderFunc {
	return func(s *conn.State) bool {
		return f(s) && g(s)
	}
}

// Or composes two retry deciders into a new decider which returns
// true if either of the two sub-deciders returns true, but false if
// they both return false.
//
// Short-circuit logic is used, so g will not be evaluated if f returns
// true.
func (f DeciderFunc) Or(g DeciderFunc) DeciderFunc {
	return func(s *conn.State) bool {
		return f(s) || g(s)
	}
}

// Times constructs a retry decider which allows up to n retries. The
// returned decider returns true while the attempt index s.Attempt is
// less than n, and false otherwise.
func Times(n int) DeciderFunc {
	return func(s *conn.State) bool {
		return s.Attempt < n
	}
}

// Before constructs a retry decider allowing retries until a certain
// amount of time has elapsed since the start of the logical request.
// The returned decider returns true while the request duration is less
// than d, and false afterward.
func Before(d time.Duration) DeciderFunc {
	return func(s *conn.State) bool {
		return s.Duration() < d
	}
}

func transientErr(s *conn.State) bool {
	return transient.Categorize(s.Err) != transient.Not
}
