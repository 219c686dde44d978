// Copyright 2025 The kivi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"time"

	"github.com/gokivi/kivi/conn"
)

// A Policy controls if and how failed connection attempts are retried
// while a request to the key space is in flight. In particular, after
// every failed attempt, a Policy decides whether a retry should be
// done and, if so, how long the wait period should be before retrying
// the attempt, typically against the next cluster endpoint.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
//
// A Policy is composed of the Decider and Waiter interfaces. While you
// can implement Policy yourself, it may be more efficient to use one
// of the built-in retry policies, DefaultPolicy or Never, or to construct
// your policy using the NewPolicy constructor using existing Decider
// and Waiter implementations.
//
// A Policy may additionally implement the optional Selector interface
// to control which endpoint each retry connects to. Policies that do
// not implement Selector get round-robin failover.
type Policy interface {
	Decider
	Waiter
}

// DefaultPolicy is a general-purpose retry policy suitable for common
// use cases. It is a composition of DefaultDecider for retry decisions
// and DefaultWaiter for wait time calculations.
var DefaultPolicy Policy = policy{DefaultDecider, DefaultWaiter}

// Never is a policy that never retries. It is useful if you want to use
// the other features of kivi.Client but do not want retries.
var Never Policy = policy{Times(0), DefaultWaiter}

type policy struct {
	decider Decider
	waiter  Waiter
}

// NewPolicy composes a Decider and a Waiter into a retry Policy.
func NewPolicy(d Decider, w Waiter) Policy {
	if d == nil {
		panic("kivi/retry: nil decider")
	}
	if w == nil {
		panic("kivi/retry: nil waiter")
	}
	return policy{decider: d, waiter: w}
}

func (p policy) Decide(s *conn.State) bool {
	return p.decider.Decide(s)
}

func (p policy) Wait(s *conn.State) time.Duration {
	return p.waiter.Wait(s)
}
