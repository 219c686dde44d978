// Copyright 2025 The kivi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package retry provides flexible policies for retrying failed
// connection attempts against a kivi cluster, for how long to wait
// before retrying, and for which endpoint to retry against.
//
// The interface Policy defines a retry Policy. A Policy instance can be
// constructed using NewPolicy by providing a decision-maker, Decider,
// and a wait time calculator, Waiter. Both Decider and Waiter have
// constructors for common use cases, so that a useful policy can be
// quickly assembled:
//
//	decider := retry.Times(3).
//	               And(retry.Before(5 * time.Second)).
//	               And(retry.TransientErr)
//	waiter := retry.NewExpWaiter(100*time.Millisecond, 2*time.Second, time.Now())
//	policy := retry.NewPolicy(decider, waiter)
//
// By default each retry fails over to the next endpoint in the
// client's list, round-robin. A Policy may override this by
// implementing the optional Selector interface, most easily via
// WithSelector:
//
//	policy := retry.WithSelector(retry.DefaultPolicy, retry.Sticky)
//
// If the built-in functionality is insufficient, fully custom retry
// policies can be created via custom implementations of Decider,
// Waiter, Selector, or Policy.
package retry
