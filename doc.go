// Copyright 2025 The kivi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package kivi provides a robust client for an etcd v2 key space, with
per-request connections, endpoint failover and retry support behind a
simple key/value interface.

Create a Client with the cluster's endpoint URLs to begin making
requests.

	client, err := kivi.New([]string{"http://127.0.0.1:4001", "http://127.0.0.1:4002"})
	...
	defer client.Close()
	rsp, err := client.Set(ctx, "/queues/jobs", "open")
	...
	rsp, err := client.Get(ctx, "/queues/jobs")

For operations beyond the keyed conveniences, build a request, refine
it with its fluent modifiers, and send it. Send is asynchronous and
resolves the request's future when the outcome is known:

	req := kivi.NewSetRequest("/locks/leader", "node-1").
		PrevExist(false).
		TTL(30 * time.Second)
	if _, err := client.Send(req); err != nil {
		...
	}
	rsp, err := req.Future().Result(ctx)

For control over the client's retry decisions and timing, create a
custom retry policy using components from package retry:

	retryWaiter := retry.NewExpWaiter(250*time.Millisecond, 5*time.Second, time.Now())
	retryPolicy := retry.NewPolicy(retry.DefaultDecider, retryWaiter)
	client, err := kivi.New(endpoints, kivi.WithRetryPolicy(retryPolicy))

For control over individual attempt read deadlines, set a custom
timeout policy using package timeout:

	client, err := kivi.New(endpoints, kivi.WithTimeoutPolicy(timeout.Fixed(10*time.Second)))

To hook into the fine-grained details of the client's attempt/retry
loop, install a handler into the appropriate handler chain:

	handlers := &kivi.HandlerGroup{}
	handlers.PushBack(kivi.BeforeAttempt, kivi.HandlerFunc(
		func(_ kivi.Event, s *conn.State) {
			log.Printf("attempt %d against %s", s.Attempt, s.URL())
		}),
	)
	client, err := kivi.New(endpoints, kivi.WithHandlers(handlers))

Package kivi provides basic interfaces for each method of the client
(Sender, Getter, Setter, Creator, Deleter, Watcher, and Versioner); a
combined interface that composes all the basic methods (KV); and
utility functions for working with a Sender (Inflate, Get, Set, Create,
Delete, Watch, and Version).
*/
package kivi
