// Copyright 2025 The kivi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package promise implements the response future that kivi.Client hands
back for every request it sends.

A Promise starts pending and moves exactly once to one of two terminal
states: succeeded, carrying a typed response value, or failed, carrying
an error. The same Promise instance is kept across every connection
attempt a request makes. When an attempt fails, the client does not
fail the promise; it calls FailAttempt, which lets the bound retry
policy decide between scheduling another attempt (after a backoff wait,
against the next endpoint) and failing the promise for good.

Callers typically only see the Future view of a Promise:

	f := client.Send(req)
	if err := f.Wait(ctx); err != nil {
	    // request failed
	}

or the typed promise of a concrete request, which adds Result and
OnComplete:

	req := kivi.NewGetRequest("/queues/jobs")
	client.Send(req)
	rsp, err := req.Future().Result(ctx)
*/
package promise
