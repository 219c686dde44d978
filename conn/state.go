// Copyright 2025 The kivi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package conn

import (
	"context"
	"net/url"
	"time"

	"github.com/gokivi/kivi/transient"
)

// A State represents the connection state of a single logical request.
//
// When a request is sent, a State is created for it and carried across
// every connection attempt the request makes, including retries. The
// State is updated as the attempts progress (for example when an
// attempt fails and the client moves over to the next endpoint) and is
// visible to retry policies, timeout policies, and event handlers.
//
// Timeout and retry policies and event handlers may set values on a
// State using its SetValue method and read them back using the Value
// method. However, they should treat the structure's exported field
// values as immutable and leave them unmodified, as the connection
// state is vital to the correct functioning of the send and retry
// logic.
//
// A State belongs to exactly one logical request and is only ever
// touched from that request's active attempt, so it requires no
// locking.
type State struct {
	// Endpoints lists the cluster endpoints the request may connect
	// to. It is never empty, and it is not modified after the state
	// is created.
	Endpoints []*url.URL

	// Endpoint is the index into Endpoints of the endpoint the
	// current attempt connects to, or, between attempts, the endpoint
	// the next attempt will connect to.
	//
	// The first attempt starts at the endpoint the client most
	// recently connected to successfully. On each retry the index
	// advances round-robin, unless the installed retry policy selects
	// endpoints itself.
	Endpoint int

	// Start is the start time of the logical request. It is assigned
	// a non-zero value when the request is sent, this value remains
	// constant thereafter, and it is not reset on retry.
	Start time.Time

	// Attempt is the zero-based number of the current connection
	// attempt. It is set to zero on the initial attempt, one on the
	// first retry, and so on.
	Attempt int

	// Timeouts counts the number of attempts that ended in a timeout
	// during the request, whether while dialing, writing the request,
	// or awaiting the response.
	Timeouts int

	// Err indicates the error received while making the most recent
	// attempt. It will be nil if the most recent attempt ended
	// without an error, or if a current attempt is underway, or
	// before the first attempt starts.
	//
	// While a request is in-flight, Err may fluctuate between nil and
	// various non-nil error values. Once the request's future has
	// completed, Err does not change.
	Err error

	// data contains arbitrary user data. The kivi library will not
	// touch this field, and it will typically be nil unless used by
	// event handler writers.
	//
	// Event handlers may interact with this via the Value and
	// SetValue methods.
	data context.Context
}

// URL returns the endpoint URL the current attempt connects to.
func (s *State) URL() *url.URL {
	return s.Endpoints[s.Endpoint]
}

// Rotate advances the endpoint index to the next endpoint in the
// list, wrapping around to the first endpoint after the last one.
func (s *State) Rotate() {
	s.Endpoint = (s.Endpoint + 1) % len(s.Endpoints)
}

// Duration returns the time elapsed since the logical request
// started.
//
// If the request has not started yet, the duration is zero. The
// return value is monotonically increasing over the life of the
// request.
func (s *State) Duration() time.Duration {
	if s.Start == (time.Time{}) {
		return time.Duration(0)
	}

	return time.Now().Sub(s.Start)
}

// Timeout indicates whether Err currently contains a non-nil value
// which indicates a timeout. The timeout may have happened while
// dialing the endpoint, writing the request, or reading the response.
//
// Note that Timeout may return false even if Timeouts > 0 (if the
// most recent attempt did not end in a timeout, or a current attempt
// is underway).
func (s *State) Timeout() bool {
	cat := transient.Categorize(s.Err)
	return cat == transient.Timeout
}

// SetValue allows event handlers to store arbitrary data in the
// connection state.
//
// The key must follow the same rules as the key parameter in
// context.WithValue, namely it:
//
// • it may not be nil;
//
// • it must be comparable;
//
// • it should not be of type string or any other built-in type to
// avoid collisions between different event handlers putting data into
// the same connection state.
func (s *State) SetValue(key, value interface{}) {
	ctx := s.data
	if ctx == nil {
		ctx = context.Background()
	}

	s.data = context.WithValue(ctx, key, value)
}

// Value returns the data value associated with this connection state
// for key, or nil if there is no value associated with key.
func (s *State) Value(key interface{}) interface{} {
	ctx := s.data
	if ctx == nil {
		return nil
	}

	return ctx.Value(key)
}
