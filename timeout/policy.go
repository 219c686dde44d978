// Copyright 2025 The kivi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"time"

	"github.com/gokivi/kivi/conn"
)

// A Policy defines a timeout policy which may be plugged into the
// client (kivi.Client) to direct how long each connection attempt may
// wait for the response, for the initial attempt as well as for any
// subsequent retries.
//
// A non-positive timeout means the attempt gets no read deadline and
// may wait for the response indefinitely.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	// Timeout returns the timeout to set on the next connection
	// attempt.
	//
	// Parameter s contains the current connection state of the
	// request. The return value is the timeout to set on the next
	// attempt, or a non-positive value to set none.
	Timeout(s *conn.State) time.Duration
}

// DefaultPolicy is the default timeout policy. It never times out, so
// every attempt may wait for its response indefinitely. Long-blocking
// reads, in particular watches on the key space, work under this
// policy without any configuration. Install a Fixed or Adaptive policy,
// or set per-request timeouts, to bound waits.
var DefaultPolicy Policy = Infinite

// Infinite is a built-in timeout policy which never times out.
var Infinite Policy = Fixed(0)

// Fixed constructs a timeout policy that uses the same value to set
// every attempt timeout. The return value is a timeout policy that
// always returns the value d.
//
// Use Fixed to create the typical timeout behavior supported by most
// retrying client software.
func Fixed(d time.Duration) Policy {
	return policy([]time.Duration{d})
}

// Adaptive constructs a timeout policy that varies the next timeout
// value if the previous attempt timed out.
//
// Use Adaptive if you find the cluster often exhibits one-off slow
// response times that can be cured by quickly timing out and retrying
// against the next endpoint, but you also need to protect your
// application (and the cluster) from retry storms and failure if the
// cluster goes through a burst of slowness where most response times
// during the burst are slower than your usual quick timeout.
//
// Parameter usual represents the timeout value the policy will return
// for an initial attempt and for any retry where the immediately
// preceding attempt did not time out.
//
// Parameter after contains timeout values the policy will return if
// the previous attempt timed out. If this was the first timeout of the
// request, after[0] is returned; if the second, after[1], and so on.
// If more attempts have timed out within the request than after has
// elements, then the last element of after is returned.
//
// Consider the following timeout policy:
//
//	p := Adaptive(200*time.Millisecond, time.Second, 10*time.Second)
//
// The policy p will use 200 milliseconds as the usual timeout but if
// the preceding attempt timed out and was the first timeout of the
// request, it will use 1 second; and if the previous attempt timed
// out and was not the first attempt, it will use 10 seconds.
func Adaptive(usual time.Duration, after ...time.Duration) Policy {
	p := make([]time.Duration, 1, 1+len(after))
	p[0] = usual
	return policy(append(p, after...))
}

type policy []time.Duration

func (p policy) Timeout(s *conn.State) time.Duration {
	if !s.Timeout() {
		return p[0]
	}

	i := s.Timeouts
	if i > len(p)-1 {
		i = len(p) - 1
	}

	return p[i]
}
