// Copyright 2025 The kivi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"errors"
	"io"
	"net"
	"syscall"
)

// A Category is the transience category of a particular error, as
// reported by function Categorize().
//
// The category Not means the error is not transient from the perspective
// of completing a request attempt successfully, or in other words that a
// retry after encountering this error is very unlikely to succeed.
//
// All other categories indicate the error is transient from the
// perspective of completing a request attempt successfully, or in other
// words that a retry after encountering this error has some prospect of
// success, possibly against a different endpoint.
type Category int

const (
	// Not indicates any non-transient error.
	Not Category = iota
	// Timeout indicates a client-side timeout: either a connection that
	// could not be established in time, or a response that did not
	// arrive before the read deadline. The server may be going through a
	// temporary period of slowness, and a retry, possibly against
	// another endpoint, has a reasonable prospect of success.
	//
	// Function Categorize() will return Timeout if the error or any of
	// its wrapped causes has a Timeout() function that reports true.
	Timeout
	// ConnRefused indicates the remote host refused the connection, and
	// corresponds to the POSIX error code ECONNREFUSED.
	//
	// Although connection refusal may be a permanent condition, it is
	// classified as transient because it can happen if the service
	// running on the remote host is in the process of starting or
	// restarting. In this case the service is temporarily not listening
	// on the specified port, but will be once its startup is complete.
	//
	// Function Categorize() will return ConnRefused if the error is not
	// a Timeout, and the error or any of its wrapped causes is equal to
	// syscall.ECONNREFUSED.
	ConnRefused
	// ConnReset indicates the remote host returned an RST packet on a
	// previously active TCP connection, and corresponds to the POSIX
	// error code ECONNRESET.
	//
	// Connection reset is not uncommon if a service on the remote host
	// comes down while it is still in the process of responding to a
	// request, for example during a rolling restart of a server cluster.
	// A connection reset tends to indicate a high probability of success
	// on retry.
	//
	// Function Categorize() will return ConnReset if the error is not a
	// Timeout, and the error or any of its wrapped causes is equal to
	// syscall.ECONNRESET.
	ConnReset
	// ConnClosed indicates the connection was torn down before a
	// complete response was received: the peer closed the stream early,
	// the local end was closed underneath an in-flight operation, or a
	// write landed on a broken pipe.
	//
	// Function Categorize() will return ConnClosed if the error is none
	// of the above categories, and the error or any of its wrapped
	// causes is io.EOF, io.ErrUnexpectedEOF, net.ErrClosed, or
	// syscall.EPIPE.
	ConnClosed
	// Unreachable indicates the network or remote host could not be
	// reached, and corresponds to the POSIX error codes ENETUNREACH and
	// EHOSTUNREACH. Routing problems are often short-lived, and another
	// endpoint may well be reachable.
	Unreachable
)

// Categorize returns the transience category of the given error. All
// non-nil transient errors result in a transience category other than
// Not. A nil error, and an error that is not transient from the
// perspective of completing a request attempt, both produce the return
// value Not.
//
// In assessing transience, Categorize looks at wrapped cause errors
// contained within err, not just err itself. However, Categorize never
// checks if an error has a Temporary() function that returns true, as
// the semantics of Temporary() aren't entirely clear.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var hasTimeout hasTimeout
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return Timeout
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNRESET:
			return ConnReset
		case syscall.ECONNREFUSED:
			return ConnRefused
		case syscall.EPIPE:
			return ConnClosed
		case syscall.ENETUNREACH, syscall.EHOSTUNREACH:
			return Unreachable
		}
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return ConnClosed
	}

	return Not
}

type hasTimeout interface {
	Timeout() bool
}
