// Copyright 2025 The kivi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package kivi

// An Event identifies the event type when installing or running a
// Handler. Install event handlers in a Client to extend it with custom
// functionality.
type Event int

const (
	// BeforeSend identifies the event that occurs once per request,
	// after Client.Send has accepted the request but before its first
	// connection attempt starts.
	//
	// When Client fires BeforeSend, the state is non-nil and carries
	// the endpoint list, the starting endpoint and the start time, but
	// no attempt has run yet.
	BeforeSend Event = iota
	// BeforeAttempt identifies the event that occurs before each
	// individual connection attempt of a request.
	//
	// When Client fires BeforeAttempt, the state's endpoint index
	// names the endpoint the attempt WILL connect to after all
	// BeforeAttempt handlers have finished.
	BeforeAttempt
	// AfterAttemptTimeout identifies the event that occurs after a
	// connection attempt failed because of a timeout error.
	//
	// When Client fires AfterAttemptTimeout, the state's error field
	// is set to the timeout error, and its attempt timeout counter has
	// been incremented.
	//
	// Note that AfterAttemptTimeout always occurs before the
	// AfterAttempt event of the same attempt.
	AfterAttemptTimeout
	// AfterAttempt identifies the event that occurs after a connection
	// attempt is concluded, regardless of whether it concluded
	// successfully or not.
	//
	// When Client fires AfterAttempt, the state's error field is nil
	// if the attempt produced a response the server meant to send,
	// and non-nil if the attempt failed at the connection level.
	//
	// Note that AfterAttempt always fires on every connection attempt
	// and that it runs before the retry policy is consulted for a
	// retry decision.
	AfterAttempt
	// AfterComplete identifies the event that occurs after the
	// request's future reaches its terminal state, whether it
	// succeeded, exhausted its retries, or was cut short by Close.
	//
	// When Client fires AfterComplete, the state is in the state the
	// final attempt left it in, and the future's result is already
	// observable.
	AfterComplete
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel

	// numEvents provides the total number of events typed as an int.
	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"BeforeSend",
	"BeforeAttempt",
	"AfterAttemptTimeout",
	"AfterAttempt",
	"AfterComplete",
}

// Events returns a slice containing all events which can occur while
// Client works a request, in the order in which they would occur.
func Events() []Event {
	return []Event{
		BeforeSend,
		BeforeAttempt,
		AfterAttemptTimeout,
		AfterAttempt,
		AfterComplete,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
