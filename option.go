// Copyright 2025 The kivi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package kivi

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokivi/kivi/internal"
	"github.com/gokivi/kivi/retry"
	"github.com/gokivi/kivi/timeout"
)

const (
	// DefaultDialTimeout is the connect timeout New configures when
	// WithDialTimeout is not given. It bounds the TCP dial and, for
	// https endpoints, the TLS handshake of each connection attempt.
	DefaultDialTimeout = 300 * time.Millisecond

	// DefaultMaxResponseBytes is the response body cap New configures
	// when WithMaxResponseBytes is not given. Attempts whose response
	// body exceeds the cap fail with ErrResponseTooLarge.
	DefaultMaxResponseBytes = 100 * 1024
)

// An Option configures a Client at construction time.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) {
	f(o)
}

type options struct {
	retry       retry.Policy
	timeout     timeout.Policy
	handlers    *HandlerGroup
	tls         *tls.Config
	dialTimeout time.Duration
	maxBody     int64
	logger      zerolog.Logger
	rootCtx     context.Context
	clock       internal.Clock
}

func defaultOptions() *options {
	return &options{
		retry:       retry.DefaultPolicy,
		timeout:     timeout.DefaultPolicy,
		handlers:    &HandlerGroup{},
		dialTimeout: DefaultDialTimeout,
		maxBody:     DefaultMaxResponseBytes,
		logger:      zerolog.Nop(),
		rootCtx:     context.Background(),
		clock:       internal.NewRealClock(),
	}
}

// WithRetryPolicy sets the retry policy consulted after each failed
// connection attempt. A nil policy leaves the default,
// retry.DefaultPolicy, in place.
func WithRetryPolicy(p retry.Policy) Option {
	return optionFunc(func(o *options) {
		if p != nil {
			o.retry = p
		}
	})
}

// WithTimeoutPolicy sets the timeout policy that bounds how long each
// connection attempt may wait for a response. A nil policy leaves the
// default, timeout.DefaultPolicy, in place.
func WithTimeoutPolicy(p timeout.Policy) Option {
	return optionFunc(func(o *options) {
		if p != nil {
			o.timeout = p
		}
	})
}

// WithHandlers installs a group of event handlers the client runs at
// the points named by the Event constants.
func WithHandlers(g *HandlerGroup) Option {
	return optionFunc(func(o *options) {
		if g != nil {
			o.handlers = g
		}
	})
}

// WithTLSConfig sets the TLS configuration used when connecting to
// https endpoints. The client clones the configuration and fills in
// the endpoint host as ServerName when one is not set.
func WithTLSConfig(cfg *tls.Config) Option {
	return optionFunc(func(o *options) {
		o.tls = cfg
	})
}

// WithDialTimeout bounds the TCP dial and TLS handshake of each
// connection attempt. A non-positive duration leaves
// DefaultDialTimeout in place.
func WithDialTimeout(d time.Duration) Option {
	return optionFunc(func(o *options) {
		if d > 0 {
			o.dialTimeout = d
		}
	})
}

// WithMaxResponseBytes caps how many response body bytes an attempt
// will buffer before failing with ErrResponseTooLarge. A non-positive
// cap leaves DefaultMaxResponseBytes in place.
func WithMaxResponseBytes(n int64) Option {
	return optionFunc(func(o *options) {
		if n > 0 {
			o.maxBody = n
		}
	})
}

// WithLogger sets the logger the client writes attempt-level debug
// and warning lines to. The default logger discards everything.
func WithLogger(l zerolog.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}

// WithRootContext parents the client's internal context to ctx, so
// cancelling ctx shuts the client down the same way Close does.
func WithRootContext(ctx context.Context) Option {
	return optionFunc(func(o *options) {
		if ctx != nil {
			o.rootCtx = ctx
		}
	})
}

// withClock substitutes the clock the client tells time with. Tests
// use it to drive retry backoff deterministically.
func withClock(c internal.Clock) Option {
	return optionFunc(func(o *options) {
		if c != nil {
			o.clock = c
		}
	})
}
