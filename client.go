// Copyright 2025 The kivi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package kivi

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"

	"github.com/gokivi/kivi/conn"
	"github.com/gokivi/kivi/internal"
	"github.com/gokivi/kivi/promise"
	"github.com/gokivi/kivi/retry"
	"github.com/gokivi/kivi/timeout"
)

// completer is the write side of a request future, independent of the
// future's value type. Both request variants' futures satisfy it.
type completer interface {
	promise.Future
	Bind(promise.Config)
	Fail(error) bool
	FailAttempt(error)
}

// A Client is a robust client for an etcd v2 key space: it sends
// logical requests to a cluster of HTTP endpoints, opening one
// connection per attempt, retrying failed attempts under a
// customizable retry policy, and resolving each request's future with
// the outcome.
//
// Create a Client with New; the zero value is not usable. A Client is
// safe for concurrent use by multiple goroutines, and a single Client
// is meant to be shared: it remembers the endpoint that last accepted
// a connection and starts the next request there.
//
// On top of plain request/response delivery, Client adds the following
// features:
//
// • Client reads and buffers the entire response body into a []byte,
// capped by WithMaxResponseBytes;
//
// • Client retries failed connection attempts using a customizable
// retry policy, rotating through the endpoint list between attempts;
//
// • Client bounds individual attempts with read deadlines from a
// customizable timeout policy;
//
// • Client invokes user-provided handler functions at designated
// plug-in points within the attempt/retry loop, allowing new features
// to be mixed in from outside libraries; and
//
// • Client implements the kivi.Sender interface.
//
// Client's keyed methods (Get, Set, Create, Delete, Watch) are
// synchronous conveniences over Send: they build the request, send it,
// and wait on its future.
type Client struct {
	endpoints   []*url.URL
	retry       retry.Policy
	timeout     timeout.Policy
	handlers    *HandlerGroup
	tls         *tls.Config
	dialTimeout time.Duration
	maxBody     int64
	log         zerolog.Logger
	clock       internal.Clock
	met         *instruments

	ctx    context.Context
	cancel context.CancelCauseFunc

	lastWorking atomic.Int64
	nextID      atomic.Uint64
	inflight    *xsync.MapOf[uint64, completer]
	closeOnce   sync.Once
}

// New creates a Client that spreads its requests over the given
// endpoint URLs. Each endpoint must be an absolute http or https URL
// with a host; anything after the host is ignored. New fails with
// ErrNoEndpoints when the list is empty.
func New(endpoints []string, opts ...Option) (*Client, error) {
	if len(endpoints) == 0 {
		return nil, ErrNoEndpoints
	}

	us := make([]*url.URL, len(endpoints))
	for i, raw := range endpoints {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("kivi: bad endpoint %q: %w", raw, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("kivi: bad endpoint %q: need an http or https URL with a host", raw)
		}
		us[i] = u
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt.apply(o)
	}

	c := &Client{
		endpoints:   us,
		retry:       o.retry,
		timeout:     o.timeout,
		handlers:    o.handlers,
		tls:         o.tls,
		dialTimeout: o.dialTimeout,
		maxBody:     o.maxBody,
		log:         o.logger,
		clock:       o.clock,
		met:         newInstruments(),
		inflight:    xsync.NewMapOf[uint64, completer](),
	}
	c.ctx, c.cancel = context.WithCancelCause(o.rootCtx)
	return c, nil
}

// Send starts working req and returns its future.
//
// Send is asynchronous: it returns as soon as the request is accepted,
// and the future resolves once the request succeeds, fails
// permanently, or is cut short by Close. For a typed result, keep the
// concrete request and use its Future method; the future returned here
// is the same object.
//
// Sending a request that was already sent does not send it again: Send
// returns the request's existing future, which spans every connection
// attempt of the one logical operation.
//
// Send returns an error only for requests it cannot accept at all: a
// nil request, a Request implementation it does not know, or any
// request arriving after Close. A rejected request is left unsent.
func (c *Client) Send(req Request) (promise.Future, error) {
	if req == nil {
		return nil, errors.New("kivi: nil request")
	}
	switch r := req.(type) {
	case *KeysRequest:
		return c.send(req, r.Future())
	case *VersionRequest:
		return c.send(req, r.Future())
	default:
		return nil, fmt.Errorf("kivi: unknown request type %T", req)
	}
}

func (c *Client) send(req Request, cpl completer) (promise.Future, error) {
	sp := req.spec()
	sp.mu.Lock()
	if sp.sent {
		sp.mu.Unlock()
		return cpl, nil
	}
	if c.ctx.Err() != nil {
		sp.mu.Unlock()
		return nil, ErrClosed
	}
	sp.sent = true
	s := &conn.State{
		Endpoints: c.endpoints,
		Endpoint:  int(c.lastWorking.Load()),
		Start:     c.clock.Now(),
	}
	sp.state = s
	sp.mu.Unlock()

	id := c.nextID.Add(1)
	c.inflight.Store(id, cpl)
	cpl.Bind(promise.Config{
		Context: c.ctx,
		State:   s,
		Policy:  c.retry,
		Clock:   c.clock,
		Retry: func() {
			c.met.retries.Inc()
			c.attempt(req, cpl, s)
		},
		OnFinal: func(err error) {
			c.inflight.Delete(id)
			c.finishRequest(req, s, err)
		},
	})

	c.handlers.run(BeforeSend, s)
	c.log.Debug().
		Str("method", req.Method()).
		Str("path", req.Path()).
		Str("endpoint", s.URL().String()).
		Msg("sending request")
	go c.attempt(req, cpl, s)
	return cpl, nil
}

func (c *Client) finishRequest(req Request, s *conn.State, err error) {
	var srvErr *Error
	switch {
	case err == nil:
		c.met.request("ok")
	case errors.As(err, &srvErr):
		c.met.request("error")
	case errors.Is(err, ErrClosed):
		c.met.request("closed")
	default:
		c.met.request("failed")
	}
	c.handlers.run(AfterComplete, s)
	c.log.Debug().
		Err(err).
		Str("method", req.Method()).
		Str("path", req.Path()).
		Int("attempts", s.Attempt+1).
		Msg("request complete")
}

// Close shuts the client down. Requests still in flight fail with
// ErrClosed and their futures resolve; requests sent afterwards are
// refused with ErrClosed. Close is idempotent, safe to call
// concurrently with Send, and always returns nil; the error return
// exists so Client satisfies io.Closer.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.cancel(ErrClosed)
		c.inflight.Range(func(_ uint64, cpl completer) bool {
			cpl.Fail(ErrClosed)
			return true
		})
		c.log.Debug().Msg("client closed")
	})
	return nil
}

// WriteMetrics writes the client's metrics to w in Prometheus text
// exposition format. Wire it to an HTTP handler to scrape connection
// attempt, retry and outcome counters.
func (c *Client) WriteMetrics(w io.Writer) {
	c.met.write(w)
}

// Get reads the node at key, using the same policies followed by Send.
//
// To refine the read (recursive, sorted, quorum), use NewGetRequest
// and Send.
func (c *Client) Get(ctx context.Context, key string) (*KeysResponse, error) {
	return Get(ctx, c, key)
}

// Set sets the node at key to value, using the same policies followed
// by Send.
//
// To make the write conditional or give it a TTL, use NewSetRequest
// and Send.
func (c *Client) Set(ctx context.Context, key, value string) (*KeysResponse, error) {
	return Set(ctx, c, key, value)
}

// Create appends an in-order node with the given value under the
// directory at key, using the same policies followed by Send.
func (c *Client) Create(ctx context.Context, key, value string) (*KeysResponse, error) {
	return Create(ctx, c, key, value)
}

// Delete removes the node at key, using the same policies followed by
// Send.
//
// To delete a directory tree or make the delete conditional, use
// NewDeleteRequest and Send.
func (c *Client) Delete(ctx context.Context, key string) (*KeysResponse, error) {
	return Delete(ctx, c, key)
}

// Watch blocks until the node at key changes and returns the change.
// A non-zero waitIndex resumes the watch from that cluster index.
func (c *Client) Watch(ctx context.Context, key string, waitIndex uint64) (*KeysResponse, error) {
	return Watch(ctx, c, key, waitIndex)
}

// Version asks an endpoint for its server version, using the same
// policies followed by Send.
func (c *Client) Version(ctx context.Context) (string, error) {
	return Version(ctx, c)
}
