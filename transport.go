// Copyright 2025 The kivi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package kivi

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gokivi/kivi/conn"
)

// attempt runs one connection attempt of req: connect to the state's
// current endpoint, translate, exchange, and complete or schedule a
// retry through the future. Every attempt runs on its own goroutine
// and its own connection.
func (c *Client) attempt(req Request, cpl completer, s *conn.State) {
	c.handlers.run(BeforeAttempt, s)
	endpoint := s.URL()
	c.met.attempt(endpoint.Host)

	nc, err := c.connect(endpoint)
	if err != nil {
		c.met.connectFailure(endpoint.Host)
		c.failAttempt(req, cpl, s, err)
		return
	}
	defer nc.Close()
	c.lastWorking.Store(int64(s.Endpoint))

	wire, err := buildWireRequest(endpoint, req)
	if err != nil {
		// A request that cannot be translated will never succeed, so
		// the build error is terminal rather than retried.
		c.finishAttempt(s, err)
		cpl.Fail(err)
		return
	}

	rsp, body, err := c.exchange(nc, wire, c.timeoutFor(req, s))
	if err != nil {
		c.failAttempt(req, cpl, s, err)
		return
	}

	deliver, err := c.dispatch(req, cpl, rsp, body)
	if err != nil {
		c.failAttempt(req, cpl, s, err)
		return
	}
	c.finishAttempt(s, nil)
	deliver()
}

// connect dials the endpoint, completing the TLS handshake for https
// endpoints, all within the client's dial timeout.
func (c *Client) connect(endpoint *url.URL) (net.Conn, error) {
	start := c.clock.Now()
	ctx, cancel := context.WithTimeout(c.ctx, c.dialTimeout)
	defer cancel()

	var d net.Dialer
	nc, err := d.DialContext(ctx, "tcp", hostPort(endpoint))
	if err != nil {
		return nil, err
	}

	if endpoint.Scheme == "https" {
		cfg := c.tls.Clone()
		if cfg == nil {
			cfg = &tls.Config{}
		}
		if cfg.ServerName == "" {
			cfg.ServerName = endpoint.Hostname()
		}
		tc := tls.Client(nc, cfg)
		if err := tc.HandshakeContext(ctx); err != nil {
			nc.Close()
			return nil, err
		}
		nc = tc
	}

	c.met.connectDuration(c.clock.Since(start))
	c.log.Debug().Str("endpoint", endpoint.Host).Msg("connected")
	return nc, nil
}

// exchange writes the wire request on nc and reads back the response,
// buffering the body up to the client's cap. A positive d arms a read
// deadline on the connection; closing the client severs the exchange
// by closing nc.
func (c *Client) exchange(nc net.Conn, wire *http.Request, d time.Duration) (*http.Response, []byte, error) {
	stop := context.AfterFunc(c.ctx, func() { nc.Close() })
	defer stop()

	if d > 0 {
		if err := nc.SetReadDeadline(time.Now().Add(d)); err != nil {
			return nil, nil, err
		}
	}
	if err := wire.Write(nc); err != nil {
		return nil, nil, err
	}

	rsp, err := http.ReadResponse(bufio.NewReader(nc), wire)
	if err != nil {
		return nil, nil, err
	}
	defer rsp.Body.Close()

	body, err := readCapped(rsp.Body, c.maxBody)
	if err != nil {
		return nil, nil, err
	}
	return rsp, body, nil
}

// dispatch interprets the buffered response for the request variant.
// It returns the completion to run once the attempt has been accounted
// for, so AfterAttempt handlers observe the attempt before the
// future's own callbacks fire.
func (c *Client) dispatch(req Request, cpl completer, rsp *http.Response, body []byte) (func(), error) {
	switch r := req.(type) {
	case *KeysRequest:
		kr, srvErr, err := parseKeysResponse(rsp, body)
		if err != nil {
			return nil, err
		}
		if srvErr != nil {
			return func() { r.Future().Fail(srvErr) }, nil
		}
		return func() { r.Future().Succeed(kr) }, nil
	case *VersionRequest:
		return func() { r.Future().Succeed(string(body)) }, nil
	default:
		// Send screens the request type.
		return func() { cpl.Fail(fmt.Errorf("kivi: unknown request type %T", req)) }, nil
	}
}

// failAttempt accounts for a failed attempt and hands the error to the
// future, which consults the retry policy and either schedules the
// next attempt or fails for good.
func (c *Client) failAttempt(req Request, cpl completer, s *conn.State, err error) {
	err = urlErrorWrap(req.Method(), s.URL().String()+req.Path(), err)
	c.finishAttempt(s, err)
	cpl.FailAttempt(err)
}

// finishAttempt records the attempt outcome on the state and fires the
// attempt-level events.
func (c *Client) finishAttempt(s *conn.State, err error) {
	s.Err = err
	if err != nil && s.Timeout() {
		s.Timeouts++
		c.handlers.run(AfterAttemptTimeout, s)
	}
	c.handlers.run(AfterAttempt, s)
	if err != nil {
		c.log.Warn().
			Err(err).
			Str("endpoint", s.URL().String()).
			Int("attempt", s.Attempt).
			Msg("attempt failed")
	}
}

// timeoutFor resolves the read deadline for one attempt. A non-zero
// per-request timeout overrides the client's timeout policy, with
// negative meaning no deadline at all.
func (c *Client) timeoutFor(req Request, s *conn.State) time.Duration {
	if d := req.spec().timeout; d != 0 {
		if d < 0 {
			return 0
		}
		return d
	}
	return c.timeout.Timeout(s)
}

// hostPort returns the endpoint's dial address, defaulting the port
// from the scheme when the URL does not carry one.
func hostPort(u *url.URL) string {
	if u.Port() != "" {
		return u.Host
	}
	if u.Scheme == "https" {
		return net.JoinHostPort(u.Hostname(), "443")
	}
	return net.JoinHostPort(u.Hostname(), "80")
}

// readCapped buffers r up to max bytes and fails with
// ErrResponseTooLarge when the body would exceed the cap.
func readCapped(r io.Reader, max int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > max {
		return nil, ErrResponseTooLarge
	}
	return b, nil
}
