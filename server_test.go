// Copyright 2025 The kivi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package kivi

import (
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// A wireCapture is one request exactly as it arrived at a test
// endpoint. Target is the unmodified request-target from the request
// line, so tests can check the raw bytes the client put on the wire.
type wireCapture struct {
	Method string
	Target string
	Host   string
	Header http.Header
	Body   string
}

// A record accumulates wireCaptures. Handlers observe into it before
// they respond, so once a future resolves the captures that produced
// it are visible.
type record struct {
	mu   sync.Mutex
	reqs []wireCapture
}

func (r *record) observe(req *http.Request) {
	b, _ := io.ReadAll(req.Body)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, wireCapture{
		Method: req.Method,
		Target: req.RequestURI,
		Host:   req.Host,
		Header: req.Header.Clone(),
		Body:   string(b),
	})
}

func (r *record) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reqs)
}

func (r *record) req(i int) wireCapture {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reqs[i]
}

// startServer starts a test endpoint that records every request into
// the returned record before handing it to fn. The server is torn down
// with the test.
func startServer(t *testing.T, fn http.HandlerFunc) (*httptest.Server, *record) {
	rec := &record{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.observe(r)
		fn(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

// keysHandler responds to every request with the given status and JSON
// body, stamping the cluster index headers when index is non-zero.
func keysHandler(status int, index uint64, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if index > 0 {
			w.Header().Set("X-Etcd-Index", strconv.FormatUint(index, 10))
			w.Header().Set("X-Raft-Index", strconv.FormatUint(2*index, 10))
			w.Header().Set("X-Raft-Term", "7")
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

// deadEndpoint returns an endpoint URL nothing is listening on, so
// connection attempts against it are refused.
func deadEndpoint(t *testing.T) string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return "http://" + addr
}
