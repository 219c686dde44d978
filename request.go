// Copyright 2025 The kivi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package kivi

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gokivi/kivi/conn"
	"github.com/gokivi/kivi/promise"
)

// A Param is one key=value parameter of a logical request. Parameters
// keep the order in which they were first set, and that encounter
// order is the order they are emitted on the wire.
type Param struct {
	Key   string
	Value string
}

// A Request is a logical request the client can send: a domain-level
// description of one operation against the cluster, prior to wire
// translation.
//
// Request is a closed set: the only implementations are KeysRequest
// and VersionRequest. Sending anything else is a configuration error
// that Send reports synchronously.
//
// A Request instance describes exactly one logical operation. Once it
// has been sent its future is bound to that operation; the instance
// must not be reused to mean a different one.
type Request interface {
	// Method returns the HTTP method of the request.
	Method() string

	// Path returns the target path of the request, for example
	// "/v2/keys/queues/jobs".
	Path() string

	// Params returns a copy of the request's parameters in encounter
	// order.
	Params() []Param

	// WireRequest returns the wire-level HTTP request built for the
	// most recent connection attempt, or nil before the first attempt
	// reaches the build step. It is recorded for inspection only.
	WireRequest() *http.Request

	spec() *requestSpec
}

// requestSpec is the state shared by every request variant. Variants
// embed it, which both promotes the common accessors and seals the
// Request interface to this package.
type requestSpec struct {
	method  string
	path    string
	params  []Param
	timeout time.Duration

	mu    sync.Mutex
	sent  bool
	state *conn.State
	wire  *http.Request
}

// Method returns the HTTP method of the request.
func (s *requestSpec) Method() string {
	return s.method
}

// Path returns the target path of the request.
func (s *requestSpec) Path() string {
	return s.path
}

// Params returns a copy of the request's parameters in encounter
// order.
func (s *requestSpec) Params() []Param {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.params) == 0 {
		return nil
	}
	ps := make([]Param, len(s.params))
	copy(ps, s.params)
	return ps
}

// WireRequest returns the wire-level HTTP request built for the most
// recent connection attempt, or nil before the first attempt reaches
// the build step.
func (s *requestSpec) WireRequest() *http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wire
}

func (s *requestSpec) spec() *requestSpec {
	return s
}

// setParam records a parameter, replacing the value in place if the
// key was set before and appending otherwise, so encounter order is
// stable under repeated modifier calls.
func (s *requestSpec) setParam(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.params {
		if s.params[i].Key == key {
			s.params[i].Value = value
			return
		}
	}
	s.params = append(s.params, Param{Key: key, Value: value})
}

func (s *requestSpec) setWire(wire *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wire = wire
}

// A KeysRequest is a logical request against the key space. Create one
// with NewGetRequest, NewSetRequest, NewCreateRequest,
// NewDeleteRequest or NewWatchRequest, refine it with the fluent
// modifiers, and pass it to Client.Send. Its future succeeds with a
// *KeysResponse.
type KeysRequest struct {
	requestSpec

	once sync.Once
	p    *promise.Promise[*KeysResponse]
}

// A VersionRequest asks an endpoint for its server version. Its future
// succeeds with the response body decoded as UTF-8 text.
type VersionRequest struct {
	requestSpec

	once sync.Once
	p    *promise.Promise[string]
}

// NewGetRequest creates a request that reads the node at key.
func NewGetRequest(key string) *KeysRequest {
	return newKeysRequest(http.MethodGet, key)
}

// NewSetRequest creates a request that sets the node at key to value,
// creating it if it does not exist.
func NewSetRequest(key, value string) *KeysRequest {
	r := newKeysRequest(http.MethodPut, key)
	r.setParam("value", value)
	return r
}

// NewCreateRequest creates a request that appends an in-order node
// with the given value under the directory at key.
func NewCreateRequest(key, value string) *KeysRequest {
	r := newKeysRequest(http.MethodPost, key)
	r.setParam("value", value)
	return r
}

// NewDeleteRequest creates a request that removes the node at key.
func NewDeleteRequest(key string) *KeysRequest {
	return newKeysRequest(http.MethodDelete, key)
}

// NewWatchRequest creates a request that blocks until the node at key
// changes and responds with the change. Combine with WaitIndex to
// resume a watch from a known cluster index, and with Timeout or a
// timeout policy to bound the wait.
func NewWatchRequest(key string) *KeysRequest {
	r := newKeysRequest(http.MethodGet, key)
	r.setParam("wait", "true")
	return r
}

// NewVersionRequest creates a request that asks an endpoint for its
// server version.
func NewVersionRequest() *VersionRequest {
	return &VersionRequest{requestSpec: requestSpec{method: http.MethodGet, path: "/version"}}
}

func newKeysRequest(method, key string) *KeysRequest {
	return &KeysRequest{requestSpec: requestSpec{method: method, path: keysPath(key)}}
}

func keysPath(key string) string {
	return "/v2/keys/" + strings.TrimPrefix(key, "/")
}

// Future returns the request's response future, creating it on first
// use. The same future is returned for the life of the request; it
// spans every connection attempt the request makes.
func (r *KeysRequest) Future() *promise.Promise[*KeysResponse] {
	r.once.Do(func() { r.p = promise.New[*KeysResponse]() })
	return r.p
}

// Future returns the request's response future, creating it on first
// use. The same future is returned for the life of the request; it
// spans every connection attempt the request makes.
func (r *VersionRequest) Future() *promise.Promise[string] {
	r.once.Do(func() { r.p = promise.New[string]() })
	return r.p
}

// TTL gives the node a time-to-live, rounded down to whole seconds. A
// zero duration sends an empty ttl parameter, which clears an existing
// TTL on update.
func (r *KeysRequest) TTL(d time.Duration) *KeysRequest {
	if d <= 0 {
		r.setParam("ttl", "")
		return r
	}
	r.setParam("ttl", strconv.FormatInt(int64(d/time.Second), 10))
	return r
}

// Recursive applies the operation to the node and all of its children.
func (r *KeysRequest) Recursive() *KeysRequest {
	r.setParam("recursive", "true")
	return r
}

// Sorted asks for directory listings in sorted key order.
func (r *KeysRequest) Sorted() *KeysRequest {
	r.setParam("sorted", "true")
	return r
}

// Dir marks the target node as a directory.
func (r *KeysRequest) Dir() *KeysRequest {
	r.setParam("dir", "true")
	return r
}

// Quorum asks for a fully consistent read served through the cluster
// leader.
func (r *KeysRequest) Quorum() *KeysRequest {
	r.setParam("quorum", "true")
	return r
}

// Wait turns the request into a watch: the server holds the response
// until the node changes.
func (r *KeysRequest) Wait() *KeysRequest {
	r.setParam("wait", "true")
	return r
}

// WaitIndex starts a watch from the given cluster index instead of the
// next change.
func (r *KeysRequest) WaitIndex(index uint64) *KeysRequest {
	r.setParam("waitIndex", strconv.FormatUint(index, 10))
	return r
}

// PrevValue makes the operation conditional on the node's current
// value (compare-and-swap, compare-and-delete).
func (r *KeysRequest) PrevValue(value string) *KeysRequest {
	r.setParam("prevValue", value)
	return r
}

// PrevIndex makes the operation conditional on the node's current
// modified index.
func (r *KeysRequest) PrevIndex(index uint64) *KeysRequest {
	r.setParam("prevIndex", strconv.FormatUint(index, 10))
	return r
}

// PrevExist makes the operation conditional on whether the node
// already exists: true demands an update of an existing node, false
// demands a fresh create.
func (r *KeysRequest) PrevExist(exist bool) *KeysRequest {
	r.setParam("prevExist", strconv.FormatBool(exist))
	return r
}

// Timeout bounds how long each connection attempt of this request may
// wait for the response. A positive duration overrides the client's
// timeout policy for this request, zero defers to the policy, and a
// negative duration disables the read deadline outright.
func (r *KeysRequest) Timeout(d time.Duration) *KeysRequest {
	r.timeout = d
	return r
}

// Timeout bounds how long each connection attempt of this request may
// wait for the response. A positive duration overrides the client's
// timeout policy for this request, zero defers to the policy, and a
// negative duration disables the read deadline outright.
func (r *VersionRequest) Timeout(d time.Duration) *VersionRequest {
	r.timeout = d
	return r
}
