// Copyright 2025 The kivi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package kivi

import (
	"context"
	"io"

	"github.com/gokivi/kivi/promise"
)

// Sender is the interface that wraps the basic Send method.
//
// Send accepts a logical request, works it asynchronously, and returns
// its future. Client implements the Sender interface, and any other
// Sender implementation must behave substantially the same as
// Client.Send.
//
// Any Sender can be converted into a KV via the Inflate function.
type Sender interface {
	Send(req Request) (promise.Future, error)
}

// Getter is the interface that wraps the basic Get method.
//
// Get reads the node at a key and returns the response (and error, if
// any). Client implements the Getter interface, and any other Getter
// implementation must behave substantially the same as Client.Get.
//
// Any Sender can be used to emulate a Getter via the Get function.
type Getter interface {
	Get(ctx context.Context, key string) (*KeysResponse, error)
}

// Setter is the interface that wraps the basic Set method.
//
// Set writes a value to the node at a key, creating it if needed, and
// returns the response (and error, if any). Client implements the
// Setter interface, and any other Setter implementation must behave
// substantially the same as Client.Set.
//
// Any Sender can be used to emulate a Setter via the Set function.
type Setter interface {
	Set(ctx context.Context, key, value string) (*KeysResponse, error)
}

// Creator is the interface that wraps the basic Create method.
//
// Create appends an in-order node under the directory at a key and
// returns the response (and error, if any). Client implements the
// Creator interface, and any other Creator implementation must behave
// substantially the same as Client.Create.
//
// Any Sender can be used to emulate a Creator via the Create function.
type Creator interface {
	Create(ctx context.Context, key, value string) (*KeysResponse, error)
}

// Deleter is the interface that wraps the basic Delete method.
//
// Delete removes the node at a key and returns the response (and
// error, if any). Client implements the Deleter interface, and any
// other Deleter implementation must behave substantially the same as
// Client.Delete.
//
// Any Sender can be used to emulate a Deleter via the Delete function.
type Deleter interface {
	Delete(ctx context.Context, key string) (*KeysResponse, error)
}

// Watcher is the interface that wraps the basic Watch method.
//
// Watch blocks until the node at a key changes and returns the change
// (and error, if any). Client implements the Watcher interface, and
// any other Watcher implementation must behave substantially the same
// as Client.Watch.
//
// Any Sender can be used to emulate a Watcher via the Watch function.
type Watcher interface {
	Watch(ctx context.Context, key string, waitIndex uint64) (*KeysResponse, error)
}

// Versioner is the interface that wraps the basic Version method.
//
// Version asks an endpoint for its server version string. Client
// implements the Versioner interface, and any other Versioner
// implementation must behave substantially the same as Client.Version.
//
// Any Sender can be used to emulate a Versioner via the Version
// function.
type Versioner interface {
	Version(ctx context.Context) (string, error)
}

// KV is the interface that groups the basic Send, Get, Set, Create,
// Delete, Watch, Version, and Close methods.
//
// Any Sender can be converted into a KV via the Inflate function.
type KV interface {
	Sender
	Getter
	Setter
	Creator
	Deleter
	Watcher
	Versioner
	io.Closer
}

// Get uses the specified Sender to read the node at key, using the
// same policies as s.Send.
//
// To refine the read (recursive, sorted, quorum), use NewGetRequest
// and s.Send.
func Get(ctx context.Context, s Sender, key string) (*KeysResponse, error) {
	return sendKeys(ctx, s, NewGetRequest(key))
}

// Set uses the specified Sender to write value to the node at key,
// using the same policies as s.Send.
//
// To make the write conditional or give it a TTL, use NewSetRequest
// and s.Send.
func Set(ctx context.Context, s Sender, key, value string) (*KeysResponse, error) {
	return sendKeys(ctx, s, NewSetRequest(key, value))
}

// Create uses the specified Sender to append an in-order node with the
// given value under the directory at key, using the same policies as
// s.Send.
func Create(ctx context.Context, s Sender, key, value string) (*KeysResponse, error) {
	return sendKeys(ctx, s, NewCreateRequest(key, value))
}

// Delete uses the specified Sender to remove the node at key, using
// the same policies as s.Send.
//
// To delete a directory tree or make the delete conditional, use
// NewDeleteRequest and s.Send.
func Delete(ctx context.Context, s Sender, key string) (*KeysResponse, error) {
	return sendKeys(ctx, s, NewDeleteRequest(key))
}

// Watch uses the specified Sender to block until the node at key
// changes, using the same policies as s.Send. A non-zero waitIndex
// resumes the watch from that cluster index.
func Watch(ctx context.Context, s Sender, key string, waitIndex uint64) (*KeysResponse, error) {
	req := NewWatchRequest(key)
	if waitIndex > 0 {
		req.WaitIndex(waitIndex)
	}
	return sendKeys(ctx, s, req)
}

// Version uses the specified Sender to ask an endpoint for its server
// version, using the same policies as s.Send.
func Version(ctx context.Context, s Sender) (string, error) {
	req := NewVersionRequest()
	if _, err := s.Send(req); err != nil {
		return "", err
	}
	return req.Future().Result(ctx)
}

func sendKeys(ctx context.Context, s Sender, req *KeysRequest) (*KeysResponse, error) {
	if _, err := s.Send(req); err != nil {
		return nil, err
	}
	return req.Future().Result(ctx)
}

// Inflate converts any non-nil Sender into a KV. This may be helpful
// for interop across library boundaries, i.e. if code that only has
// access to a Sender needs to call a function that requires a KV.
func Inflate(s Sender) KV {
	if s == nil {
		panic("kivi: nil sender")
	}

	if kv, ok := s.(KV); ok {
		return kv
	}

	return inflated{s}
}

type inflated struct {
	sender Sender
}

func (i inflated) Send(req Request) (promise.Future, error) {
	return i.sender.Send(req)
}

func (i inflated) Get(ctx context.Context, key string) (*KeysResponse, error) {
	return Get(ctx, i.sender, key)
}

func (i inflated) Set(ctx context.Context, key, value string) (*KeysResponse, error) {
	return Set(ctx, i.sender, key, value)
}

func (i inflated) Create(ctx context.Context, key, value string) (*KeysResponse, error) {
	return Create(ctx, i.sender, key, value)
}

func (i inflated) Delete(ctx context.Context, key string) (*KeysResponse, error) {
	return Delete(ctx, i.sender, key)
}

func (i inflated) Watch(ctx context.Context, key string, waitIndex uint64) (*KeysResponse, error) {
	return Watch(ctx, i.sender, key, waitIndex)
}

func (i inflated) Version(ctx context.Context) (string, error) {
	return Version(ctx, i.sender)
}

func (i inflated) Close() error {
	if c, ok := i.sender.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
