// Copyright 2025 The kivi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package kivi

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrClosed is returned by Send on a closed client, and is the
	// terminal error of every future that was still in flight when the
	// client was closed.
	ErrClosed = errors.New("kivi: client closed")

	// ErrNoEndpoints is returned by New when the endpoint list is
	// empty.
	ErrNoEndpoints = errors.New("kivi: no endpoints")

	// ErrResponseTooLarge is the cause of an attempt failure when a
	// response body exceeds the client's configured size cap.
	ErrResponseTooLarge = errors.New("kivi: response body too large")
)

// Error codes served by the cluster in v2 error payloads.
const (
	ErrCodeKeyNotFound       = 100
	ErrCodeTestFailed        = 101
	ErrCodeNotFile           = 102
	ErrCodeNotDir            = 104
	ErrCodeNodeExist         = 105
	ErrCodeRootReadOnly      = 107
	ErrCodeDirNotEmpty       = 108
	ErrCodePrevValueRequired = 201
	ErrCodeTTLNaN            = 202
	ErrCodeIndexNaN          = 203
	ErrCodeRaftInternal      = 300
	ErrCodeLeaderElect       = 301
	ErrCodeWatcherCleared    = 400
	ErrCodeEventIndexCleared = 401
)

// An Error is an error payload served by the cluster in response to a
// key-space request. It is a domain-level result, not a transport
// failure: the request reached a server and the server answered, so an
// Error is always a terminal future outcome and never enters the retry
// path.
type Error struct {
	// Code is the v2 error code, for example ErrCodeKeyNotFound.
	Code int `json:"errorCode"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Cause names the key or condition the error relates to.
	Cause string `json:"cause"`

	// Index is the cluster index at which the error was served.
	Index uint64 `json:"index"`
}

func (e *Error) Error() string {
	s := fmt.Sprintf("kivi: server error %d: %s", e.Code, e.Message)
	if e.Cause != "" {
		s += fmt.Sprintf(" (%s)", e.Cause)
	}
	return s
}

// IsKeyNotFound reports whether err is a server Error with the key not
// found code.
func IsKeyNotFound(err error) bool {
	return hasErrorCode(err, ErrCodeKeyNotFound)
}

// IsNodeExist reports whether err is a server Error with the node
// exist code.
func IsNodeExist(err error) bool {
	return hasErrorCode(err, ErrCodeNodeExist)
}

// IsTestFailed reports whether err is a server Error with the compare
// failed code.
func IsTestFailed(err error) bool {
	return hasErrorCode(err, ErrCodeTestFailed)
}

func hasErrorCode(err error, code int) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

func urlErrorWrap(method, urlStr string, err error) error {
	if _, ok := err.(*url.Error); ok {
		return err
	}

	return &url.Error{
		Op:  urlErrorOp(method),
		URL: urlStr,
		Err: err,
	}
}

// urlErrorOp is lifted verbatim from net/http/client.go
func urlErrorOp(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}
