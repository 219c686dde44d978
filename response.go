// Copyright 2025 The kivi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package kivi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// A KeysResponse is the decoded result of a key-space request. It is
// the value a KeysRequest's future succeeds with.
type KeysResponse struct {
	// Action names the operation the server performed: "get", "set",
	// "create", "delete", "update", "compareAndSwap",
	// "compareAndDelete" or "expire".
	Action string `json:"action"`

	// Node is the node the operation acted on. It is never nil in a
	// response served with a success status.
	Node *Node `json:"node"`

	// PrevNode is the previous state of the node for operations that
	// replaced or removed one, and nil otherwise.
	PrevNode *Node `json:"prevNode"`

	// EtcdIndex, RaftIndex and RaftTerm are the cluster indexes
	// reported in the response headers alongside the payload.
	EtcdIndex uint64 `json:"-"`
	RaftIndex uint64 `json:"-"`
	RaftTerm  uint64 `json:"-"`
}

// A Node is one entry of the key space.
type Node struct {
	// Key is the full path of the node, for example "/queues/jobs/3".
	Key string `json:"key"`

	// Value is the node's value. It is empty for directory nodes.
	Value string `json:"value"`

	// Dir indicates whether the node is a directory.
	Dir bool `json:"dir,omitempty"`

	// CreatedIndex and ModifiedIndex are the cluster indexes at which
	// the node was created and last modified.
	CreatedIndex  uint64 `json:"createdIndex"`
	ModifiedIndex uint64 `json:"modifiedIndex"`

	// Expiration is the node's expiration time, nil if the node has
	// no TTL.
	Expiration *time.Time `json:"expiration,omitempty"`

	// TTL is the node's remaining time-to-live in seconds, zero if
	// the node has no TTL.
	TTL int64 `json:"ttl,omitempty"`

	// Nodes contains the children of a directory node, if the request
	// asked for them.
	Nodes []*Node `json:"nodes,omitempty"`
}

// parseKeysResponse decodes the wire response of a key-space request.
//
// A 200 or 201 status carries a KeysResponse payload; any other status
// carries a v2 error payload, which is returned as a *Error in the
// second position. A payload that does not decode as the shape its
// status promises is a protocol error, returned in the third position
// so the caller can route it to the retry path.
func parseKeysResponse(rsp *http.Response, body []byte) (*KeysResponse, *Error, error) {
	if rsp.StatusCode == http.StatusOK || rsp.StatusCode == http.StatusCreated {
		kr := KeysResponse{}
		if err := json.Unmarshal(body, &kr); err != nil {
			return nil, nil, fmt.Errorf("kivi: malformed response payload: %w", err)
		}
		kr.EtcdIndex = headerIndex(rsp, "X-Etcd-Index")
		kr.RaftIndex = headerIndex(rsp, "X-Raft-Index")
		kr.RaftTerm = headerIndex(rsp, "X-Raft-Term")
		return &kr, nil, nil
	}

	srvErr := Error{}
	if err := json.Unmarshal(body, &srvErr); err != nil || srvErr.Code == 0 {
		return nil, nil, fmt.Errorf("kivi: malformed error payload (status %d)", rsp.StatusCode)
	}
	return nil, &srvErr, nil
}

func headerIndex(rsp *http.Response, name string) uint64 {
	v := rsp.Header.Get(name)
	if v == "" {
		return 0
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
