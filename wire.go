// Copyright 2025 The kivi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package kivi

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// buildWireRequest translates a logical request into the HTTP/1.1
// request that goes out on one connection to the given endpoint.
//
// The translation rules are part of the client's contract with
// existing deployments and are deliberately literal:
//
//   - Parameters of a POST are sent as an application/x-www-form-urlencoded
//     body in encounter order.
//   - Parameters of any other method are joined into a query string in
//     encounter order, without percent-encoding keys or values. Bytes
//     that are significant to the server pass through verbatim.
//   - If the path itself contains a "?", the parameters are dropped
//     and the path is sent as the request target unchanged.
//   - Every request carries "Connection: keep-alive" and the Host of
//     the endpoint it is sent to.
//
// Only bytes that would corrupt the request line itself (CR, LF, NUL)
// are refused, and refusal is an error from the build step rather than
// a failure of the attempt.
func buildWireRequest(endpoint *url.URL, req Request) (*http.Request, error) {
	sp := req.spec()
	if err := checkTargetBytes(sp.path); err != nil {
		return nil, err
	}

	target := sp.path
	header := make(http.Header)
	header.Set("Connection", "keep-alive")

	var body io.ReadCloser
	var length int64
	params := req.Params()
	switch {
	case sp.method == http.MethodPost:
		form := encodeForm(params)
		header.Set("Content-Type", "application/x-www-form-urlencoded")
		body = io.NopCloser(strings.NewReader(form))
		length = int64(len(form))
	case len(params) > 0 && !strings.Contains(sp.path, "?"):
		q, err := rawQuery(params)
		if err != nil {
			return nil, err
		}
		target += "?" + q
	}

	// An opaque URL makes (*http.Request).Write emit the target
	// exactly as assembled here.
	wire := &http.Request{
		Method:        sp.method,
		URL:           &url.URL{Opaque: target},
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Host:          endpoint.Host,
		Body:          body,
		ContentLength: length,
	}
	sp.setWire(wire)
	return wire, nil
}

// rawQuery joins parameters into a query string in encounter order
// with no percent-encoding.
func rawQuery(params []Param) (string, error) {
	var b strings.Builder
	for i, p := range params {
		if err := checkTargetBytes(p.Key); err != nil {
			return "", err
		}
		if err := checkTargetBytes(p.Value); err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}
	return b.String(), nil
}

// encodeForm encodes parameters as a form body in encounter order.
// url.Values is unsuitable here because Encode sorts keys.
func encodeForm(params []Param) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// checkTargetBytes refuses the bytes that would terminate or truncate
// the request line: CR, LF and NUL.
func checkTargetBytes(s string) error {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\r', '\n', 0:
			return fmt.Errorf("kivi: illegal byte %q in request target", s[i])
		}
	}
	return nil
}
