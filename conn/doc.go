// Copyright 2025 The kivi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package conn contains the core type State, which describes the
connection state of a single logical request to a kivi cluster.

A State is created for each request the client sends and is carried,
unchanged in identity, across every connection attempt the request
makes, including retries to other endpoints. State is the input type
for the callbacks invoked while a request is in flight: timeout
policies, retry policies, and event handlers. You will typically not
allocate State instances yourself, but will instead work with the ones
handed out by the client's send logic.
*/
package conn
