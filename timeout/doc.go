// Copyright 2025 The kivi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package timeout defines flexible policies for bounding how long each
// connection attempt of a request may wait for its response, including
// on retries. A generic interface for timeout policies is provided,
// Policy, along with several useful policy generating functions and
// built-in policies.
package timeout
