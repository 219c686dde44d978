// Copyright 2025 The kivi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies errors from connection attempts and
// response reads as transient or non-transient. This is handy for
// writing retry policies, and for other purposes such as bucketing
// error metrics.
//
// Package transient is extremely lightweight, as it depends only on
// standard library packages, so it doesn't bring any significant
// dependencies when imported as a standalone package.
package transient
