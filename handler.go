// Copyright 2025 The kivi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package kivi

import (
	"github.com/gokivi/kivi/conn"
)

// A HandlerGroup is a group of event handler chains which can be
// installed in a Client.
type HandlerGroup struct {
	handlers [][]Handler
}

// PushBack adds an event handler to the back of the event handler chain
// for a specific event type.
func (g *HandlerGroup) PushBack(evt Event, h Handler) {
	if h == nil {
		panic("kivi: nil handler")
	}

	if g.handlers == nil {
		g.handlers = make([][]Handler, numEvents)
	}

	g.handlers[evt] = append(g.handlers[evt], h)
}

func (g *HandlerGroup) run(evt Event, s *conn.State) {
	i := int(evt)
	if i < len(g.handlers) {
		run(g.handlers[i], evt, s)
	}
}

func run(chain []Handler, evt Event, s *conn.State) {
	for _, h := range chain {
		h.Handle(evt, s)
	}
}

// A Handler handles the occurrence of an event while Client works a
// request.
type Handler interface {
	Handle(Event, *conn.State)
}

// The HandlerFunc type is an adapter to allow the use of ordinary
// functions as event handlers. If f is a function with appropriate
// signature, then HandlerFunc(f)
type HandlerFunc func(Event, *conn.State)

// Handle calls f(evt, s).
func (f HandlerFunc) Handle(evt Event, s *conn.State) {
	f(evt, s)
}
