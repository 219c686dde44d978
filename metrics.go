// Copyright 2025 The kivi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package kivi

import (
	"fmt"
	"io"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

// instruments holds the client's metric set. Every Client owns its own
// set so that two clients in one process never mix their series.
type instruments struct {
	set     *metrics.Set
	retries *metrics.Counter
	connect *metrics.Histogram
}

func newInstruments() *instruments {
	set := metrics.NewSet()
	return &instruments{
		set:     set,
		retries: set.NewCounter("kivi_retries_total"),
		connect: set.NewHistogram("kivi_connect_duration_seconds"),
	}
}

func (m *instruments) attempt(endpoint string) {
	m.set.GetOrCreateCounter(fmt.Sprintf(`kivi_attempts_total{endpoint=%q}`, endpoint)).Inc()
}

func (m *instruments) connectFailure(endpoint string) {
	m.set.GetOrCreateCounter(fmt.Sprintf(`kivi_connect_failures_total{endpoint=%q}`, endpoint)).Inc()
}

func (m *instruments) request(result string) {
	m.set.GetOrCreateCounter(fmt.Sprintf(`kivi_requests_total{result=%q}`, result)).Inc()
}

func (m *instruments) connectDuration(d time.Duration) {
	m.connect.Update(d.Seconds())
}

func (m *instruments) write(w io.Writer) {
	m.set.WritePrometheus(w)
}
