// Package sketch implements the three acquisition programs the rig can
// run: strain (interrupt-gated load cell at microsecond timing),
// multi-analog (fixed-rate analog pins at millisecond timing) and heater
// (periodic temperature plus electrical aggregation with a relay hook).
//
// Each sketch has two lifecycle hooks: a one-time Setup and a repeatedly
// polled Loop, run forever on a single goroutine. Every data line and every
// diagnostic line is emitted with a single Write to the output stream, so a
// downstream reader never sees a torn line.
package sketch

import (
	"context"
	"io"
	"time"
)

// Sketch is one acquisition program.
type Sketch interface {
	// Setup runs once: emits the header line and initializes the sensors.
	// A Setup error is fatal; the sketch must not be looped after one.
	Setup(w io.Writer) error
	// Loop runs one pass of the polling routine: check the sample gate,
	// and on a fire read the sensors and emit one line.
	Loop()
}

// Run polls the sketch until the context is cancelled. Each pass runs to
// completion before the next is scheduled; there is no preemption. The poll
// interval bounds how late a gate decision can be observed, so it should be
// well under the sketch's sample period.
func Run(ctx context.Context, s Sketch, w io.Writer, poll time.Duration) error {
	if err := s.Setup(w); err != nil {
		return err
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Loop()
		}
	}
}
