// Package clock provides 32-bit monotonic counters that behave like the
// millis()/micros() timers on an AVR microcontroller.
//
// Host runtimes carry 64-bit nanosecond clocks, so every reading is masked
// to 32 bits before use. The millisecond counter wraps after about 49.7
// days; the microsecond counter wraps after about 71.6 minutes. Elapsed-time
// arithmetic stays correct across a single wrap because unsigned subtraction
// is modulo 2^32 - values past the wrap horizon are only valid FOR
// CALCULATING THE TIME ELAPSED, never as absolute timestamps.
package clock

import "time"

// Clock reads a 32-bit monotonic counter.
type Clock interface {
	Now() uint32
}

// Millis counts milliseconds since construction, truncated to 32 bits.
type Millis struct {
	start time.Time
}

// NewMillis creates a millisecond counter starting at zero.
func NewMillis() *Millis {
	return &Millis{start: time.Now()}
}

// Now returns milliseconds since construction, modulo 2^32.
func (c *Millis) Now() uint32 {
	return uint32(time.Since(c.start).Milliseconds())
}

// Micros counts microseconds since construction, truncated to 32 bits.
type Micros struct {
	start time.Time
}

// NewMicros creates a microsecond counter starting at zero.
func NewMicros() *Micros {
	return &Micros{start: time.Now()}
}

// Now returns microseconds since construction, modulo 2^32.
func (c *Micros) Now() uint32 {
	return uint32(time.Since(c.start).Microseconds())
}

// Sim is a manually advanced counter for tests and scripted scenarios.
type Sim struct {
	now uint32
}

// NewSim creates a simulated counter starting at the given reading.
func NewSim(start uint32) *Sim {
	return &Sim{now: start}
}

// Now returns the current simulated reading.
func (c *Sim) Now() uint32 {
	return c.now
}

// Advance moves the counter forward by d ticks, wrapping modulo 2^32.
func (c *Sim) Advance(d uint32) {
	c.now += d
}

// Set jumps the counter to an absolute reading.
func (c *Sim) Set(now uint32) {
	c.now = now
}

// Elapsed returns the duration between two counter readings. Modulo
// subtraction yields the true elapsed ticks across a single counter wrap.
func Elapsed(now, last uint32) uint32 {
	return now - last
}

// Ensure counter types implement Clock.
var _ Clock = (*Millis)(nil)
var _ Clock = (*Micros)(nil)
var _ Clock = (*Sim)(nil)
