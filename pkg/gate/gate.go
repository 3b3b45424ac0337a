// Package gate implements the fixed-rate sample gates shared by the
// acquisition sketches: a timestamp comparison that decides, on every pass
// of a polling loop, whether enough time has elapsed (and, in the triggered
// variant, whether a hardware edge has flagged new data) to take a sample.
//
// All timestamps are 32-bit counter readings (see pkg/clock); elapsed time
// is unsigned subtraction, which stays correct across a single counter wrap.
package gate

// Decision is the outcome of one gate check.
type Decision struct {
	Fired   bool    // A sample should be taken now.
	Elapsed uint32  // Counter ticks since the previous sample.
	First   bool    // This is the first sample since the gate was created.
	Missed  float64 // Estimated samples lost to overrun; meaningful only when Fired and not First.
}

// Gate is the time-only sample gate: it fires whenever the configured
// period has elapsed since the last sample. When the caller runs slower
// than the period, samples are dropped rather than queued; Missed estimates
// how many.
type Gate struct {
	period uint32
	last   uint32
	primed bool
}

// NewGate creates a gate with the given period, in counter ticks.
func NewGate(period uint32) *Gate {
	return &Gate{period: period}
}

// Check decides whether to sample at the given counter reading. On a fire
// it records now as the last-sample timestamp; otherwise no state changes.
func (g *Gate) Check(now uint32) Decision {
	elapsed := now - g.last
	if elapsed < g.period {
		return Decision{}
	}

	d := Decision{
		Fired:   true,
		Elapsed: elapsed,
		First:   !g.primed,
	}
	if g.primed {
		// Real-valued division: a fractional overrun must not be masked
		// by integer truncation.
		d.Missed = float64(elapsed)/float64(g.period) - 1.0
	}

	g.last = now
	g.primed = true
	return d
}

// TriggeredGate is the event-plus-time sample gate: it fires only when BOTH
// the ready flag is set AND the minimum period has elapsed since the last
// sample. The period keeps the caller from over-sampling faster than the
// sensor's conversion rate; the flag tolerates jitter in when the polling
// loop happens to run.
type TriggeredGate struct {
	period uint32
	last   uint32
	primed bool
	flag   *ReadyFlag
}

// NewTriggeredGate creates a gate with the given minimum period, in counter
// ticks, gated on the given ready flag.
func NewTriggeredGate(period uint32, flag *ReadyFlag) *TriggeredGate {
	return &TriggeredGate{period: period, flag: flag}
}

// Flag returns the ready flag this gate consumes.
func (g *TriggeredGate) Flag() *ReadyFlag {
	return g.flag
}

// Check decides whether to sample at the given counter reading. On a fire
// the flag is consumed and now becomes the last-sample timestamp. If the
// period has not elapsed the flag is left pending for a later pass.
func (g *TriggeredGate) Check(now uint32) Decision {
	if !g.flag.Pending() {
		return Decision{}
	}
	elapsed := now - g.last
	if elapsed < g.period {
		return Decision{}
	}

	g.flag.Take()
	d := Decision{
		Fired:   true,
		Elapsed: elapsed,
		First:   !g.primed,
	}
	g.last = now
	g.primed = true
	return d
}
