package sketch

import (
	"fmt"
	"io"
	"strings"

	"github.com/engr-labs/godaq/pkg/clock"
	"github.com/engr-labs/godaq/pkg/gate"
	"github.com/engr-labs/godaq/pkg/sensor"
)

// Analog samples a set of analog pins at a fixed period with millisecond
// timing. When a pass observes the gate late enough that samples were lost,
// an out-of-band warning line reports the estimated missed count; the first
// sample never warns.
//
// Output: time_ms,sensor0,...,sensorN per sample.
type Analog struct {
	clk  clock.Clock
	pins []sensor.AnalogPin
	gate *gate.Gate
	w    io.Writer
}

// NewAnalog creates the multi-analog sketch. The period is in milliseconds;
// the clock must be a millisecond counter.
func NewAnalog(clk clock.Clock, pins []sensor.AnalogPin, periodMillis uint32) *Analog {
	return &Analog{
		clk:  clk,
		pins: pins,
		gate: gate.NewGate(periodMillis),
	}
}

// Header returns the header line for the configured pin count.
func (s *Analog) Header() string {
	var b strings.Builder
	b.WriteString("Time (ms)")
	for i := range s.pins {
		fmt.Fprintf(&b, ",Sensor %d (raw)", i)
	}
	return b.String()
}

// Setup emits the header line.
func (s *Analog) Setup(w io.Writer) error {
	s.w = w
	fmt.Fprintf(w, "%s\n", s.Header())
	return nil
}

// Loop runs one polling pass.
func (s *Analog) Loop() {
	now := s.clk.Now()

	d := s.gate.Check(now)
	if !d.Fired {
		return
	}

	if !d.First && d.Missed > 0 {
		fmt.Fprintf(s.w, "WARNING: Missed %.2f samples!\n", d.Missed)
	}

	var line strings.Builder
	fmt.Fprintf(&line, "%d", now)
	for _, pin := range s.pins {
		fmt.Fprintf(&line, ",%d", pin.Read())
	}
	line.WriteByte('\n')
	io.WriteString(s.w, line.String())
}

// Ensure Analog implements Sketch.
var _ Sketch = (*Analog)(nil)
