package sketch

import (
	"fmt"
	"io"

	"github.com/engr-labs/godaq/pkg/clock"
	"github.com/engr-labs/godaq/pkg/gate"
	"github.com/engr-labs/godaq/pkg/sensor"
)

// StrainHeader is the first line of the strain sketch's output stream.
const StrainHeader = "Times (us),interval (us),strain (raw),sensorValue0 (raw)"

// Strain samples a load-cell amplifier at microsecond timing, gated on the
// amplifier's conversion-complete edge AND a minimum period. The period
// keeps the loop from out-running the amplifier's conversion rate; the edge
// flag tolerates jitter in when the loop observes it.
//
// Output: timestamp_micros,interval_micros,strain,sensorValue0 per sample.
type Strain struct {
	clk  clock.Clock
	amp  sensor.LoadCellAmp
	aux  sensor.AnalogPin
	gate *gate.TriggeredGate
	w    io.Writer
}

// NewStrain creates the strain sketch. The period is in microseconds; the
// clock must be a microsecond counter.
func NewStrain(clk clock.Clock, amp sensor.LoadCellAmp, aux sensor.AnalogPin, periodMicros uint32) *Strain {
	return &Strain{
		clk:  clk,
		amp:  amp,
		aux:  aux,
		gate: gate.NewTriggeredGate(periodMicros, gate.NewReadyFlag()),
	}
}

// Setup emits the header, starts the amplifier and wires its data-ready
// edge to the sample gate. The edge callback does nothing but raise the
// flag; the raw read stays in Loop to keep the callback minimal.
func (s *Strain) Setup(w io.Writer) error {
	s.w = w
	fmt.Fprintf(w, "%s\n", StrainHeader)

	if err := s.amp.Begin(); err != nil {
		return fmt.Errorf("failed to start load cell amplifier: %w", err)
	}
	s.amp.OnDataReady(s.gate.Flag().Set)

	return nil
}

// Loop runs one polling pass.
func (s *Strain) Loop() {
	now := s.clk.Now()

	d := s.gate.Check(now)
	if !d.Fired {
		return
	}

	strain := s.amp.ReadRaw()
	aux := s.aux.Read()

	fmt.Fprintf(s.w, "%d,%d,%d,%d\n", now, d.Elapsed, strain, aux)
}

// Ensure Strain implements Sketch.
var _ Sketch = (*Strain)(nil)
