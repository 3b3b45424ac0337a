package sketch

import (
	"fmt"
	"io"
	"time"

	"github.com/engr-labs/godaq/pkg/clock"
	"github.com/engr-labs/godaq/pkg/gate"
	"github.com/engr-labs/godaq/pkg/sensor"
)

// HeaterHeader is the first line of the heater sketch's output stream.
const HeaterHeader = "Time (ms), Temperature (C), Shunt Voltage, Bus Voltage (V), Current (mA), Power (mW), Load Voltage (V)"

// InvalidTempMarker replaces the temperature field when the probe reports
// the disconnected sentinel. It is negative and outside any physically
// reachable reading, so a downstream parser can spot it in-band.
const InvalidTempMarker = -999

// Action is a heater relay command decided by a control policy.
type Action int

const (
	// ActionNone leaves the relay untouched.
	ActionNone Action = iota
	// ActionOn energizes the relay.
	ActionOn
	// ActionOff de-energizes the relay.
	ActionOff
)

// Policy decides the relay action from a valid temperature reading. The
// control predicate is deliberately external: the sketch configures the
// relay but ships without a thermostat algorithm, and a nil policy never
// drives the pin.
type Policy func(tempC float32) Action

// Heater aggregates a temperature probe and a power monitor once per
// period. A temperature conversion needs a fixed settling delay between
// request and read; that wait blocks the loop and is the only blocking wait
// in any sketch. A disconnected probe is non-fatal: the sample is emitted
// with the out-of-band marker in the temperature field plus a separate
// diagnostic line, and the relay policy is skipped for that pass.
//
// Output: time_ms,temperature_C,shunt_mV,bus_V,current_mA,power_mW,load_V.
type Heater struct {
	clk    clock.Clock
	power  sensor.PowerMonitor
	probe  sensor.TempProbe
	relay  sensor.DigitalOut
	policy Policy
	gate   *gate.Gate
	settle time.Duration
	w      io.Writer

	sleep func(time.Duration)
}

// NewHeater creates the heater sketch. The period is in milliseconds; the
// clock must be a millisecond counter. A nil policy disables relay control.
func NewHeater(clk clock.Clock, power sensor.PowerMonitor, probe sensor.TempProbe, relay sensor.DigitalOut, periodMillis uint32, settle time.Duration, policy Policy) *Heater {
	return &Heater{
		clk:    clk,
		power:  power,
		probe:  probe,
		relay:  relay,
		policy: policy,
		gate:   gate.NewGate(periodMillis),
		settle: settle,
		sleep:  time.Sleep,
	}
}

// Setup starts the power monitor and the temperature probe. A power monitor
// that fails to start is fatal: one diagnostic line, then the error - the
// sketch must not be looped afterwards.
func (s *Heater) Setup(w io.Writer) error {
	s.w = w

	if err := s.power.Begin(); err != nil {
		fmt.Fprintf(w, "Failed to find INA219 chip\n")
		return fmt.Errorf("failed to start power monitor: %w", err)
	}

	fmt.Fprintf(w, "%s\n", HeaterHeader)

	s.probe.Begin()

	return nil
}

// Loop runs one polling pass.
func (s *Heater) Loop() {
	now := s.clk.Now()

	d := s.gate.Check(now)
	if !d.Fired {
		return
	}

	// Request a conversion and block for the settling delay before the
	// result is valid.
	s.probe.RequestTemperatures()
	s.sleep(s.settle)
	tempC := s.probe.TempC(0)

	valid := tempC != sensor.DisconnectedC
	if !valid {
		fmt.Fprintf(s.w, "Error: Temperature sensor disconnected or invalid reading!\n")
	}

	shuntMV := s.power.ShuntVoltage()
	busV := s.power.BusVoltage()
	currentMA := s.power.Current()
	powerMW := s.power.Power()
	loadV := busV + shuntMV/1000

	tempField := fmt.Sprintf("%d", InvalidTempMarker)
	if valid {
		tempField = fmt.Sprintf("%.2f", tempC)
	}
	fmt.Fprintf(s.w, "%d,%s,%.2f,%.2f,%.2f,%.2f,%.2f\n",
		now, tempField, shuntMV, busV, currentMA, powerMW, loadV)

	// Relay control only on a valid reading. The predicate itself is the
	// caller's policy; without one the relay stays untouched.
	if valid && s.policy != nil {
		switch s.policy(tempC) {
		case ActionOn:
			s.relay.High()
		case ActionOff:
			s.relay.Low()
		}
	}
}

// Ensure Heater implements Sketch.
var _ Sketch = (*Heater)(nil)
