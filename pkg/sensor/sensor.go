// Package sensor defines the driver contracts the acquisition sketches
// consume: a load-cell amplifier, a current/voltage monitor, a one-wire
// temperature probe, analog input pins and a digital output. The real
// drivers live on the bench; this package provides simulated
// implementations so the rig runs without hardware.
package sensor

import (
	"errors"
	"sync"
)

// ErrInitFailed is returned when a sensor fails to start. The sketches
// treat it as fatal: report once and halt, no retry.
var ErrInitFailed = errors.New("sensor initialization failed")

// DisconnectedC is the reserved reading a temperature probe reports when
// no device answers on the bus.
const DisconnectedC float32 = -127

// LoadCellAmp is a 24-bit load-cell amplifier (HX711-like). The amplifier
// signals conversion completion through an edge callback; the callback runs
// in the driver's context and must do nothing beyond raising a flag - the
// raw read always happens in the polling routine.
type LoadCellAmp interface {
	Begin() error
	// ReadRaw returns the latest conversion as a 24-bit ADC code.
	ReadRaw() int32
	// OnDataReady registers the conversion-complete callback.
	OnDataReady(func())
}

// PowerMonitor is a current/voltage sensor (INA219-like).
type PowerMonitor interface {
	Begin() error
	ShuntVoltage() float32 // mV
	BusVoltage() float32   // V
	Current() float32      // mA
	Power() float32        // mW
}

// TempProbe is a one-wire temperature probe (DS18B20-like). A conversion
// must be requested and given a fixed settling delay before the reading is
// valid; a probe that has dropped off the bus reports DisconnectedC.
type TempProbe interface {
	Begin()
	RequestTemperatures()
	TempC(index int) float32
}

// AnalogPin is a 10-bit analog input returning codes 0..1023.
type AnalogPin interface {
	Read() uint16
}

// DigitalOut is a digital output capability, used for the heater relay.
type DigitalOut interface {
	High()
	Low()
}

// PinRecorder is a DigitalOut test double that records every level change.
type PinRecorder struct {
	mu     sync.Mutex
	levels []bool
}

// High records a transition to the high level.
func (p *PinRecorder) High() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.levels = append(p.levels, true)
}

// Low records a transition to the low level.
func (p *PinRecorder) Low() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.levels = append(p.levels, false)
}

// Levels returns a copy of the recorded transitions, in order.
func (p *PinRecorder) Levels() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]bool, len(p.levels))
	copy(out, p.levels)
	return out
}

// Ensure PinRecorder implements DigitalOut.
var _ DigitalOut = (*PinRecorder)(nil)
