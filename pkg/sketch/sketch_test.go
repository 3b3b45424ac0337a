package sketch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPin is an AnalogPin returning a fixed code.
type stubPin struct {
	value uint16
}

func (p *stubPin) Read() uint16 { return p.value }

// stubLoadCell is a LoadCellAmp with a scripted raw value.
type stubLoadCell struct {
	raw      int32
	beginErr error
	cb       func()
	reads    int
}

func (s *stubLoadCell) Begin() error {
	return s.beginErr
}

func (s *stubLoadCell) ReadRaw() int32 {
	s.reads++
	return s.raw
}

func (s *stubLoadCell) OnDataReady(fn func()) {
	s.cb = fn
}

// stubPower is a PowerMonitor with fixed readings.
type stubPower struct {
	beginErr  error
	shuntMV   float32
	busV      float32
	currentMA float32
	powerMW   float32
}

func (s *stubPower) Begin() error          { return s.beginErr }
func (s *stubPower) ShuntVoltage() float32 { return s.shuntMV }
func (s *stubPower) BusVoltage() float32   { return s.busV }
func (s *stubPower) Current() float32      { return s.currentMA }
func (s *stubPower) Power() float32        { return s.powerMW }

// stubProbe is a TempProbe that latches a scripted reading on request.
type stubProbe struct {
	temp     float32
	latched  float32
	requests int
}

func (s *stubProbe) Begin() {}

func (s *stubProbe) RequestTemperatures() {
	s.requests++
	s.latched = s.temp
}

func (s *stubProbe) TempC(index int) float32 {
	return s.latched
}

// countingSketch counts Loop passes for the Run driver tests.
type countingSketch struct {
	setupErr error
	loops    atomic.Int32
}

func (s *countingSketch) Setup(w io.Writer) error { return s.setupErr }
func (s *countingSketch) Loop()                   { s.loops.Add(1) }

func TestRun_PollsUntilCancelled(t *testing.T) {
	s := &countingSketch{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, s, &bytes.Buffer{}, time.Millisecond)
	}()

	assert.Eventually(t, func() bool {
		return s.loops.Load() >= 5
	}, 2*time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestRun_SetupErrorIsFatal(t *testing.T) {
	wantErr := errors.New("sensor missing")
	s := &countingSketch{setupErr: wantErr}

	err := Run(context.Background(), s, &bytes.Buffer{}, time.Millisecond)
	require.ErrorIs(t, err, wantErr)
	assert.Zero(t, s.loops.Load(), "a sketch must not be looped after a Setup failure")
}
