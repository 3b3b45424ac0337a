package sketch

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engr-labs/godaq/pkg/clock"
	"github.com/engr-labs/godaq/pkg/sensor"
)

func threePins(a, b, c uint16) []sensor.AnalogPin {
	return []sensor.AnalogPin{&stubPin{value: a}, &stubPin{value: b}, &stubPin{value: c}}
}

func TestAnalog_SetupEmitsHeader(t *testing.T) {
	var out bytes.Buffer
	s := NewAnalog(clock.NewSim(0), threePins(0, 0, 0), 500)

	require.NoError(t, s.Setup(&out))
	assert.Equal(t, "Time (ms),Sensor 0 (raw),Sensor 1 (raw),Sensor 2 (raw)\n", out.String())
}

func TestAnalog_HeaderMatchesPinCount(t *testing.T) {
	s := NewAnalog(clock.NewSim(0), []sensor.AnalogPin{&stubPin{}, &stubPin{}}, 500)
	assert.Equal(t, "Time (ms),Sensor 0 (raw),Sensor 1 (raw)", s.Header())
}

func TestAnalog_EndToEndScenario(t *testing.T) {
	// Period 500ms, clock observed at 0, 520 and 1800: a sample at t=520
	// with no warning, then a sample at t=1800 preceded by a warning for
	// the 1.56 samples lost in the 1280ms gap.
	clk := clock.NewSim(0)
	var out bytes.Buffer

	s := NewAnalog(clk, threePins(100, 200, 300), 500)
	require.NoError(t, s.Setup(&out))
	out.Reset()

	s.Loop() // t=0: gate not yet due
	clk.Set(520)
	s.Loop()
	clk.Set(1800)
	s.Loop()

	want := "520,100,200,300\n" +
		"WARNING: Missed 1.56 samples!\n" +
		"1800,100,200,300\n"
	assert.Equal(t, want, out.String())
}

func TestAnalog_NoOutputWhenGateDoesNotFire(t *testing.T) {
	clk := clock.NewSim(0)
	var out bytes.Buffer

	s := NewAnalog(clk, threePins(1, 2, 3), 500)
	require.NoError(t, s.Setup(&out))
	out.Reset()

	for _, now := range []uint32{0, 100, 250, 499} {
		clk.Set(now)
		s.Loop()
	}
	assert.Empty(t, out.String())
}

func TestAnalog_FirstSampleNeverWarns(t *testing.T) {
	clk := clock.NewSim(0)
	var out bytes.Buffer

	s := NewAnalog(clk, threePins(9, 9, 9), 500)
	require.NoError(t, s.Setup(&out))
	out.Reset()

	// First fire lands ten periods late; still no warning.
	clk.Set(5000)
	s.Loop()

	assert.Equal(t, "5000,9,9,9\n", out.String())
}

func TestAnalog_OnTimeSamplingNeverWarns(t *testing.T) {
	clk := clock.NewSim(0)
	var out bytes.Buffer

	s := NewAnalog(clk, threePins(5, 6, 7), 500)
	require.NoError(t, s.Setup(&out))
	out.Reset()

	for _, now := range []uint32{500, 1000, 1500, 2000} {
		clk.Set(now)
		s.Loop()
	}

	for _, line := range strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n") {
		assert.False(t, strings.HasPrefix(line, "WARNING"), "unexpected warning: %s", line)
	}
}
