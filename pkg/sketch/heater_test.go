package sketch

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engr-labs/godaq/pkg/clock"
	"github.com/engr-labs/godaq/pkg/sensor"
)

func benchPower() *stubPower {
	return &stubPower{
		shuntMV:   150,
		busV:      12,
		currentMA: 1500,
		powerMW:   18000,
	}
}

func TestHeater_SetupFatalOnPowerMonitorFailure(t *testing.T) {
	power := &stubPower{beginErr: sensor.ErrInitFailed}
	probe := &stubProbe{temp: 25}
	var out bytes.Buffer

	s := NewHeater(clock.NewSim(0), power, probe, &sensor.PinRecorder{}, 500, 30*time.Millisecond, nil)
	err := s.Setup(&out)

	require.ErrorIs(t, err, sensor.ErrInitFailed)
	assert.Equal(t, "Failed to find INA219 chip\n", out.String(), "diagnostic only, no header")
}

func TestHeater_SetupEmitsHeaderThenStartsProbe(t *testing.T) {
	probe := &stubProbe{temp: 25}
	var out bytes.Buffer

	s := NewHeater(clock.NewSim(0), benchPower(), probe, &sensor.PinRecorder{}, 500, 30*time.Millisecond, nil)
	require.NoError(t, s.Setup(&out))

	assert.Equal(t, HeaterHeader+"\n", out.String())
}

func TestHeater_EmitsAggregatedSample(t *testing.T) {
	clk := clock.NewSim(0)
	probe := &stubProbe{temp: 25.5}
	var out bytes.Buffer

	s := NewHeater(clk, benchPower(), probe, &sensor.PinRecorder{}, 500, 30*time.Millisecond, nil)
	s.sleep = func(time.Duration) {}
	require.NoError(t, s.Setup(&out))
	out.Reset()

	clk.Set(500)
	s.Loop()

	// Load voltage is bus plus the shunt drop: 12 + 150/1000 = 12.15.
	assert.Equal(t, "500,25.50,150.00,12.00,1500.00,18000.00,12.15\n", out.String())
	assert.Equal(t, 1, probe.requests)
}

func TestHeater_DisconnectedProbeSubstitutesMarker(t *testing.T) {
	clk := clock.NewSim(0)
	probe := &stubProbe{temp: sensor.DisconnectedC}
	var out bytes.Buffer

	s := NewHeater(clk, benchPower(), probe, &sensor.PinRecorder{}, 500, 30*time.Millisecond, nil)
	s.sleep = func(time.Duration) {}
	require.NoError(t, s.Setup(&out))
	out.Reset()

	clk.Set(500)
	s.Loop()

	want := "Error: Temperature sensor disconnected or invalid reading!\n" +
		"500,-999,150.00,12.00,1500.00,18000.00,12.15\n"
	assert.Equal(t, want, out.String())
}

func TestHeater_InRangeReadingEmitsNoDiagnostic(t *testing.T) {
	clk := clock.NewSim(0)
	probe := &stubProbe{temp: 21.0}
	var out bytes.Buffer

	s := NewHeater(clk, benchPower(), probe, &sensor.PinRecorder{}, 500, 30*time.Millisecond, nil)
	s.sleep = func(time.Duration) {}
	require.NoError(t, s.Setup(&out))
	out.Reset()

	clk.Set(500)
	s.Loop()

	assert.NotContains(t, out.String(), "Error:")
}

func TestHeater_SettleDelayBlocksBetweenRequestAndRead(t *testing.T) {
	clk := clock.NewSim(0)
	probe := &stubProbe{temp: 25}
	var out bytes.Buffer

	var slept time.Duration
	s := NewHeater(clk, benchPower(), probe, &sensor.PinRecorder{}, 500, 30*time.Millisecond, nil)
	s.sleep = func(d time.Duration) {
		slept = d
		assert.Equal(t, 1, probe.requests, "settle wait must follow the conversion request")
	}
	require.NoError(t, s.Setup(&out))

	clk.Set(500)
	s.Loop()

	assert.Equal(t, 30*time.Millisecond, slept)
}

func TestHeater_NilPolicyNeverDrivesRelay(t *testing.T) {
	clk := clock.NewSim(0)
	relay := &sensor.PinRecorder{}
	probe := &stubProbe{temp: 95}
	var out bytes.Buffer

	s := NewHeater(clk, benchPower(), probe, relay, 500, 30*time.Millisecond, nil)
	s.sleep = func(time.Duration) {}
	require.NoError(t, s.Setup(&out))

	for _, now := range []uint32{500, 1000, 1500} {
		clk.Set(now)
		s.Loop()
	}

	assert.Empty(t, relay.Levels(), "without a policy the relay stays untouched")
}

func TestHeater_PolicyDrivesRelayOnValidReadingOnly(t *testing.T) {
	clk := clock.NewSim(0)
	relay := &sensor.PinRecorder{}
	probe := &stubProbe{temp: 30}
	var out bytes.Buffer

	var sawTemps []float32
	policy := func(tempC float32) Action {
		sawTemps = append(sawTemps, tempC)
		if tempC < 50 {
			return ActionOn
		}
		return ActionOff
	}

	s := NewHeater(clk, benchPower(), probe, relay, 500, 30*time.Millisecond, policy)
	s.sleep = func(time.Duration) {}
	require.NoError(t, s.Setup(&out))

	clk.Set(500)
	s.Loop()

	// Probe drops off the bus: the policy must not see the sentinel.
	probe.temp = sensor.DisconnectedC
	clk.Set(1000)
	s.Loop()

	probe.temp = 70
	clk.Set(1500)
	s.Loop()

	assert.Equal(t, []float32{30, 70}, sawTemps)
	assert.Equal(t, []bool{true, false}, relay.Levels())
}

func TestHeater_PolicyActionNoneLeavesRelayAlone(t *testing.T) {
	clk := clock.NewSim(0)
	relay := &sensor.PinRecorder{}
	probe := &stubProbe{temp: 40}
	var out bytes.Buffer

	s := NewHeater(clk, benchPower(), probe, relay, 500, 30*time.Millisecond, func(float32) Action {
		return ActionNone
	})
	s.sleep = func(time.Duration) {}
	require.NoError(t, s.Setup(&out))

	clk.Set(500)
	s.Loop()

	assert.Empty(t, relay.Levels())
}

func TestHeater_NoOverrunWarnings(t *testing.T) {
	// Unlike the multi-analog sketch, the heater stream carries no missed
	// sample warnings even when a pass lands several periods late.
	clk := clock.NewSim(0)
	probe := &stubProbe{temp: 25}
	var out bytes.Buffer

	s := NewHeater(clk, benchPower(), probe, &sensor.PinRecorder{}, 500, 30*time.Millisecond, nil)
	s.sleep = func(time.Duration) {}
	require.NoError(t, s.Setup(&out))
	out.Reset()

	clk.Set(500)
	s.Loop()
	clk.Set(3000)
	s.Loop()

	assert.NotContains(t, out.String(), "WARNING")
	assert.Len(t, strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n"), 2)
}
