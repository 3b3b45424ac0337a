package sensor

import (
	"context"
	"sync"
	"time"

	"github.com/chewxy/math32"

	"github.com/engr-labs/godaq/pkg/config"
)

// Sensor math is float32 throughout, matching the 32-bit floats the bench
// hardware computes with.

// simNoise produces deterministic pseudo-noise from the elapsed time.
func simNoise(t, level float32) float32 {
	return (math32.Sin(t*917.3) + math32.Cos(t*1341.7)) * level * 0.5
}

// SimAnalogPin simulates a 10-bit analog input: a sine wave plus noise
// around a midpoint, clamped to 0..1023.
type SimAnalogPin struct {
	cfg   *config.SimConfig
	phase float32
	start time.Time
}

// NewSimAnalogPin creates a simulated analog pin. The phase offset (radians)
// lets several pins on the same rig carry distinguishable waveforms.
func NewSimAnalogPin(cfg *config.SimConfig, phase float32) *SimAnalogPin {
	if cfg == nil {
		cfg = &config.Default().Sim
	}
	return &SimAnalogPin{cfg: cfg, phase: phase, start: time.Now()}
}

// Read returns the current simulated ADC code.
func (p *SimAnalogPin) Read() uint16 {
	t := float32(time.Since(p.start).Seconds())
	swing := float32(p.cfg.AnalogSwing)
	v := float32(p.cfg.AnalogMidpoint) +
		swing*math32.Sin(2*math32.Pi*float32(p.cfg.AnalogFreq)*t+p.phase) +
		simNoise(t, swing*float32(p.cfg.NoiseLevel))
	if v < 0 {
		v = 0
	} else if v > 1023 {
		v = 1023
	}
	return uint16(v)
}

// SimLoadCell simulates a 24-bit load-cell amplifier. A background goroutine
// stands in for the amplifier's data-ready edge, invoking the registered
// callback at the configured conversion rate.
type SimLoadCell struct {
	cfg   *config.SimConfig
	rate  int
	start time.Time

	mu     sync.RWMutex
	cb     func()
	ctx    context.Context
	cancel context.CancelFunc
}

// NewSimLoadCell creates a simulated load cell converting at rate samples
// per second.
func NewSimLoadCell(cfg *config.SimConfig, rate int) *SimLoadCell {
	if cfg == nil {
		cfg = &config.Default().Sim
	}
	if rate <= 0 {
		rate = 80
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &SimLoadCell{
		cfg:    cfg,
		rate:   rate,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Begin starts the conversion loop.
func (s *SimLoadCell) Begin() error {
	s.start = time.Now()
	go s.convertLoop()
	return nil
}

// Close stops the conversion loop. No further callbacks fire after Close
// returns.
func (s *SimLoadCell) Close() {
	s.cancel()
}

// OnDataReady registers the conversion-complete callback.
func (s *SimLoadCell) OnDataReady(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cb = fn
}

// ReadRaw returns the current simulated 24-bit ADC code.
func (s *SimLoadCell) ReadRaw() int32 {
	t := float32(time.Since(s.start).Seconds())
	swing := float32(s.cfg.StrainSwing)
	v := float32(s.cfg.StrainMidpoint) +
		swing*math32.Sin(2*math32.Pi*float32(s.cfg.StrainFreq)*t) +
		simNoise(t, swing*float32(s.cfg.NoiseLevel))
	if v < 0 {
		v = 0
	} else if v > float32(1<<24-1) {
		v = float32(1<<24 - 1)
	}
	return int32(v)
}

// convertLoop fires the data-ready callback at the conversion rate.
func (s *SimLoadCell) convertLoop() {
	ticker := time.NewTicker(time.Second / time.Duration(s.rate))
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.mu.RLock()
			cb := s.cb
			s.mu.RUnlock()
			if cb != nil {
				cb()
			}
		}
	}
}

// SimPowerMonitor simulates a current/voltage sensor measuring a resistive
// load on a supply rail. Begin failure is injectable to exercise the
// fatal-init path.
type SimPowerMonitor struct {
	cfg   *config.SimConfig
	start time.Time

	// FailBegin makes Begin return ErrInitFailed, simulating a sensor
	// missing from the bus. Set before Begin.
	FailBegin bool
}

// Shunt resistance on the measurement board, in ohms.
const simShuntOhms float32 = 0.1

// NewSimPowerMonitor creates a simulated power monitor.
func NewSimPowerMonitor(cfg *config.SimConfig) *SimPowerMonitor {
	if cfg == nil {
		cfg = &config.Default().Sim
	}
	return &SimPowerMonitor{cfg: cfg}
}

// Begin initializes the monitor.
func (s *SimPowerMonitor) Begin() error {
	if s.FailBegin {
		return ErrInitFailed
	}
	s.start = time.Now()
	return nil
}

// Current returns the load current in mA.
func (s *SimPowerMonitor) Current() float32 {
	t := float32(time.Since(s.start).Seconds())
	mA := float32(s.cfg.BusVoltage) / float32(s.cfg.LoadResistance) * 1000
	return mA + simNoise(t, mA*float32(s.cfg.NoiseLevel))
}

// ShuntVoltage returns the drop across the shunt in mV.
func (s *SimPowerMonitor) ShuntVoltage() float32 {
	return s.Current() * simShuntOhms
}

// BusVoltage returns the supply voltage in V.
func (s *SimPowerMonitor) BusVoltage() float32 {
	t := float32(time.Since(s.start).Seconds())
	v := float32(s.cfg.BusVoltage)
	return v + simNoise(t, v*float32(s.cfg.NoiseLevel)*0.1)
}

// Power returns the dissipated power in mW.
func (s *SimPowerMonitor) Power() float32 {
	return s.BusVoltage() * s.Current()
}

// SimTempProbe simulates a one-wire temperature probe on a heated block:
// each requested conversion advances a first-order approach from ambient
// toward the target temperature. The reading is latched at request time,
// mirroring the request-then-read protocol of the real probe.
type SimTempProbe struct {
	cfg *config.SimConfig

	mu           sync.Mutex
	temp         float32
	latched      float32
	disconnected bool
	lastReq      time.Time
}

// NewSimTempProbe creates a simulated probe at ambient temperature.
func NewSimTempProbe(cfg *config.SimConfig) *SimTempProbe {
	if cfg == nil {
		cfg = &config.Default().Sim
	}
	return &SimTempProbe{cfg: cfg}
}

// Begin resets the probe to ambient.
func (s *SimTempProbe) Begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.temp = float32(s.cfg.AmbientC)
	s.latched = s.temp
	s.lastReq = time.Now()
}

// RequestTemperatures starts a conversion: the thermal model advances by
// the time since the previous request and the result is latched for TempC.
func (s *SimTempProbe) RequestTemperatures() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	dt := float32(now.Sub(s.lastReq).Seconds())
	s.lastReq = now

	tau := float32(s.cfg.ThermalTau.Seconds())
	if tau > 0 {
		alpha := dt / tau
		if alpha > 1 {
			alpha = 1
		}
		s.temp += alpha * (float32(s.cfg.TargetC) - s.temp)
	}

	if s.disconnected {
		s.latched = DisconnectedC
		return
	}
	s.latched = s.temp + simNoise(float32(now.UnixNano())*1e-9, 0.1)
}

// TempC returns the latched reading for the probe at the given bus index.
// Only index 0 is populated; any other index reads as disconnected.
func (s *SimTempProbe) TempC(index int) float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index != 0 {
		return DisconnectedC
	}
	return s.latched
}

// SetDisconnected injects or clears a probe-disconnected fault.
func (s *SimTempProbe) SetDisconnected(disconnected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disconnected = disconnected
}

// Ensure simulators implement the driver contracts.
var _ AnalogPin = (*SimAnalogPin)(nil)
var _ LoadCellAmp = (*SimLoadCell)(nil)
var _ PowerMonitor = (*SimPowerMonitor)(nil)
var _ TempProbe = (*SimTempProbe)(nil)
