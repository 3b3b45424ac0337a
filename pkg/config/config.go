package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Serial  SerialConfig  `yaml:"serial"`
	Strain  StrainConfig  `yaml:"strain"`
	Analog  AnalogConfig  `yaml:"analog"`
	Heater  HeaterConfig  `yaml:"heater"`
	Collect CollectConfig `yaml:"collect"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Sim     SimConfig     `yaml:"sim"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// StrainConfig contains parameters for the strain sketch.
type StrainConfig struct {
	PeriodMicros   uint32 `yaml:"period_us"`       // Target sample period in microseconds
	ConversionRate int    `yaml:"conversion_rate"` // Amplifier conversion rate (SPS)
}

// AnalogConfig contains parameters for the multi-analog sketch.
type AnalogConfig struct {
	PeriodMillis uint32 `yaml:"period_ms"` // Target sample period in milliseconds
	Pins         int    `yaml:"pins"`      // Number of analog pins to sample
}

// HeaterConfig contains parameters for the heater sketch.
type HeaterConfig struct {
	PeriodMillis uint32        `yaml:"period_ms"`    // Target sample period in milliseconds
	SettleDelay  time.Duration `yaml:"settle_delay"` // Temperature conversion settling delay
}

// CollectConfig contains parameters for a host-side collection run.
type CollectConfig struct {
	Duration time.Duration `yaml:"duration"` // Total collection duration
	Period   time.Duration `yaml:"period"`   // Expected sample period
	Output   string        `yaml:"output"`   // Output CSV filename
}

// MQTTConfig contains optional telemetry forwarding configuration.
type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
}

// SimConfig contains simulated sensor configuration.
type SimConfig struct {
	NoiseLevel     float64       `yaml:"noise_level"`     // Noise amplitude as a fraction of the waveform swing
	StrainMidpoint float64       `yaml:"strain_midpoint"` // Load cell waveform midpoint (24-bit counts)
	StrainSwing    float64       `yaml:"strain_swing"`    // Load cell waveform amplitude (counts)
	StrainFreq     float64       `yaml:"strain_freq"`     // Load cell waveform frequency (Hz)
	AnalogMidpoint float64       `yaml:"analog_midpoint"` // Analog pin waveform midpoint (10-bit counts)
	AnalogSwing    float64       `yaml:"analog_swing"`    // Analog pin waveform amplitude (counts)
	AnalogFreq     float64       `yaml:"analog_freq"`     // Analog pin waveform frequency (Hz)
	BusVoltage     float64       `yaml:"bus_voltage"`     // Simulated supply voltage (V)
	LoadResistance float64       `yaml:"load_resistance"` // Simulated heater resistance (ohm)
	AmbientC       float64       `yaml:"ambient_c"`       // Ambient temperature (C)
	TargetC        float64       `yaml:"target_c"`        // Steady-state temperature with the heater energized (C)
	ThermalTau     time.Duration `yaml:"thermal_tau"`     // Thermal time constant
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port: "COM3", // Default for Windows, should be "/dev/ttyACM0" on Linux/Mac
			Baud: 115200,
		},
		Strain: StrainConfig{
			PeriodMicros:   12500, // 80 Hz, matching the amplifier's fast conversion rate
			ConversionRate: 80,
		},
		Analog: AnalogConfig{
			PeriodMillis: 500,
			Pins:         3,
		},
		Heater: HeaterConfig{
			PeriodMillis: 500,
			SettleDelay:  30 * time.Millisecond,
		},
		Collect: CollectConfig{
			Duration: 5 * time.Second,
			Period:   4 * time.Millisecond,
			Output:   "data.csv",
		},
		MQTT: MQTTConfig{
			Enabled:  false,
			Broker:   "tcp://localhost:1883",
			Topic:    "daq/records",
			ClientID: "godaq-collector",
		},
		Sim: SimConfig{
			NoiseLevel:     0.01,
			StrainMidpoint: 1 << 23, // Center of the 24-bit range
			StrainSwing:    1 << 20,
			StrainFreq:     0.5,
			AnalogMidpoint: 512,
			AnalogSwing:    200,
			AnalogFreq:     0.2,
			BusVoltage:     12.0,
			LoadResistance: 8.0,
			AmbientC:       21.0,
			TargetC:        60.0,
			ThermalTau:     20 * time.Second,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Ensure minimum required fields are set (use defaults if missing)
	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.Baud == 0 {
		c.Serial.Baud = def.Serial.Baud
	}

	if c.Strain.PeriodMicros == 0 {
		c.Strain.PeriodMicros = def.Strain.PeriodMicros
	}
	if c.Strain.ConversionRate == 0 {
		c.Strain.ConversionRate = def.Strain.ConversionRate
	}

	if c.Analog.PeriodMillis == 0 {
		c.Analog.PeriodMillis = def.Analog.PeriodMillis
	}
	if c.Analog.Pins == 0 {
		c.Analog.Pins = def.Analog.Pins
	}

	if c.Heater.PeriodMillis == 0 {
		c.Heater.PeriodMillis = def.Heater.PeriodMillis
	}
	if c.Heater.SettleDelay == 0 {
		c.Heater.SettleDelay = def.Heater.SettleDelay
	}

	if c.Collect.Duration == 0 {
		c.Collect.Duration = def.Collect.Duration
	}
	if c.Collect.Period == 0 {
		c.Collect.Period = def.Collect.Period
	}
	if c.Collect.Output == "" {
		c.Collect.Output = def.Collect.Output
	}

	if c.MQTT.Broker == "" {
		c.MQTT.Broker = def.MQTT.Broker
	}
	if c.MQTT.Topic == "" {
		c.MQTT.Topic = def.MQTT.Topic
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = def.MQTT.ClientID
	}

	if c.Sim.StrainMidpoint == 0 {
		c.Sim.StrainMidpoint = def.Sim.StrainMidpoint
	}
	if c.Sim.StrainSwing == 0 {
		c.Sim.StrainSwing = def.Sim.StrainSwing
	}
	if c.Sim.StrainFreq == 0 {
		c.Sim.StrainFreq = def.Sim.StrainFreq
	}
	if c.Sim.AnalogMidpoint == 0 {
		c.Sim.AnalogMidpoint = def.Sim.AnalogMidpoint
	}
	if c.Sim.AnalogSwing == 0 {
		c.Sim.AnalogSwing = def.Sim.AnalogSwing
	}
	if c.Sim.AnalogFreq == 0 {
		c.Sim.AnalogFreq = def.Sim.AnalogFreq
	}
	if c.Sim.BusVoltage == 0 {
		c.Sim.BusVoltage = def.Sim.BusVoltage
	}
	if c.Sim.LoadResistance == 0 {
		c.Sim.LoadResistance = def.Sim.LoadResistance
	}
	if c.Sim.TargetC == 0 {
		c.Sim.TargetC = def.Sim.TargetC
	}
	if c.Sim.ThermalTau == 0 {
		c.Sim.ThermalTau = def.Sim.ThermalTau
	}
}
