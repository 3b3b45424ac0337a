// Command rig runs one of the acquisition sketches against simulated
// sensors, streaming CSV to stdout or to a real serial port. It is the
// hosted stand-in for the bench microcontroller.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.bug.st/serial"

	"github.com/engr-labs/godaq/pkg/clock"
	"github.com/engr-labs/godaq/pkg/config"
	"github.com/engr-labs/godaq/pkg/daq"
	"github.com/engr-labs/godaq/pkg/sensor"
	"github.com/engr-labs/godaq/pkg/sketch"
)

func main() {
	var (
		sketchFlag     = flag.String("sketch", "analog", "Sketch to run: strain, analog or heater")
		configFlag     = flag.String("config", "config.yaml", "Configuration file path")
		portFlag       = flag.String("port", "", "Stream to a serial port instead of stdout (e.g., COM3 or /dev/ttyACM0)")
		listPortsFlag  = flag.Bool("list-ports", false, "List available serial ports and exit")
		disconnectFlag = flag.Duration("heater-disconnect", 0, "Inject a temperature probe disconnect after this delay (heater sketch only)")
	)
	flag.Parse()

	if *listPortsFlag {
		ports, err := daq.Ports()
		if err != nil {
			log.Fatalf("Failed to list serial ports: %v", err)
		}
		for _, p := range ports {
			fmt.Println(p.Name)
		}
		return
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var w io.Writer = os.Stdout
	if *portFlag != "" {
		port, err := serial.Open(*portFlag, &serial.Mode{BaudRate: cfg.Serial.Baud})
		if err != nil {
			log.Fatalf("Failed to open serial port %s: %v", *portFlag, err)
		}
		defer port.Close()
		w = port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var s sketch.Sketch
	var poll time.Duration

	switch *sketchFlag {
	case "strain":
		cell := sensor.NewSimLoadCell(&cfg.Sim, cfg.Strain.ConversionRate)
		defer cell.Close()
		aux := sensor.NewSimAnalogPin(&cfg.Sim, 0)
		s = sketch.NewStrain(clock.NewMicros(), cell, aux, cfg.Strain.PeriodMicros)
		poll = strainPoll

	case "analog":
		pins := make([]sensor.AnalogPin, cfg.Analog.Pins)
		for i := range pins {
			pins[i] = sensor.NewSimAnalogPin(&cfg.Sim, float32(i)*analogPhaseStep)
		}
		s = sketch.NewAnalog(clock.NewMillis(), pins, cfg.Analog.PeriodMillis)
		poll = analogPoll

	case "heater":
		probe := sensor.NewSimTempProbe(&cfg.Sim)
		if *disconnectFlag > 0 {
			go func() {
				select {
				case <-ctx.Done():
				case <-time.After(*disconnectFlag):
					probe.SetDisconnected(true)
				}
			}()
		}
		s = sketch.NewHeater(
			clock.NewMillis(),
			sensor.NewSimPowerMonitor(&cfg.Sim),
			probe,
			&relayPin{},
			cfg.Heater.PeriodMillis,
			cfg.Heater.SettleDelay,
			nil, // No control policy shipped; the relay is configured but never driven.
		)
		poll = heaterPoll

	default:
		log.Fatalf("Unknown sketch %q (want strain, analog or heater)", *sketchFlag)
	}

	if err := sketch.Run(ctx, s, w, poll); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Sketch failed: %v", err)
	}
}

// relayPin is the rig's heater relay capability: on hardware this would be
// a digital output pin, here the transitions are just logged.
type relayPin struct{}

func (relayPin) High() { log.Printf("Heater relay ON") }
func (relayPin) Low()  { log.Printf("Heater relay OFF") }

// Ensure relayPin implements the relay capability.
var _ sensor.DigitalOut = (*relayPin)(nil)
