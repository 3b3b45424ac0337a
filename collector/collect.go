package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"

	"github.com/engr-labs/godaq/pkg/daq"
	"github.com/engr-labs/godaq/pkg/telemetry"
)

// refreshSerialPorts repopulates the port dropdown.
func refreshSerialPorts(state *appState) {
	ports, err := daq.Ports()
	if err != nil {
		dialog.ShowError(fmt.Errorf("failed to list serial ports: %w", err), state.window)
		return
	}

	options := make([]string, 0, len(ports))
	for _, p := range ports {
		options = append(options, p.Name)
	}

	// Keep the configured port selectable even when it is not currently
	// present, so a saved setup survives an unplugged rig.
	current := state.cfg.Serial.Port
	found := false
	for _, opt := range options {
		if opt == current {
			found = true
			break
		}
	}
	if !found && current != "" {
		options = append(options, current)
	}

	state.portSelect.Options = options
	if current != "" {
		state.portSelect.SetSelected(current)
	}
	state.portSelect.Refresh()
}

// collectionParams reads and validates the entry fields.
func collectionParams(state *appState) (duration, period time.Duration, err error) {
	seconds, err := strconv.ParseFloat(strings.TrimSpace(state.timeEntry.Text), 64)
	if err != nil || seconds <= 0 {
		return 0, 0, fmt.Errorf("invalid collection time %q", state.timeEntry.Text)
	}
	millis, err := strconv.ParseFloat(strings.TrimSpace(state.periodEntry.Text), 64)
	if err != nil || millis <= 0 {
		return 0, 0, fmt.Errorf("invalid sampling period %q", state.periodEntry.Text)
	}
	return time.Duration(seconds * float64(time.Second)), time.Duration(millis * float64(time.Millisecond)), nil
}

// updateExpectedSamples recomputes the sample count from the time and
// period entries: time(s) * 1000(ms/s) / period(ms).
func updateExpectedSamples(state *appState) {
	duration, period, err := collectionParams(state)
	if err != nil {
		state.samplesLabel.SetText("---")
		return
	}
	state.samplesLabel.SetText(strconv.Itoa(int(float64(duration) / float64(period))))
}

// handleStart begins a collection run.
func handleStart(state *appState) {
	state.mu.Lock()
	if state.collecting {
		state.mu.Unlock()
		return
	}
	state.mu.Unlock()

	duration, period, err := collectionParams(state)
	if err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	if state.portSelect.Selected == "" {
		dialog.ShowError(fmt.Errorf("no serial port selected"), state.window)
		return
	}
	baud, err := strconv.Atoi(state.baudSelect.Selected)
	if err != nil {
		baud = daq.DefaultBaudRate
	}

	device := daq.NewSerial(state.portSelect.Selected, baud, daq.DefaultBufferSize)
	if err := device.Connect(); err != nil {
		dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.portSelect.Selected, err), state.window)
		return
	}

	collector := daq.NewCollector(duration, period)

	// Optional MQTT forwarding of the live stream.
	pub := telemetry.Publisher(telemetry.Noop{})
	if state.cfg.MQTT.Enabled {
		mqttPub, err := telemetry.NewMQTT(state.cfg.MQTT.Broker, state.cfg.MQTT.ClientID, state.cfg.MQTT.Topic)
		if err != nil {
			dialog.ShowError(err, state.window)
			device.Close()
			return
		}
		pub = mqttPub
	}
	collector.SetPublisher(pub, "serial")

	collector.OnRecord(func(rec daq.Record) {
		appendDisplayLine(state, rec.Raw)
	})
	collector.OnProgress(func(received, expected int) {
		fyne.Do(func() {
			if expected > 0 {
				state.progress.SetValue(float64(received) / float64(expected))
			}
		})
	})

	ctx, cancel := context.WithCancel(context.Background())

	state.mu.Lock()
	state.device = device
	state.collector = collector
	state.stop = cancel
	state.collecting = true
	state.displayLines = nil
	state.mu.Unlock()

	state.startBtn.Disable()
	state.stopBtn.Enable()
	state.saveBtn.Disable()
	state.progress.SetValue(0)
	state.display.SetText("")

	go func() {
		err := collector.Run(ctx, device)
		cancel()
		device.Close()
		pub.Close()

		state.mu.Lock()
		state.collecting = false
		state.mu.Unlock()

		fyne.Do(func() {
			state.startBtn.Enable()
			state.stopBtn.Disable()
			state.saveBtn.Enable()
			if err != nil && err != context.Canceled {
				dialog.ShowError(fmt.Errorf("collection failed: %w", err), state.window)
				return
			}
			dialog.ShowInformation("Collection complete",
				fmt.Sprintf("Received %d samples (%d expected)", len(collector.Data()), collector.Expected()),
				state.window)
		})
	}()
}

// handleStop cancels the current run.
func handleStop(state *appState) {
	state.mu.Lock()
	stop := state.stop
	state.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// handleSave writes the collected run to a CSV file chosen by the user.
func handleSave(state *appState) {
	state.mu.Lock()
	collector := state.collector
	state.mu.Unlock()

	if collector == nil {
		return
	}

	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, state.window)
			return
		}
		if writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()

		if err := collector.SaveCSV(path); err != nil {
			dialog.ShowError(fmt.Errorf("failed to save data: %w", err), state.window)
			return
		}
		dialog.ShowInformation("Saved", fmt.Sprintf("Data written to %s", path), state.window)
	}, state.window)
	d.SetFileName(state.filenameEntry.Text)
	d.Show()
}

// appendDisplayLine adds one line to the live view, dropping the oldest
// once the cap is reached. Called from the collector goroutine; the widget
// update itself runs on the main thread.
func appendDisplayLine(state *appState, line string) {
	state.mu.Lock()
	state.displayLines = append(state.displayLines, line)
	if len(state.displayLines) > maxDisplayLines {
		state.displayLines = state.displayLines[len(state.displayLines)-maxDisplayLines:]
	}
	text := strings.Join(state.displayLines, "\n")
	state.mu.Unlock()

	fyne.Do(func() {
		state.display.SetText(text)
	})
}
