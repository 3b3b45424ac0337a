// Command collector is the host-side data collection GUI: pick a rig's
// serial port, set the collection time and sample period, watch the stream
// live and save the run as a CSV file.
package main

import (
	"flag"
	"log"
	"strconv"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/engr-labs/godaq/pkg/config"
	"github.com/engr-labs/godaq/pkg/daq"
)

// maxDisplayLines caps the live view so an hour-long run cannot grow the
// widget without bound.
const maxDisplayLines = 1000

var baudRates = []string{"9600", "19200", "38400", "57600", "115200"}

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override serial port if provided via command line
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	// Create Fyne application
	application := app.NewWithID("com.engr-labs.godaq")

	// Create main window
	window := application.NewWindow("Data Collection")
	window.Resize(fyne.NewSize(750, 550))
	window.CenterOnScreen()

	state := &appState{
		cfg:    cfg,
		window: window,
	}

	connCard := createConnectionCard(state)
	collCard := createCollectionCard(state)
	controls := createControls(state)

	display := widget.NewLabel("")
	display.TextStyle = fyne.TextStyle{Monospace: true}
	display.Wrapping = fyne.TextWrapOff
	state.display = display

	top := container.NewVBox(
		container.NewGridWithColumns(2, connCard, collCard),
		controls,
	)

	content := container.NewBorder(
		top,
		nil,
		nil,
		nil,
		container.NewScroll(display),
	)

	window.SetContent(content)

	refreshSerialPorts(state)
	updateExpectedSamples(state)

	window.ShowAndRun()
}

// appState holds the application state.
type appState struct {
	cfg    *config.Config
	window fyne.Window

	portSelect    *widget.Select
	baudSelect    *widget.Select
	timeEntry     *widget.Entry
	periodEntry   *widget.Entry
	samplesLabel  *widget.Label
	filenameEntry *widget.Entry
	startBtn      *widget.Button
	stopBtn       *widget.Button
	saveBtn       *widget.Button
	progress      *widget.ProgressBar
	display       *widget.Label

	// Collection state, guarded by mu. The display line buffer lives here
	// so the record goroutine can append while the main thread renders.
	mu           sync.Mutex
	device       daq.Device
	collector    *daq.Collector
	stop         func()
	collecting   bool
	displayLines []string
}

// createConnectionCard builds the serial port and baud rate selectors.
func createConnectionCard(state *appState) fyne.CanvasObject {
	portSelect := widget.NewSelect([]string{}, nil)
	state.portSelect = portSelect

	refreshBtn := widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), func() {
		refreshSerialPorts(state)
	})

	baudSelect := widget.NewSelect(baudRates, nil)
	baudSelect.SetSelected(strconv.Itoa(state.cfg.Serial.Baud))
	state.baudSelect = baudSelect

	form := container.New(layout.NewFormLayout(),
		widget.NewLabel("Serial Port:"),
		container.NewBorder(nil, nil, nil, refreshBtn, portSelect),
		widget.NewLabel("Baud Rate:"),
		baudSelect,
	)

	return widget.NewCard("Connection Settings", "", form)
}

// createCollectionCard builds the time/period/filename entries and the
// derived expected-sample count.
func createCollectionCard(state *appState) fyne.CanvasObject {
	timeEntry := widget.NewEntry()
	timeEntry.SetText(strconv.FormatFloat(state.cfg.Collect.Duration.Seconds(), 'g', -1, 64))
	timeEntry.OnChanged = func(string) { updateExpectedSamples(state) }
	state.timeEntry = timeEntry

	periodEntry := widget.NewEntry()
	periodEntry.SetText(strconv.FormatFloat(float64(state.cfg.Collect.Period.Milliseconds()), 'g', -1, 64))
	periodEntry.OnChanged = func(string) { updateExpectedSamples(state) }
	state.periodEntry = periodEntry

	samplesLabel := widget.NewLabel("---")
	state.samplesLabel = samplesLabel

	filenameEntry := widget.NewEntry()
	filenameEntry.SetText(state.cfg.Collect.Output)
	state.filenameEntry = filenameEntry

	form := container.New(layout.NewFormLayout(),
		widget.NewLabel("Time (s):"),
		timeEntry,
		widget.NewLabel("Period (ms):"),
		periodEntry,
		widget.NewLabel("Samples:"),
		samplesLabel,
		widget.NewLabel("Filename:"),
		filenameEntry,
	)

	return widget.NewCard("Collection Settings", "", form)
}

// createControls builds the start/stop/save buttons and the progress bar.
func createControls(state *appState) fyne.CanvasObject {
	startBtn := widget.NewButtonWithIcon("Start Collection", theme.MediaPlayIcon(), func() {
		handleStart(state)
	})
	state.startBtn = startBtn

	stopBtn := widget.NewButtonWithIcon("Stop", theme.MediaStopIcon(), func() {
		handleStop(state)
	})
	stopBtn.Disable()
	state.stopBtn = stopBtn

	saveBtn := widget.NewButtonWithIcon("Save CSV", theme.DocumentSaveIcon(), func() {
		handleSave(state)
	})
	saveBtn.Disable()
	state.saveBtn = saveBtn

	progress := widget.NewProgressBar()
	state.progress = progress

	return container.NewVBox(
		container.NewHBox(startBtn, stopBtn, saveBtn),
		container.NewBorder(nil, nil, widget.NewLabel("Progress:"), nil, progress),
	)
}
