package daq

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/engr-labs/godaq/pkg/telemetry"
)

// Collector orchestrates one collection run: it consumes records from a
// device for a fixed duration, separates data from diagnostics, tracks
// progress against the expected sample count, and saves the run as CSV.
// Each run carries a unique ID for telemetry.
type Collector struct {
	RunID uuid.UUID

	duration time.Duration
	period   time.Duration

	pub    telemetry.Publisher
	source string

	onProgress func(received, expected int)
	onRecord   func(Record)

	mu     sync.RWMutex
	header string
	data   []Record
	diags  []Record
}

// NewCollector creates a collector for a run of the given duration with
// the given expected sample period.
func NewCollector(duration, period time.Duration) *Collector {
	return &Collector{
		RunID:    uuid.New(),
		duration: duration,
		period:   period,
		pub:      telemetry.Noop{},
	}
}

// SetPublisher forwards every consumed record to the publisher, tagged
// with the given source name.
func (c *Collector) SetPublisher(pub telemetry.Publisher, source string) {
	c.pub = pub
	c.source = source
}

// OnProgress registers a callback invoked after every data record with the
// received and expected counts.
func (c *Collector) OnProgress(fn func(received, expected int)) {
	c.onProgress = fn
}

// OnRecord registers a callback invoked for every consumed record, data
// and diagnostics alike. Used for live display.
func (c *Collector) OnRecord(fn func(Record)) {
	c.onRecord = fn
}

// Expected returns the number of samples a full run should produce:
// duration divided by the sample period.
func (c *Collector) Expected() int {
	if c.period <= 0 {
		return 0
	}
	return int(float64(c.duration) / float64(c.period))
}

// Run consumes records from the device until the run duration elapses, the
// context is cancelled, or the device's records channel closes. The device
// must already be connected.
func (c *Collector) Run(ctx context.Context, dev Device) error {
	if !dev.IsConnected() {
		return ErrNotConnected
	}

	timer := time.NewTimer(c.duration)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		case rec, ok := <-dev.Records():
			if !ok {
				return nil
			}
			c.consume(rec)
		}
	}
}

// consume files one record and forwards it to the publisher.
func (c *Collector) consume(rec Record) {
	c.mu.Lock()
	switch rec.Kind {
	case KindData:
		c.data = append(c.data, rec)
	case KindWarning, KindDiag:
		c.diags = append(c.diags, rec)
	case KindHeader:
		// Keep the first header; later non-data lines are noise but
		// preserved with the diagnostics.
		if c.header == "" {
			c.header = rec.Raw
		} else {
			c.diags = append(c.diags, rec)
		}
	}
	received := len(c.data)
	c.mu.Unlock()

	if c.onRecord != nil {
		c.onRecord(rec)
	}
	if rec.Kind == KindData && c.onProgress != nil {
		c.onProgress(received, c.Expected())
	}

	ev := telemetry.Event{
		RunID:     c.RunID.String(),
		Source:    c.source,
		Kind:      rec.Kind.String(),
		Timestamp: rec.Timestamp,
		Fields:    rec.Fields,
		Raw:       rec.Raw,
	}
	if err := c.pub.Publish(ev); err != nil {
		log.Printf("Failed to publish record: %v", err)
	}
}

// Header returns the header line of the run, if one was received.
func (c *Collector) Header() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.header
}

// Data returns a copy of the data records received so far.
func (c *Collector) Data() []Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Record, len(c.data))
	copy(out, c.data)
	return out
}

// Diagnostics returns a copy of the warning and diagnostic records
// received so far.
func (c *Collector) Diagnostics() []Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Record, len(c.diags))
	copy(out, c.diags)
	return out
}

// SaveCSV writes the run to a CSV file: the header line, then one row per
// data record. Lines are already comma-separated on the wire, so they pass
// through byte for byte; diagnostics are not written into the data rows.
func (c *Collector) SaveCSV(path string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	if c.header != "" {
		fmt.Fprintf(w, "%s\n", c.header)
	}
	for _, rec := range c.data {
		fmt.Fprintf(w, "%s\n", rec.Raw)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}
