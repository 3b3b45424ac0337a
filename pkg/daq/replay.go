package daq

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Replay plays a scripted sequence of lines as if a rig had emitted them,
// for tests and demos without hardware. The records channel closes when the
// script is exhausted or the device is closed.
type Replay struct {
	lines    []string
	interval time.Duration

	records   chan Record
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	connected bool
}

// NewReplay creates a replay device that emits one line per interval. A
// zero interval plays the script as fast as the consumer accepts it.
func NewReplay(lines []string, interval time.Duration) *Replay {
	ctx, cancel := context.WithCancel(context.Background())
	return &Replay{
		lines:    lines,
		interval: interval,
		records:  make(chan Record, DefaultBufferSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Connect starts playing the script.
func (r *Replay) Connect() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.connected {
		return fmt.Errorf("already connected")
	}
	r.connected = true

	go r.playLines()

	return nil
}

// Close stops playback. The playback goroutine owns the records channel
// and closes it on the way out.
func (r *Replay) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.connected {
		return nil
	}

	r.cancel()
	r.connected = false

	return nil
}

// Records returns the channel for reading records.
func (r *Replay) Records() <-chan Record {
	return r.records
}

// IsConnected returns whether playback is active.
func (r *Replay) IsConnected() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.connected
}

// playLines emits the script, then closes the records channel.
func (r *Replay) playLines() {
	defer r.closeOnce.Do(func() { close(r.records) })

	for _, line := range r.lines {
		if r.interval > 0 {
			select {
			case <-r.ctx.Done():
				return
			case <-time.After(r.interval):
			}
		}

		select {
		case r.records <- Parse(line):
		case <-r.ctx.Done():
			return
		}
	}
}

// Ensure Replay implements Device.
var _ Device = (*Replay)(nil)
