package main

import "time"

const (
	// Poll intervals: every Loop pass must be scheduled well inside the
	// sketch's sample period so a due gate is observed promptly. The
	// strain sketch samples at 12.5ms, the others at 500ms.
	strainPoll = 500 * time.Microsecond
	analogPoll = 5 * time.Millisecond
	heaterPoll = 5 * time.Millisecond

	// Phase offset between simulated analog pins, in radians, so the
	// channels carry distinguishable waveforms.
	analogPhaseStep = 2.0944 // 2*pi/3

	// Baud rate budget: the widest line is the heater sketch's
	// "4294967295,-999,150.00,12.00,1500.00,18000.00,12.15\n" = ~55 bytes.
	// The fastest stream is the strain sketch: 80 lines/sec * ~35 bytes/line
	// = 2,800 bytes/sec. UART 8N1: 10 bits/byte = 28,000 baud minimum.
	// 115200 provides ~4.1x headroom (11,520 bytes/sec max).
)
