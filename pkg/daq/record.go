// Package daq is the host side of the serial link: it reads the
// line-oriented CSV stream a rig emits, classifies each line as data,
// warning, diagnostic or header, and collects runs for saving.
package daq

import (
	"strconv"
	"strings"
)

// Kind classifies one line of the stream.
type Kind int

const (
	// KindHeader is the column-name line emitted at startup (or any line
	// that is neither numeric data nor a recognized diagnostic).
	KindHeader Kind = iota
	// KindData is one comma-separated sample.
	KindData
	// KindWarning is an out-of-band overrun warning.
	KindWarning
	// KindDiag is a sensor failure or disconnect diagnostic.
	KindDiag
)

// String returns the kind name used in telemetry payloads.
func (k Kind) String() string {
	switch k {
	case KindData:
		return "data"
	case KindWarning:
		return "warning"
	case KindDiag:
		return "diag"
	default:
		return "header"
	}
}

// Record is one parsed line. Raw always holds the line as received; for
// data lines Timestamp carries the first column and Fields the rest.
type Record struct {
	Kind      Kind
	Raw       string
	Timestamp uint32
	Fields    []float64
}

// Parse classifies a line from the stream. Diagnostics are distinguished
// from data by line prefix, data from headers by column shape: a data line
// is all numeric with an unsigned integer timestamp in the first column.
func Parse(line string) Record {
	rec := Record{Raw: line}

	switch {
	case strings.HasPrefix(line, "WARNING:"):
		rec.Kind = KindWarning
		return rec
	case strings.HasPrefix(line, "Error:"), strings.HasPrefix(line, "Failed"):
		rec.Kind = KindDiag
		return rec
	}

	parts := strings.Split(line, ",")
	ts, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 32)
	if err != nil {
		return rec
	}

	fields := make([]float64, 0, len(parts)-1)
	for _, part := range parts[1:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return rec
		}
		fields = append(fields, v)
	}

	rec.Kind = KindData
	rec.Timestamp = uint32(ts)
	rec.Fields = fields
	return rec
}
