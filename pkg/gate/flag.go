package gate

// ReadyFlag is a single-producer/single-consumer signal indicating that a
// sensor conversion has completed. The producer side is an edge callback
// that may run on another goroutine; its only legal action is Set. The
// consumer is the polling routine, which reads-and-clears with Take.
//
// The flag is a capacity-1 channel with overwrite-on-full semantics: a
// second edge before consumption is silently coalesced. Repeated edges are
// indistinguishable from one edge - accepted data loss, not a race.
type ReadyFlag struct {
	c chan struct{}
}

// NewReadyFlag creates a cleared flag.
func NewReadyFlag() *ReadyFlag {
	return &ReadyFlag{c: make(chan struct{}, 1)}
}

// Set raises the flag. Safe to call from an edge callback; never blocks.
func (f *ReadyFlag) Set() {
	select {
	case f.c <- struct{}{}:
	default:
		// Already pending, coalesce.
	}
}

// Take consumes the flag, reporting whether it was set.
func (f *ReadyFlag) Take() bool {
	select {
	case <-f.c:
		return true
	default:
		return false
	}
}

// Pending reports whether the flag is set without consuming it.
func (f *ReadyFlag) Pending() bool {
	return len(f.c) > 0
}
