package tracker

import "sync/atomic"

// InFlight rejects a second submission while one is outstanding. It does
// not queue.
type InFlight struct {
	busy atomic.Bool
}

// TryStart marks the operation as running. It returns false if one is
// already running.
func (f *InFlight) TryStart() bool {
	return f.busy.CompareAndSwap(false, true)
}

// Done clears the flag.
func (f *InFlight) Done() {
	f.busy.Store(false)
}

// Busy reports whether an operation is running.
func (f *InFlight) Busy() bool {
	return f.busy.Load()
}
