package playback

import "time"

// Timer is a pending callback that can be canceled before it fires.
type Timer interface {
	// Stop prevents the callback from firing. It reports whether the call
	// stopped the timer; false means it already fired or was stopped.
	Stop() bool
}

// Scheduler arms one-shot callbacks. The clock never assumes which
// goroutine runs f; the scheduler decides that.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Dispatch waits on a real timer and then hands the callback to Do, which
// must run it on the host's event loop. The bubbletea host passes a func
// that sends a message to the program; the fyne host passes fyne.Do.
type Dispatch struct {
	Do func(func())
}

func (s Dispatch) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, func() { s.Do(f) })
}
