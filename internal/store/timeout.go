// internal/store/timeout.go
//
// Timer abstraction for the timeout supervisor. Production code uses the
// system clock; tests drive a manual clock.

package store

import "time"

// Timer is a pending deferred call.
type Timer interface {
	// Stop cancels the call. It returns false if the call already ran or
	// was already stopped.
	Stop() bool
}

// Clock supplies the current time and deferred calls.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
