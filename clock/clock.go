// Package clock abstracts wall time and one-shot timers so timing logic can run against a mock
package clock

import "time"

// Timer is a pending one-shot callback
type Timer interface {
	// Stop prevents the callback from firing; reports whether it was still pending
	Stop() bool
}

// Clock provides the current time and schedules callbacks
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// Real is the system clock with monotonic readings
type Real struct{}

// NewReal creates a system clock
func NewReal() Real {
	return Real{}
}

// Now returns the current time with monotonic clock reading
func (Real) Now() time.Time {
	return time.Now()
}

// AfterFunc runs fn on its own goroutine after d
func (Real) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
