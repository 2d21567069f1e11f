// Package metronome implements calibrated execution of micro, pico and
// macro benchmarks through a fixed worker lifecycle.
package metronome

import "time"

// Clock is an interface for obtaining monotonic time.
// This abstraction allows for deterministic testing of time-dependent code.
type Clock interface {
	// Now returns the current time. Implementations must return
	// monotonically non-decreasing values.
	Now() time.Time
}

// SystemClock reads the system clock. Readings taken through time.Now carry a
// monotonic component, so intervals computed between two readings are immune
// to wall-clock adjustments.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}
