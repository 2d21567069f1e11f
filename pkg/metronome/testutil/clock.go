// Package testutil provides deterministic test doubles for the harness,
// chiefly a manually advanced clock.
package testutil

import (
	"sync"
	"time"
)

// ManualClock is a Clock implementation for testing that allows manual
// control of time progression. It is safe for concurrent use so that a
// benchmark body may advance it while a parallel runner reads it.
type ManualClock struct {
	mu      sync.Mutex
	current time.Time
}

// NewManualClock creates a ManualClock initialized to the given time.
// If t is zero, it initializes to a reasonable default start time.
func NewManualClock(t time.Time) *ManualClock {
	if t.IsZero() {
		// Start at a reasonable time to avoid edge cases with zero time
		t = time.Unix(1000000000, 0) // 2001-09-09
	}
	return &ManualClock{current: t}
}

// Now returns the clock's current time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Advance moves the clock forward by the given duration.
// Panics if d is negative to maintain monotonicity.
func (c *ManualClock) Advance(d time.Duration) {
	if d < 0 {
		panic("ManualClock.Advance: duration must be non-negative")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// Set sets the clock to the given time.
// This should only be used for initialization; prefer Advance in tests.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
}
