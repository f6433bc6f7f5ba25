package testfixtures

import (
	"sync"
	"time"
)

// Clock is a hand-driven time source. Tests set it once and advance it
// explicitly, so timestamps recorded by the code under test can be asserted
// exactly.
type Clock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewClock returns a clock frozen at start. A zero start falls back to the
// shared ReferenceTime.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{now: start}
}

// NewSteppingClock returns a clock that moves forward by step after every Now
// call, for tests that need distinct but ordered timestamps.
func NewSteppingClock(start time.Time, step time.Duration) *Clock {
	clock := NewClock(start)
	clock.step = step
	return clock
}

// Now reports the clock time and, on a stepping clock, advances it.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// NowFunc adapts the clock to the now-function dependency the services take.
// A nil clock degrades to the real time source.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set pins the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d and reports the new time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// Current reads the clock without triggering step progression.
func (c *Clock) Current() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}
