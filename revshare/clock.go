package revshare

import (
	"sync"
	"time"
)

// Clock supplies the logical time stamped on distributed periods, such as
// a block height or a wall-clock tick. Values must never decrease.
type Clock interface {
	Now() (uint64, error)
}

// ClockFunc adapts a plain function to Clock.
type ClockFunc func() (uint64, error)

// Now calls f().
func (f ClockFunc) Now() (uint64, error) { return f() }

// WallClock returns the current unix time in seconds.
type WallClock struct{}

// Now returns the current unix time in seconds.
func (WallClock) Now() (uint64, error) {
	return uint64(time.Now().Unix()), nil
}

// ManualClock is a settable clock for tests and replays.
type ManualClock struct {
	mu  sync.Mutex
	now uint64
}

// NewManualClock creates a clock that reads start until advanced.
func NewManualClock(start uint64) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current value.
func (c *ManualClock) Now() (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now, nil
}

// Advance moves the clock forward by n ticks.
func (c *ManualClock) Advance(n uint64) {
	c.mu.Lock()
	c.now += n
	c.mu.Unlock()
}

// Set moves the clock to v. Values below the current reading are ignored.
func (c *ManualClock) Set(v uint64) {
	c.mu.Lock()
	if v > c.now {
		c.now = v
	}
	c.mu.Unlock()
}
