package core

import "time"

// Clock measures frame deltas for the cooperative update loop.
type Clock struct {
	now       func() time.Time
	startTime time.Time
	lastTick  time.Time
	elapsed   time.Duration
}

func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// Start resets elapsed time.
func (c *Clock) Start() {
	c.startTime = c.now()
	c.lastTick = c.startTime
	c.elapsed = 0
}

// Tick returns the seconds since the previous tick. Has no effect on
// non-started clocks.
func (c *Clock) Tick() float64 {
	if c.startTime.IsZero() {
		return 0
	}
	t := c.now()
	delta := t.Sub(c.lastTick)
	c.lastTick = t
	c.elapsed = t.Sub(c.startTime)
	return delta.Seconds()
}

// Stop stops the clock. Does not reset elapsed time.
func (c *Clock) Stop() {
	c.startTime = time.Time{}
}

func (c *Clock) Elapsed() time.Duration {
	return c.elapsed
}
