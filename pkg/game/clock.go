package game

import "time"

// TicsPerSecond is the animation rate of the game clock.
const TicsPerSecond = 30

// Clock measures running time, excluding time spent paused.
type Clock struct {
	now        func() time.Time
	running    time.Duration
	startPause time.Time
	endPause   time.Time
	paused     bool
}

// NewClock starts a clock at zero.
func NewClock() *Clock {
	return newClock(time.Now)
}

func newClock(now func() time.Time) *Clock {
	t := now()
	return &Clock{now: now, startPause: t, endPause: t}
}

// Pause stops the clock. Pausing a paused clock does nothing.
func (c *Clock) Pause() {
	if c.paused {
		return
	}
	c.paused = true
	c.startPause = c.now()
	// endPause is the end of the previous pause.
	c.running += c.startPause.Sub(c.endPause)
}

// Unpause restarts the clock.
func (c *Clock) Unpause() {
	if !c.paused {
		return
	}
	c.paused = false
	c.endPause = c.now()
}

// Paused reports whether the clock is stopped.
func (c *Clock) Paused() bool {
	return c.paused
}

// RunningTime is the time elapsed outside pauses.
func (c *Clock) RunningTime() time.Duration {
	if c.paused {
		return c.running
	}
	return c.running + c.now().Sub(c.endPause)
}

// GameTic is the running time in 1/30 s units.
func (c *Clock) GameTic() uint32 {
	return uint32(c.RunningTime().Milliseconds() * TicsPerSecond / 1000)
}
