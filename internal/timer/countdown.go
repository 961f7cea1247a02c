// Package timer provides the per-second countdown used by the drills.
package timer

import (
	"sync/atomic"

	"github.com/verte-zerg/tuiread/internal/model"
)

// genSeq hands out generations unique across all countdowns, so a tick left
// over from a discarded countdown never matches a new one.
var genSeq atomic.Int64

func nextGen() int {
	return int(genSeq.Add(1))
}

// Countdown counts whole seconds down to zero.
//
// Every state change moves to a fresh generation. Ticks are only honoured
// for the current generation, so a tick scheduled before Start, Pause, Reset
// or Stop is dropped and at most one decrement stream exists per countdown.
type Countdown struct {
	timeLeft int
	duration int
	running  bool
	gen      int
}

// New returns a stopped countdown armed with duration seconds.
func New(duration int) *Countdown {
	if duration < 0 {
		duration = 0
	}
	return &Countdown{timeLeft: duration, duration: duration, gen: nextGen()}
}

// Start arms the countdown and begins running. A non-positive duration reuses
// the current one.
func (c *Countdown) Start(duration int) {
	if duration <= 0 {
		duration = c.duration
	}
	c.gen = nextGen()
	c.duration = duration
	c.timeLeft = duration
	c.running = true
}

// Pause stops counting without touching the remaining time.
func (c *Countdown) Pause() {
	c.gen = nextGen()
	c.running = false
}

// Reset re-arms the countdown without starting it. A non-positive duration
// reuses the current one.
func (c *Countdown) Reset(duration int) {
	if duration <= 0 {
		duration = c.duration
	}
	c.gen = nextGen()
	c.duration = duration
	c.timeLeft = duration
	c.running = false
}

// Stop zeroes the countdown. This is not an expiry.
func (c *Countdown) Stop() {
	c.gen = nextGen()
	c.timeLeft = 0
	c.running = false
}

// Tick applies one elapsed second for generation gen. It returns true only
// on the tick that makes the countdown run out.
func (c *Countdown) Tick(gen int) bool {
	if gen != c.gen || !c.running {
		return false
	}
	if c.timeLeft > 0 {
		c.timeLeft--
	}
	if c.timeLeft == 0 {
		c.running = false
		return true
	}
	return false
}

// Gen returns the current generation.
func (c *Countdown) Gen() int {
	return c.gen
}

// Running reports whether the countdown is counting.
func (c *Countdown) Running() bool {
	return c.running
}

// TimeLeft returns the remaining seconds.
func (c *Countdown) TimeLeft() int {
	return c.timeLeft
}

// State returns a snapshot of the countdown.
func (c *Countdown) State() model.TimerState {
	return model.TimerState{TimeLeft: c.timeLeft, Running: c.running, Duration: c.duration}
}
