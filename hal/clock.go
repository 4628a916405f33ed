//go:build !tinygo

package hal

import (
	"context"
	"time"
)

// Clock drives a kernel's tick source in real time: Run calls onTick once
// per simulated timer interrupt, at hz ticks per second, until ctx is
// canceled. This is the host's side of the original's programmable
// interval timer — grounded on the teacher's hostTime ticker, adapted from
// "advance a local tick counter" to "advance whatever kernel owns the tick
// source" (spec_full §4.1).
type Clock struct {
	hz  int
	seq uint64

	// C receives the new tick count after each tick, for callers that want
	// to react without polling Kernel.TicksNow. A tick is not sent when the
	// 1024-entry buffer is full.
	C chan uint64
}

// NewClock creates a Clock ticking at hz Hz. hz is clamped the same way
// kernel.Config.TickHz is (19..1000) since a Clock only exists to drive
// a Kernel's OnTick.
func NewClock(hz int) *Clock {
	if hz < 19 {
		hz = 19
	} else if hz > 1000 {
		hz = 1000
	}
	return &Clock{hz: hz, C: make(chan uint64, 1024)}
}

// HZ returns the clock's tick frequency.
func (c *Clock) HZ() int { return c.hz }

// Run blocks, calling onTick once per tick until ctx is done.
func (c *Clock) Run(ctx context.Context, onTick func()) error {
	d := time.Second / time.Duration(c.hz)
	t := time.NewTicker(d)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			c.seq++
			onTick()
			select {
			case c.C <- c.seq:
			default:
			}
		}
	}
}

// ManualClock lets tests and the headless demo runner advance ticks
// deterministically, one at a time, instead of racing a real ticker
// (spec_full §4.1's Open Question on test determinism).
type ManualClock struct {
	seq uint64
}

// NewManualClock creates a clock with no backing timer at all.
func NewManualClock() *ManualClock { return &ManualClock{} }

// Step calls onTick n times and returns the new tick count.
func (m *ManualClock) Step(n int, onTick func()) uint64 {
	for i := 0; i < n; i++ {
		m.seq++
		onTick()
	}
	return m.seq
}
