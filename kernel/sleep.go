package kernel

import "time"

// OnTick is the tick source's entry point (spec §4.1, §7): called once per
// simulated timer interrupt. It advances the tick counter, wakes any
// sleepers whose wake_at has arrived, and accounts the running thread's
// quantum. Because the calling goroutine is the tick source, not a kernel
// thread, it cannot perform a context switch itself (there is no "prev" to
// park) — so instead of yielding here the way sema_up/lock_release do, it
// only sets a deferred-reschedule flag that Checkpoint, Yield, or the next
// voluntary suspension point will act on. See SPEC_FULL.md §1.
func (k *Kernel) OnTick() {
	k.mu.Lock()
	k.ticks++
	k.stats.TicksSeen++

	var woken []*Thread
	for !k.sleeping.empty() && k.sleeping.head.wakeAt <= k.ticks {
		woken = append(woken, k.sleeping.popFront())
	}
	for _, t := range woken {
		k.unblock(t)
	}

	if k.quantumLeft > 0 {
		k.quantumLeft--
	}
	if k.quantumLeft == 0 || k.shouldPreemptLocked() {
		k.needResched = true
	}
	k.mu.Unlock()
}

// TicksNow returns the current tick count.
func (k *Kernel) TicksNow() uint64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.ticks
}

// TicksElapsed returns the number of ticks since `since` (spec §4.1's
// timer_elapsed).
func (k *Kernel) TicksElapsed(since uint64) uint64 {
	return k.TicksNow() - since
}

// SleepTicks blocks the calling thread until at least n ticks have passed
// (spec §4.1's timer_sleep). n <= 0 returns immediately, matching the
// original's "ticks <= 0 ... return" short circuit.
func (k *Kernel) SleepTicks(n int) {
	if n <= 0 {
		return
	}

	k.mu.Lock()
	self := k.current
	self.wakeAt = k.ticks + uint64(n)
	k.sleeping.insertSortedAsc(self, func(t *Thread) uint64 { return t.wakeAt })
	k.block()
	k.mu.Unlock()
}

// MSleep, USleep and NSleep block for approximately the given duration
// (spec §4.1's timer_msleep/usleep/nsleep family). The original converts
// the requested duration to a tick count and, if that rounds down to zero,
// busy-waits out a calibrated loop count instead; a hosted Go process has
// no comparable loops_per_tick calibration to perform, so sub-tick
// durations here fall back to time.Sleep directly. This is a deliberate,
// documented substitution (DESIGN.md, kernel/sleep.go), not an attempt to reproduce
// real_time_sleep's loop calibration.
func (k *Kernel) MSleep(d time.Duration) { k.realTimeSleep(d) }
func (k *Kernel) USleep(d time.Duration) { k.realTimeSleep(d) }
func (k *Kernel) NSleep(d time.Duration) { k.realTimeSleep(d) }

func (k *Kernel) realTimeSleep(d time.Duration) {
	if d <= 0 {
		return
	}
	tickDuration := time.Second / time.Duration(k.cfg.TickHz)
	ticks := int(d / tickDuration)
	if ticks > 0 {
		k.SleepTicks(ticks)
		return
	}
	time.Sleep(d)
}
