package main

import (
	"fmt"
	"time"

	"tinykernel/kernel"
)

// spawnDonationDemo reproduces the chained-donation scenario: a holds
// lockA and does slow work, b grabs lockB then blocks acquiring lockA
// (donating to a), c blocks acquiring lockB (donating to b, which relays
// the donation on to a since b is itself blocked). Watch a's effective
// priority column jump to c's as the chain forms, then unwind as each
// lock is released.
func spawnDonationDemo(k *kernel.Kernel) {
	var lockA, lockB kernel.Lock
	lockA.Init(k)
	lockB.Init(k)

	k.ThreadCreate("holder-a-10", 10, func(k *kernel.Kernel, self kernel.ThreadID) {
		lockA.Acquire()
		for i := 0; i < 300; i++ {
			time.Sleep(5 * time.Millisecond)
			k.Checkpoint()
		}
		lockA.Release()
	})

	k.ThreadCreate("relay-b-20", 20, func(k *kernel.Kernel, self kernel.ThreadID) {
		k.MSleep(40 * time.Millisecond)
		lockB.Acquire()
		lockA.Acquire()
		lockA.Release()
		lockB.Release()
	})

	k.ThreadCreate("waiter-c-30", 30, func(k *kernel.Kernel, self kernel.ThreadID) {
		k.MSleep(80 * time.Millisecond)
		lockB.Acquire()
		lockB.Release()
	})
}

// spawnRoundRobinDemo runs several equal-priority CPU-bound threads that
// only cooperate via Checkpoint, showing quantum-driven rotation among
// peers rather than priority-ordered dispatch.
func spawnRoundRobinDemo(k *kernel.Kernel) {
	for i := 0; i < 4; i++ {
		n := i
		k.ThreadCreate(fmt.Sprintf("rr-%d", n), kernel.PriDefault, func(k *kernel.Kernel, self kernel.ThreadID) {
			for {
				time.Sleep(2 * time.Millisecond)
				k.Checkpoint()
			}
		})
	}
}

// spawnSleeperDemo starts threads sleeping for different tick counts,
// cycling forever, so the sleep queue's earliest-deadline-first wakeup
// order is visible in the state table.
func spawnSleeperDemo(k *kernel.Kernel) {
	durations := []int{50, 10, 200, 30}
	for i, ticks := range durations {
		idx, n := i, ticks
		k.ThreadCreate(fmt.Sprintf("sleeper-%d-%dt", idx, n), kernel.PriDefault, func(k *kernel.Kernel, self kernel.ThreadID) {
			for {
				k.SleepTicks(n)
			}
		})
	}
}
