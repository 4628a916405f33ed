package kernel

import (
	"testing"
	"time"
)

// waitUntilBlocked spins the calling thread's own quantum away via Yield
// until every id in ids reports StateBlocked. Must be called from a
// dispatched kernel thread's own goroutine (a scenario's director
// thread), never directly from a test function — Yield parks the caller
// on its own resume channel, which only a real kernel thread can do.
func waitUntilBlocked(k *Kernel, ids []ThreadID) bool {
	for round := 0; round < 2000; round++ {
		all := true
		for _, id := range ids {
			snap, ok := k.Snapshot(id)
			if !ok || snap.State != StateBlocked {
				all = false
				break
			}
		}
		if all {
			return true
		}
		k.Yield()
	}
	return false
}

// runScenario runs body as a dedicated "director" thread at directorPriority
// and returns whatever it produces. Tests that exercise live scheduling
// always go through a kernel thread this way rather than calling
// Yield/Checkpoint/Semaphore.Up et al. directly from the test's own
// goroutine: those calls assume the caller is the current thread's own
// goroutine, which the test function never is.
func runScenario[T any](t *testing.T, k *Kernel, directorPriority int, body func(k *Kernel, self ThreadID) (T, error)) T {
	t.Helper()

	type outcome struct {
		val T
		err error
	}
	result := make(chan outcome, 1)

	_, err := k.ThreadCreate("director", directorPriority, func(k *Kernel, self ThreadID) {
		v, berr := body(k, self)
		result <- outcome{val: v, err: berr}
	})
	if err != nil {
		t.Fatalf("ThreadCreate(director): %v", err)
	}

	select {
	case r := <-result:
		if r.err != nil {
			t.Fatalf("scenario failed: %v", r.err)
		}
		return r.val
	case <-time.After(5 * time.Second):
		t.Fatal("scenario timed out")
	}
	var zero T
	return zero
}

// newTestThread registers a bare Thread directly into k's table, bypassing
// ThreadCreate/the trampoline goroutine, for white-box tests of donation
// bookkeeping that don't need a live, schedulable thread.
func newTestThread(k *Kernel, id ThreadID, name string, basePriority int) *Thread {
	t := &Thread{
		id:           id,
		name:         name,
		state:        StateBlocked,
		basePriority: basePriority,
		effPriority:  basePriority,
		resume:       make(chan struct{}, 1),
	}
	k.threads[id] = t
	return t
}
