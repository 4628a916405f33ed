package kernel

import (
	"errors"
	"testing"
)

// TestCondSignalWakesHighestPriorityFirst checks that Signal always wakes
// the highest-effective-priority waiter, independent of the order in which
// threads called Wait. Workers are created low, high, mid on purpose, and
// each is left to reach Wait before the next is created, so the Wait order
// is low, high, mid and a naive FIFO wakeup would produce the wrong order.
func TestCondSignalWakesHighestPriorityFirst(t *testing.T) {
	k := New(DefaultConfig())

	type worker struct {
		name string
		prio int
	}
	workers := []worker{
		{"low", 10},
		{"high", 30},
		{"mid", 20},
	}

	order := runScenario(t, k, 5, func(k *Kernel, self ThreadID) ([]string, error) {
		var mu Lock
		var cv Cond
		var done Semaphore
		mu.Init(k)
		cv.Init(k)
		done.Init(k, 0)

		var order []string
		ids := make([]ThreadID, 0, len(workers))
		for _, w := range workers {
			w := w
			id, err := k.ThreadCreate(w.name, w.prio, func(k *Kernel, self ThreadID) {
				mu.Acquire()
				cv.Wait(&mu)
				order = append(order, w.name)
				mu.Release()
				done.Up()
			})
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
			if !waitUntilBlocked(k, []ThreadID{id}) {
				return nil, errors.New("worker never reached blocked state")
			}
		}

		if !waitUntilBlocked(k, ids) {
			return nil, errors.New("workers never reached blocked state")
		}

		for range workers {
			mu.Acquire()
			cv.Signal(&mu)
			mu.Release()
			done.Down()
		}

		return order, nil
	})

	want := []string{"high", "mid", "low"}
	if len(order) != len(want) {
		t.Fatalf("wake order = %v; want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("wake order = %v; want %v", order, want)
		}
	}
}
