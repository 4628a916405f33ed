package kernel

import "sort"

// condWaiter pairs a cond_wait call's private singleton semaphore with the
// thread that owns it, so Signal can sort waiters by the priority of the
// single thread each semaphore will wake (spec §4.5).
type condWaiter struct {
	sem *Semaphore
	t   *Thread
}

// Cond is a Mesa-style condition variable (spec §4.5): Signal/Broadcast
// don't hand off the associated lock atomically, so a woken waiter must
// re-acquire it and re-check its condition, same as Go's own sync.Cond.
type Cond struct {
	k       *Kernel
	waiters []*condWaiter
}

// Init prepares c for use, owned by k.
func (c *Cond) Init(k *Kernel) {
	c.k = k
	c.waiters = nil
}

// Wait atomically releases l and blocks the calling thread until signaled,
// then re-acquires l before returning (spec §4.5's cond_wait). l must be
// held on entry and is held again on return.
func (c *Cond) Wait(l *Lock) {
	k := c.k
	assertf(k.current.id, l.HeldByCurrent(), "cond: Wait called without holding the associated lock")

	sem := &Semaphore{}
	sem.Init(k, 0)

	k.mu.Lock()
	self := k.current
	c.waiters = append(c.waiters, &condWaiter{sem: sem, t: self})
	k.mu.Unlock()

	l.Release()
	sem.Down()
	l.Acquire()
}

// Signal wakes the highest-priority waiter, if any (spec §4.5's
// cond_signal). l must be held by the caller.
func (c *Cond) Signal(l *Lock) {
	k := c.k
	assertf(k.current.id, l.HeldByCurrent(), "cond: Signal called without holding the associated lock")

	k.mu.Lock()
	if len(c.waiters) == 0 {
		k.mu.Unlock()
		return
	}
	sort.SliceStable(c.waiters, func(i, j int) bool {
		return c.waiters[i].t.effPriority > c.waiters[j].t.effPriority
	})
	w := c.waiters[0]
	c.waiters = c.waiters[1:]
	k.mu.Unlock()

	w.sem.Up()
}

// Broadcast wakes every current waiter, highest priority first (spec
// §4.5's cond_broadcast, "loop cond_signal until empty").
func (c *Cond) Broadcast(l *Lock) {
	for {
		k := c.k
		k.mu.Lock()
		empty := len(c.waiters) == 0
		k.mu.Unlock()
		if empty {
			return
		}
		c.Signal(l)
	}
}
