package kernel

import "sort"

// Semaphore is a counting semaphore (spec §4.3). Its waiter list is a plain
// slice, not an intrusive list node, because — unlike the ready list and
// sleep queue — it must be re-sorted by effective priority on every Up,
// since a donation can change a waiter's priority while it sits here.
type Semaphore struct {
	k       *Kernel
	value   int
	waiters []*Thread
}

// Init sets the semaphore's starting value. Must be called before first
// use; a zero-value Semaphore with k set behaves as if Init(k, 0) was
// called, matching thread exit/reap's direct struct construction.
func (s *Semaphore) Init(k *Kernel, value int) {
	s.k = k
	s.value = value
	s.waiters = nil
}

// Down blocks the calling thread until the semaphore's value is positive,
// then consumes one unit (spec §4.3's sema_down).
func (s *Semaphore) Down() {
	k := s.k
	k.mu.Lock()
	for s.value == 0 {
		self := k.current
		s.waiters = append(s.waiters, self)
		k.block()
	}
	s.value--
	k.mu.Unlock()
}

// TryDown consumes one unit without blocking if the value is positive,
// reporting whether it did (spec §4.3's sema_try_down).
func (s *Semaphore) TryDown() bool {
	k := s.k
	k.mu.Lock()
	defer k.mu.Unlock()
	if s.value == 0 {
		return false
	}
	s.value--
	return true
}

// Up increments the semaphore's value and, if anyone is waiting, wakes the
// highest-priority waiter (spec §4.3's sema_up). The waiter list is
// re-sorted first rather than trusting insertion order, since a donation
// may have raised a waiter's priority after it joined the list. The
// wakeup's preempt check runs here, since Up is always called by a
// thread's own goroutine, never by the tick source.
func (s *Semaphore) Up() {
	k := s.k
	k.mu.Lock()
	s.value++
	if len(s.waiters) > 0 {
		sortWaitersByPriorityDesc(s.waiters)
		w := s.waiters[0]
		s.waiters = s.waiters[1:]
		k.unblock(w)
		k.maybeYieldLocked()
	}
	k.mu.Unlock()
}

// sortWaitersByPriorityDesc orders waiters highest-effective-priority
// first, stable so threads of equal priority keep their arrival order
// (spec's "strict priority with FIFO tie-break" invariant applies to
// semaphore wakeup too).
func sortWaitersByPriorityDesc(waiters []*Thread) {
	sort.SliceStable(waiters, func(i, j int) bool {
		return waiters[i].effPriority > waiters[j].effPriority
	})
}
