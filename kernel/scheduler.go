// Package kernel implements the concurrency core of a small teaching
// operating system: a preemptive, priority-based thread scheduler and the
// synchronization primitives layered on it (semaphores, locks with
// multi-level priority donation, Mesa-style condition variables).
//
// The core has no hardware to drive it. Callers supply a tick source (see
// package hal) that calls OnTick once per simulated timer interrupt, and
// everything else — thread creation, blocking, donation, wakeup — happens
// through the methods below.
package kernel

import (
	"runtime"
	"sync"
)

// KernelStats are bookkeeping counters with no effect on scheduling
// decisions, exposed for diagnostics and the visualizer's HUD.
type KernelStats struct {
	Switches    uint64
	Preemptions uint64
	Donations   uint64
	TicksSeen   uint64
}

// Kernel holds all scheduler-owned state: the ready list, the sleep queue,
// the thread table, and the tick counter. A Kernel is the "disable
// interrupts around each critical section" boundary spec.md §5 describes —
// realized here as a single mutex, exactly as SPEC_FULL.md §1 records.
type Kernel struct {
	cfg Config

	mu sync.Mutex

	threads map[ThreadID]*Thread
	nextID  ThreadID

	ready    readyList
	sleeping threadList

	current *Thread
	idle    *Thread

	ticks       uint64
	quantumLeft int
	needResched bool

	idleCond *sync.Cond

	stats KernelStats
}

// New creates a Kernel and starts its idle thread. The calling goroutine is
// not itself a kernel thread; it is expected to call ThreadCreate for the
// system's first real work and then drive a tick source (see package hal).
func New(cfg Config) *Kernel {
	cfg = cfg.normalized()
	k := &Kernel{
		cfg:     cfg,
		threads: make(map[ThreadID]*Thread),
	}
	k.idleCond = sync.NewCond(&k.mu)

	idle := &Thread{
		id:           0,
		name:         "idle",
		state:        StateRunning,
		basePriority: PriMin,
		effPriority:  PriMin,
		resume:       make(chan struct{}, 1),
		isIdle:       true,
	}
	k.idle = idle
	k.threads[idle.id] = idle
	k.nextID = 1
	k.current = idle
	k.quantumLeft = cfg.TimeSlice

	go k.idleLoop(idle)
	return k
}

// Config returns the kernel's effective (normalized) configuration.
func (k *Kernel) Config() Config { return k.cfg }

func (k *Kernel) idleLoop(self *Thread) {
	for {
		k.mu.Lock()
		for k.ready.empty() {
			k.idleCond.Wait()
		}
		k.mu.Unlock()
		k.Yield()
	}
}

// ThreadCreate registers and starts a new thread at basePriority, returning
// its handle. If basePriority is strictly higher than the caller's
// effective priority, the new thread is owed a preemption: needResched is
// set and honored at the creator's next Checkpoint, Yield, or blocking
// call, the same deferred path tick-driven preemption takes.
//
// The original's thread_create calls thread_yield() immediately when the
// new thread outranks the caller. That requires the caller to itself be a
// dispatched kernel thread, free to park on its own resume channel — true
// for every thread body, but not for bootstrap code (a tool's main, a
// test) that creates threads before any are running. Deferring instead of
// switching synchronously makes ThreadCreate safe to call from either.
func (k *Kernel) ThreadCreate(name string, basePriority int, entry EntryFunc) (ThreadID, error) {
	k.mu.Lock()

	if len(k.threads) >= k.cfg.MaxThreads {
		k.mu.Unlock()
		return 0, ErrNoThreadSlots
	}

	basePriority = clampPriority(basePriority)
	id := k.nextID
	k.nextID++

	t := &Thread{
		id:           id,
		name:         truncateName(name),
		state:        StateBlocked,
		basePriority: basePriority,
		effPriority:  basePriority,
		resume:       make(chan struct{}, 1),
		parent:       k.current,
	}
	t.exitDone = &Semaphore{k: k}
	t.reapAck = &Semaphore{k: k}

	k.threads[id] = t
	if k.current != nil {
		k.current.children = append(k.current.children, t)
	}

	go k.trampoline(t, entry)

	k.makeReady(t)
	if k.shouldPreemptLocked() {
		k.needResched = true
	}
	k.mu.Unlock()
	return id, nil
}

func (k *Kernel) trampoline(t *Thread, entry EntryFunc) {
	<-t.resume
	entry(k, t.id)
	k.ThreadExit(0)
}

// ThreadCurrent returns the calling thread's handle.
func (k *Kernel) ThreadCurrent() ThreadID {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.current.id
}

// Lookup resolves a handle to its Thread, if it still exists.
func (k *Kernel) Lookup(id ThreadID) (*Thread, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	t, ok := k.threads[id]
	return t, ok
}

// Snapshot copies one thread's observable fields.
func (k *Kernel) Snapshot(id ThreadID) (ThreadSnapshot, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	t, ok := k.threads[id]
	if !ok {
		return ThreadSnapshot{}, false
	}
	return t.snapshot(), true
}

// Snapshots copies every live thread's observable fields, idle excluded.
func (k *Kernel) Snapshots() []ThreadSnapshot {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := make([]ThreadSnapshot, 0, len(k.threads))
	for _, t := range k.threads {
		if t.isIdle {
			continue
		}
		out = append(out, t.snapshot())
	}
	return out
}

// Stats returns a copy of the kernel's diagnostic counters.
func (k *Kernel) Stats() KernelStats {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.stats
}

// ThreadSetPriority changes the calling thread's base priority. If the
// thread currently holds donations that exceed the new base, its effective
// priority stays at the donated level until those locks are released
// (spec §4.4's recompute-from-scratch rule applies here too).
func (k *Kernel) ThreadSetPriority(p int) {
	k.mu.Lock()
	self := k.current
	self.basePriority = clampPriority(p)
	k.applyEffectivePriorityLocked(self, k.recomputeEffectiveLocked(self))
	k.maybeYieldLocked()
	k.mu.Unlock()
}

// ThreadGetPriority returns the calling thread's effective priority.
func (k *Kernel) ThreadGetPriority() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.current.effPriority
}

// recomputeEffectiveLocked implements the release()/set_priority recompute
// rule verbatim: base priority, maxed against every current waiter on every
// lock this thread still holds (spec §4.4 step 3). It scans rather than
// trusts any cached sort, since donations can change waiters' priorities
// while they wait.
func (k *Kernel) recomputeEffectiveLocked(t *Thread) int {
	best := t.basePriority
	for _, l := range t.locksHeld {
		for _, w := range l.sem.waiters {
			if w.effPriority > best {
				best = w.effPriority
			}
		}
	}
	return best
}

// applyEffectivePriorityLocked sets t's effective priority, re-bucketing it
// in the ready list if needed so readyList.popMax keeps working.
func (k *Kernel) applyEffectivePriorityLocked(t *Thread, newPriority int) {
	if newPriority == t.effPriority {
		return
	}
	if t.state == StateReady {
		k.ready.reinsert(t, newPriority)
	} else {
		t.effPriority = newPriority
	}
}

// donate raises recipient's effective priority to donor's if donor is
// higher, re-bucketing recipient in the ready list if it's currently ready
// (spec §4.4's donate_priority).
func (k *Kernel) donate(donor, recipient *Thread) bool {
	if recipient.effPriority >= donor.effPriority {
		return false
	}
	k.applyEffectivePriorityLocked(recipient, donor.effPriority)
	k.stats.Donations++
	return true
}

// makeReady transitions t to READY and inserts it into the ready list,
// waking the idle thread if it's parked waiting for work.
func (k *Kernel) makeReady(t *Thread) {
	t.state = StateReady
	k.ready.push(t)
	k.idleCond.Broadcast()
}

// unblock wakes a BLOCKED thread. Precondition (spec §4.2): t.state ==
// BLOCKED. Does not itself preempt; callers decide whether to yield.
func (k *Kernel) unblock(t *Thread) {
	assertf(k.current.id, t.state == StateBlocked, "unblock: thread %d (%s) is not blocked", t.id, t.name)
	k.makeReady(t)
}

// block suspends the calling thread. Precondition: the caller already
// linked self into whatever wait structure it's blocking on.
func (k *Kernel) block() {
	self := k.current
	assertf(self.id, self.state == StateRunning, "block: thread %d (%s) is not running", self.id, self.name)
	self.state = StateBlocked
	k.schedule()
}

// Yield gives up the remainder of the calling thread's quantum, placing it
// at the back of its own priority bucket and dispatching the next ready
// thread (spec §4.2). Must not be called from a tick handler.
func (k *Kernel) Yield() {
	k.mu.Lock()
	self := k.current
	if !self.isIdle {
		self.state = StateReady
		k.ready.push(self)
	}
	k.schedule()
	k.mu.Unlock()
}

// Checkpoint is this translation's stand-in for asynchronous hardware
// preemption (SPEC_FULL.md §1): a thread doing CPU-bound work with no other
// suspension point should call it periodically. It reschedules only if a
// reschedule was deferred (by a tick handler, or by ThreadCreate making a
// higher-priority thread ready) since the caller was last dispatched;
// otherwise it returns immediately.
func (k *Kernel) Checkpoint() {
	k.mu.Lock()
	if !k.needResched {
		k.mu.Unlock()
		return
	}
	k.needResched = false
	self := k.current
	if !self.isIdle {
		self.state = StateReady
		k.ready.push(self)
	}
	k.stats.Preemptions++
	k.schedule()
	k.mu.Unlock()
}

// maybeYieldLocked is the non-interrupt-context half of spec §4.3/§4.4's
// "if should_preempt(): yield() [...] or intr_yield_on_return()" check: the
// caller is a thread's own goroutine (not the tick source), so it can
// perform the handoff immediately rather than deferring it.
func (k *Kernel) maybeYieldLocked() {
	if !k.shouldPreemptLocked() {
		return
	}
	self := k.current
	self.state = StateReady
	k.ready.push(self)
	k.stats.Preemptions++
	k.schedule()
}

// ShouldPreempt reports whether the ready list's head strictly outranks the
// running thread (spec §4.2). Safe to call from a tick handler.
func (k *Kernel) ShouldPreempt() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.shouldPreemptLocked()
}

func (k *Kernel) shouldPreemptLocked() bool {
	if k.current == nil {
		return false
	}
	return k.ready.maxPriority() > k.current.effPriority
}

// pickNext chooses the thread schedule() should dispatch: the highest
// priority, longest-waiting ready thread, or idle if none are ready
// (spec §4.2, §7).
func (k *Kernel) pickNext() *Thread {
	if t := k.ready.popMax(); t != nil {
		return t
	}
	return k.idle
}

// schedule must be called with k.mu held; it returns with k.mu held. It is
// entered only with "interrupts disabled" (spec §4.2) and is the one place
// that performs a context switch: it hands the CPU to the chosen thread by
// signaling its resume channel, then — unless the caller is exiting —
// parks the caller on its own resume channel until it is redispatched.
// This channel handoff is this translation's realization of
// switch_threads(prev, next); see SPEC_FULL.md §1.
func (k *Kernel) schedule() {
	k.needResched = false

	next := k.pickNext()
	prev := k.current
	k.current = next
	next.state = StateRunning
	k.quantumLeft = k.cfg.TimeSlice
	k.stats.Switches++

	if next == prev {
		return
	}

	k.mu.Unlock()
	next.resume <- struct{}{}
	if prev != nil && prev.state != StateDying {
		<-prev.resume
	}
	k.mu.Lock()
}

// ThreadExit records status, lets the parent observe it via exit_done,
// waits for the parent to acknowledge via reap_ack, and performs a final
// schedule() before terminating the calling thread's goroutine. It does
// not return to its caller (spec §4.2: "schedule() never returns"),
// realized with runtime.Goexit rather than an infinite loop or os.Exit.
func (k *Kernel) ThreadExit(status int) {
	k.mu.Lock()
	self := k.current
	self.exitCode = status
	k.mu.Unlock()

	self.exitDone.Up()
	self.reapAck.Down()

	k.mu.Lock()
	self.state = StateDying
	self.exited = true
	k.schedule()
	k.mu.Unlock()

	runtime.Goexit()
}

// ThreadReap implements the parent side of "child announces exit, waits for
// parent to reap" (spec §3): it blocks until child has called ThreadExit,
// returns its status, and releases the child's stack (its goroutine) to
// terminate. This is SPEC_FULL.md's rendering of the data model's
// exit_done/reap_ack handshake; spec.md's public API list doesn't name it
// because syscall-level wait() is explicitly out of scope, but the
// underlying TCB synchronization is part of the data model and is
// implemented here.
func (k *Kernel) ThreadReap(child ThreadID) (status int, ok bool) {
	k.mu.Lock()
	c, found := k.threads[child]
	k.mu.Unlock()
	if !found {
		return 0, false
	}

	c.exitDone.Down()

	k.mu.Lock()
	status = c.exitCode
	delete(k.threads, child)
	k.mu.Unlock()

	c.reapAck.Up()
	return status, true
}
