package kernel

import "testing"

// These tests exercise donation bookkeeping directly against hand-built
// Thread/Lock values rather than live goroutines: the walk is a pure
// function of holder/blockedOnLock/waiters, and testing it this way keeps
// the cases readable without orchestrating real scheduling.

func TestDonation_Simple(t *testing.T) {
	k := New(DefaultConfig())

	low := newTestThread(k, 100, "low", 10)
	high := newTestThread(k, 101, "high", 30)

	var lockA Lock
	lockA.Init(k)
	lockA.holder = low
	low.locksHeld = append(low.locksHeld, &lockA)

	high.blockedOnLock = &lockA
	k.donationChainLocked(high, &lockA)

	if low.effPriority != 30 {
		t.Fatalf("low.effPriority=%d; want 30", low.effPriority)
	}

	// Release recomputes from scratch by scanning each held lock's
	// waiters, not by reverting to a cached pre-donation value.
	lockA.sem.waiters = []*Thread{high}
	if got := k.recomputeEffectiveLocked(low); got != 30 {
		t.Fatalf("recomputeEffectiveLocked=%d; want 30 (high still waiting)", got)
	}
	lockA.sem.waiters = nil
	if got := k.recomputeEffectiveLocked(low); got != 10 {
		t.Fatalf("recomputeEffectiveLocked=%d; want 10 (base, no waiters left)", got)
	}
}

func TestDonation_ChainAcrossTwoLocks(t *testing.T) {
	k := New(DefaultConfig())

	a := newTestThread(k, 100, "a", 10)
	b := newTestThread(k, 101, "b", 20)
	c := newTestThread(k, 102, "c", 30)

	var lockA, lockB Lock
	lockA.Init(k)
	lockB.Init(k)

	lockA.holder = a
	a.locksHeld = append(a.locksHeld, &lockA)

	lockB.holder = b
	b.locksHeld = append(b.locksHeld, &lockB)
	b.blockedOnLock = &lockA

	c.blockedOnLock = &lockB
	k.donationChainLocked(c, &lockB)

	if b.effPriority != 30 {
		t.Fatalf("b.effPriority=%d; want 30 (direct donation from c)", b.effPriority)
	}
	if a.effPriority != 30 {
		t.Fatalf("a.effPriority=%d; want 30 (relayed through b, since b is blocked on a's lock)", a.effPriority)
	}

	// c releases lockB's wait (simulated: c stops waiting on it) and b gives
	// up lockB. b no longer holds anything with a waiter at 30, but a is
	// still donated-to through b, which is still blocked on lockA.
	lockB.sem.waiters = nil
	removeLockFromHeld(b, &lockB)
	b.effPriority = k.recomputeEffectiveLocked(b)
	if b.effPriority != 20 {
		t.Fatalf("b.effPriority after releasing lockB=%d; want 20 (base, c no longer waiting on it)", b.effPriority)
	}
	// recomputeEffectiveLocked scans the current priorities of a's own locks'
	// waiters, so with b (now 20) still waiting on lockA, a drops from 30 to
	// b's 20 and keeps that until lockA itself is released.
	lockA.sem.waiters = []*Thread{b}
	a.effPriority = k.recomputeEffectiveLocked(a)
	if a.effPriority != 20 {
		t.Fatalf("a.effPriority with b (now 20) still waiting on lockA=%d; want 20", a.effPriority)
	}

	lockA.sem.waiters = nil
	removeLockFromHeld(a, &lockA)
	a.effPriority = k.recomputeEffectiveLocked(a)
	if a.effPriority != 10 {
		t.Fatalf("a.effPriority after releasing lockA=%d; want 10 (base, no one waiting)", a.effPriority)
	}
}

func TestDonation_SecondDonationSurvivesFirstRelease(t *testing.T) {
	k := New(DefaultConfig())

	holder := newTestThread(k, 100, "holder", 10)
	donorLow := newTestThread(k, 101, "donor-low", 20)
	donorHigh := newTestThread(k, 102, "donor-high", 30)

	var lockLow, lockHigh Lock
	lockLow.Init(k)
	lockHigh.Init(k)
	lockLow.holder = holder
	lockHigh.holder = holder
	holder.locksHeld = append(holder.locksHeld, &lockLow, &lockHigh)
	lockLow.sem.waiters = []*Thread{donorLow}
	lockHigh.sem.waiters = []*Thread{donorHigh}

	holder.effPriority = k.recomputeEffectiveLocked(holder)
	if holder.effPriority != 30 {
		t.Fatalf("effPriority=%d; want 30 (max of both donors)", holder.effPriority)
	}

	removeLockFromHeld(holder, &lockHigh)
	holder.effPriority = k.recomputeEffectiveLocked(holder)
	if holder.effPriority != 20 {
		t.Fatalf("effPriority after releasing lockHigh=%d; want 20 (donorLow's donation survives)", holder.effPriority)
	}
}

func TestDonation_DepthCapStopsTheChain(t *testing.T) {
	k := New(DefaultConfig())
	k.cfg.DonationDepthMax = 3

	// top -> l3(t3) -> l2(t2) -> l1(t1) -> l0(t0): a 4-hop chain. With the
	// cap at 3, donation reaches t3, t2, t1 but must not reach t0.
	t0 := newTestThread(k, 100, "t0", 5)
	t1 := newTestThread(k, 101, "t1", 5)
	t2 := newTestThread(k, 102, "t2", 5)
	t3 := newTestThread(k, 103, "t3", 5)
	top := newTestThread(k, 104, "top", 50)

	var l0, l1, l2, l3 Lock
	l0.Init(k)
	l1.Init(k)
	l2.Init(k)
	l3.Init(k)

	l0.holder = t0
	l1.holder = t1
	l2.holder = t2
	l3.holder = t3
	t1.blockedOnLock = &l0
	t2.blockedOnLock = &l1
	t3.blockedOnLock = &l2

	top.blockedOnLock = &l3
	k.donationChainLocked(top, &l3)

	for _, th := range []*Thread{t3, t2, t1} {
		if th.effPriority != 50 {
			t.Fatalf("%s.effPriority=%d; want 50", th.name, th.effPriority)
		}
	}
	if t0.effPriority != 5 {
		t.Fatalf("t0.effPriority=%d; want 5 (beyond the depth cap)", t0.effPriority)
	}
}
