package kernel

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrNoThreadSlots is returned by ThreadCreate once Config.MaxThreads
// threads are live (spec §7, "TID_ERROR or equivalent") — the Go rendering
// of the original's stack-page exhaustion failure. It is the only failure
// mode the core surfaces to callers; everything else that can go wrong is a
// precondition violation and panics instead.
var ErrNoThreadSlots = errors.New("kernel: no free thread slots")

// PanicInfo describes a fatal assertion failure, mirroring the teacher's
// kernel.PanicInfo / PanicInfo handler pattern.
type PanicInfo struct {
	Thread  ThreadID
	Message string
}

var (
	panicOnce    sync.Once
	panicHandler atomic.Value // func(PanicInfo)
)

// SetPanicHandler installs a process-wide handler invoked once, right before
// the triggering assertion's panic unwinds. It must not itself panic.
func SetPanicHandler(fn func(PanicInfo)) {
	panicHandler.Store(fn)
}

// assertf is the core's single fatal-assertion path (spec §7: "Precondition
// violation ... Fatal assertion; kernel panic. ... never caught."). Every
// precondition check in this package routes through it instead of panicking
// directly, so there is exactly one place that decides how a violated
// invariant is reported.
func assertf(tid ThreadID, cond bool, format string, args ...any) {
	if cond {
		return
	}
	msg := fmt.Sprintf(format, args...)
	panicOnce.Do(func() {
		if v := panicHandler.Load(); v != nil {
			if fn, ok := v.(func(PanicInfo)); ok && fn != nil {
				fn(PanicInfo{Thread: tid, Message: msg})
			}
		}
	})
	panic("kernel: " + msg)
}
