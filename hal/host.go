//go:build !tinygo

package hal

import (
	"fmt"
	"os"
	"sync"
)

type hostHAL struct {
	logger *hostLogger
	clock  *Clock
}

// New returns a host HAL implementation: a stdout logger plus a real-time
// Clock at hz.
func New(hz int) HAL {
	return &hostHAL{
		logger: &hostLogger{w: os.Stdout},
		clock:  NewClock(hz),
	}
}

func (h *hostHAL) Logger() Logger { return h.logger }
func (h *hostHAL) Clock() *Clock  { return h.clock }

type hostLogger struct {
	mu sync.Mutex
	w  *os.File
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}
