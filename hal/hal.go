// Package hal is the contact point between the kernel tooling (cmd/kviz,
// cmd/kdbg) and the outside world: a tick source that drives
// kernel.Kernel.OnTick and somewhere to print status lines. The live
// scheduler visualizer's window is cmd/kviz's own, not part of hal.
//
// The kernel package itself depends on nothing in here. A tick source is
// just whatever repeatedly calls OnTick; hal exists for the tooling built
// around the core, not the core.
package hal

import "errors"

// Logger writes newline-delimited status lines — the ambient logging
// surface, kept in the teacher's own minimal shape rather than adopting a
// structured-logging library the pack never reaches for.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// ErrNotImplemented is returned by HAL methods with no meaningful
// implementation on the current build target.
var ErrNotImplemented = errors.New("hal: not implemented")

// HAL is the minimal host abstraction the tooling binaries use.
type HAL interface {
	Logger() Logger
	Clock() *Clock
}
