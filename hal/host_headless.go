//go:build !tinygo

package hal

import "context"

// HeadlessConfig controls the no-window host runner used by cmd/kdbg and
// by demos/tests that want a running kernel without a visualizer window.
type HeadlessConfig struct {
	Hz    int
	Ticks uint64 // 0 means run until ctx is done
}

// RunHeadless drives onTick at cfg.Hz until ctx is canceled or cfg.Ticks
// ticks have elapsed, whichever comes first.
func RunHeadless(ctx context.Context, cfg HeadlessConfig, onTick func()) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 100
	}
	clock := NewClock(cfg.Hz)

	if cfg.Ticks == 0 {
		return clock.Run(ctx, onTick)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var seen uint64
	err := clock.Run(runCtx, func() {
		onTick()
		seen++
		if seen >= cfg.Ticks {
			cancel()
		}
	})
	if err == context.Canceled && seen >= cfg.Ticks {
		return nil
	}
	return err
}
