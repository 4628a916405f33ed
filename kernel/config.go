package kernel

// Config bounds and defaults the core's compile-time knobs (spec §6).
// Unlike the original's #define / #error pair, these are validated once in
// New rather than at compile time; Go has no equivalent of a preprocessor
// range check.
type Config struct {
	// TickHz is the timer interrupt frequency. Must be in [19, 1000].
	TickHz int

	// TimeSlice is the number of ticks in a thread's scheduling quantum.
	TimeSlice int

	// DonationDepthMax bounds how many links a priority donation walk will
	// cross before giving up.
	DonationDepthMax int

	// MaxThreads bounds the thread table. ThreadCreate returns
	// ErrNoThreadSlots once this many threads (including idle) are live,
	// the Go rendering of the original's stack-page exhaustion failure.
	MaxThreads int
}

// Priority bounds (spec §6).
const (
	PriMin     = 0
	PriDefault = 31
	PriMax     = 63

	priBuckets = PriMax + 1
)

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		TickHz:           100,
		TimeSlice:        4,
		DonationDepthMax: 8,
		MaxThreads:       4096,
	}
}

func (c Config) normalized() Config {
	if c.TickHz < 19 {
		c.TickHz = 19
	} else if c.TickHz > 1000 {
		c.TickHz = 1000
	}
	if c.TimeSlice < 1 {
		c.TimeSlice = 4
	}
	if c.DonationDepthMax < 1 {
		c.DonationDepthMax = 8
	}
	if c.MaxThreads < 1 {
		c.MaxThreads = 4096
	}
	return c
}

func clampPriority(p int) int {
	if p < PriMin {
		return PriMin
	}
	if p > PriMax {
		return PriMax
	}
	return p
}
