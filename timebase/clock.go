package timebase

import (
	"sync/atomic"
)

type (
	// Clock is a source of monotonic nanosecond time.
	Clock interface {
		Now() int64
	}

	// ClockFunc implements Clock.
	ClockFunc func() int64

	// ManualClock is a Clock that only moves when told to, for deterministic
	// tests and simulations. The zero value reads as 0.
	ManualClock struct {
		now atomic.Int64
	}

	platformClock struct{}
)

var (
	// Platform is the precise clock of the platform, see Now.
	Platform Clock = platformClock{}

	// compile time assertions
	_ Clock = ClockFunc(nil)
	_ Clock = (*ManualClock)(nil)
)

// Now returns the current time of the precise platform clock, in nanoseconds
// since boot (or since process start, on platforms without a boot clock).
func Now() int64 {
	return platformNow()
}

// NowSeconds is Now, in seconds.
func NowSeconds() float64 {
	return Seconds(Now())
}

func (platformClock) Now() int64 { return platformNow() }

func (x ClockFunc) Now() int64 { return x() }

// NewManualClock returns a ManualClock set to now.
func NewManualClock(now int64) *ManualClock {
	c := new(ManualClock)
	c.now.Store(now)
	return c
}

func (x *ManualClock) Now() int64 { return x.now.Load() }

// Set moves the clock to now. Moving a clock backwards is permitted, but
// breaks the monotonic contract expected by most consumers.
func (x *ManualClock) Set(now int64) { x.now.Store(now) }

// Advance moves the clock forward by d, returning the new time.
func (x *ManualClock) Advance(d int64) int64 { return x.now.Add(d) }
