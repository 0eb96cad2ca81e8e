package timesync

import (
	"github.com/joeycumines/go-rtsched/timebase"
	"github.com/joeycumines/go-rtsched/topic"
)

type (
	// ClockSource is a counter that can be sampled on demand, and which
	// publishes samples to its topic, e.g. as they arrive from hardware.
	ClockSource interface {
		// Counter returns the current counter value, stamped with the precise
		// time it corresponds to.
		Counter() Timestamped[int64]
		// TimeTopic returns the topic samples are published to.
		TimeTopic() *topic.Topic[Timestamped[int64]]
	}

	// PlatformSource is a ClockSource backed by a timebase.Clock. It only
	// publishes when Sample is called.
	PlatformSource struct {
		clock timebase.Clock
		topic topic.Topic[Timestamped[int64]]
	}
)

var (
	// compile time assertions
	_ ClockSource = (*PlatformSource)(nil)
	_ ClockSource = (*Reference)(nil)
)

// NewPlatformSource returns a PlatformSource over clock, or the platform
// clock if nil.
func NewPlatformSource(clock timebase.Clock) *PlatformSource {
	if clock == nil {
		clock = timebase.Platform
	}
	return &PlatformSource{clock: clock}
}

func (x *PlatformSource) Counter() Timestamped[int64] {
	now := x.clock.Now()
	return Stamp(now, now)
}

func (x *PlatformSource) TimeTopic() *topic.Topic[Timestamped[int64]] { return &x.topic }

// Sample reads the clock and publishes the result.
func (x *PlatformSource) Sample() Timestamped[int64] {
	v := x.Counter()
	x.topic.Publish(v)
	return v
}
