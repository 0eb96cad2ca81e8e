package timesync

import (
	"sync/atomic"

	"github.com/joeycumines/go-rtsched/timebase"
	"github.com/joeycumines/go-rtsched/topic"
)

// DefaultReferenceBuffer is the sample buffer size used by NewReference when
// given a size < 1.
const DefaultReferenceBuffer = 16

// Reference is an externally fed ClockSource. Samples may be fed directly,
// from the owning context (Feed, Deliver), or submitted from any goroutine
// (Submit), to be delivered later by whatever drains Samples (see the driver
// package).
type Reference struct {
	clock   timebase.Clock
	topic   topic.Topic[Timestamped[int64]]
	samples chan Timestamped[int64]
	last    Timestamped[int64]
	valid   bool
	dropped atomic.Uint64
}

// NewReference returns a Reference which stamps samples using clock (the
// platform clock if nil), buffering up to buffer submitted samples.
func NewReference(clock timebase.Clock, buffer int) *Reference {
	if clock == nil {
		clock = timebase.Platform
	}
	if buffer < 1 {
		buffer = DefaultReferenceBuffer
	}
	return &Reference{
		clock:   clock,
		samples: make(chan Timestamped[int64], buffer),
	}
}

// Counter extrapolates the last delivered sample to the current precise time.
// Before any sample is delivered, it reads the precise clock.
func (x *Reference) Counter() Timestamped[int64] {
	now := x.clock.Now()
	if !x.valid {
		return Stamp(now, now)
	}
	return Stamp(x.last.Value+(now-x.last.Timestamp), now)
}

func (x *Reference) TimeTopic() *topic.Topic[Timestamped[int64]] { return &x.topic }

// Last returns the last delivered sample, and whether there was one.
func (x *Reference) Last() (Timestamped[int64], bool) { return x.last, x.valid }

// Feed stamps value with the current precise time, and delivers it.
func (x *Reference) Feed(value int64) Timestamped[int64] {
	sample := Stamp(value, x.clock.Now())
	x.Deliver(sample)
	return sample
}

// Deliver records and publishes sample. It must be called from the context
// that owns the subscribers.
func (x *Reference) Deliver(sample Timestamped[int64]) {
	x.last = sample
	x.valid = true
	x.topic.Publish(sample)
}

// Submit queues sample for delivery, and is safe to call from any goroutine.
// It never blocks: if the buffer is full, the sample is dropped, and false
// is returned.
func (x *Reference) Submit(sample Timestamped[int64]) bool {
	select {
	case x.samples <- sample:
		return true
	default:
		x.dropped.Add(1)
		return false
	}
}

// SubmitValue is Submit, stamping value with the current precise time.
func (x *Reference) SubmitValue(value int64) bool {
	return x.Submit(Stamp(value, x.clock.Now()))
}

// Samples returns the channel of submitted, undelivered samples.
func (x *Reference) Samples() <-chan Timestamped[int64] { return x.samples }

// Drain delivers up to limit queued samples (all queued, if limit < 1)
// without blocking, returning the number delivered.
func (x *Reference) Drain(limit int) (n int) {
	for limit < 1 || n < limit {
		select {
		case sample := <-x.samples:
			x.Deliver(sample)
			n++
		default:
			return
		}
	}
	return
}

// Dropped returns the number of samples discarded by Submit.
func (x *Reference) Dropped() uint64 { return x.dropped.Load() }
