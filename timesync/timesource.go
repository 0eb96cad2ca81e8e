package timesync

import (
	"math"

	"github.com/joeycumines/go-rtsched/timebase"
	"github.com/joeycumines/go-rtsched/topic"
	"github.com/joeycumines/logiface"
	"golang.org/x/exp/constraints"
)

// TimeSource is a corrected clock, that follows the precise platform clock,
// scaled and offset to track a ClockSource.
//
// Internally, time is held in anchor form: corrected time is
// anchorCorrected + (precise - anchorPrecise) * factor. Re-anchoring at each
// correction keeps the output continuous, when the factor changes.
type TimeSource struct {
	sub             topic.Subscriber[Timestamped[int64]]
	clock           timebase.Clock
	source          ClockSource
	logger          *logiface.Logger[logiface.Event]
	anchorPrecise   int64
	anchorCorrected int64
	factor          float64
	limit           float64
	slewPeriod      int64
	stepThreshold   int64
	last            Timestamped[int64]
	hasLast         bool
	corrections     uint64
	steps           uint64
}

// NewTimeSource returns a TimeSource, initially identical to the precise
// clock, optionally subscribed to a source (WithSource).
func NewTimeSource(opts ...Option) (*TimeSource, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	x := &TimeSource{
		clock:         cfg.clock,
		logger:        cfg.logger,
		factor:        1,
		limit:         DefaultCorrectionLimit,
		slewPeriod:    cfg.slewPeriod,
		stepThreshold: cfg.stepThreshold,
	}
	x.sub.Init(x)
	if cfg.source != nil {
		x.SetClockSource(cfg.source, cfg.limit)
	}
	return x, nil
}

// Now returns the corrected time, in nanoseconds.
func (x *TimeSource) Now() int64 { return x.at(x.clock.Now()) }

// NowSeconds is Now, in seconds.
func (x *TimeSource) NowSeconds() float64 { return timebase.Seconds(x.Now()) }

// Precise returns the uncorrected time of the underlying clock.
func (x *TimeSource) Precise() int64 { return x.clock.Now() }

// Clock returns the underlying precise clock.
func (x *TimeSource) Clock() timebase.Clock { return x.clock }

// Factor returns the current rate of corrected time, relative to the
// precise clock.
func (x *TimeSource) Factor() float64 { return x.factor }

// Offset returns the offset such that Now = Precise*Factor + Offset.
func (x *TimeSource) Offset() int64 {
	return x.anchorCorrected - int64(math.Round(float64(x.anchorPrecise)*x.factor))
}

// Limit returns the correction limit.
func (x *TimeSource) Limit() float64 { return x.limit }

// Source returns the clock source, or nil.
func (x *TimeSource) Source() ClockSource { return x.source }

// Corrections returns the number of samples applied.
func (x *TimeSource) Corrections() uint64 { return x.corrections }

// Steps returns the number of forward steps taken, see WithStepThreshold.
func (x *TimeSource) Steps() uint64 { return x.steps }

// SetClockSource subscribes to the topic of source, replacing any previous
// source. Factor is bounded to [1/limit, limit], a limit below 1 is treated
// as 1 (no rate correction). A nil source unsubscribes.
func (x *TimeSource) SetClockSource(source ClockSource, limit float64) {
	if !(limit >= 1) {
		limit = 1
	}
	x.limit = limit
	x.source = source
	x.hasLast = false
	x.reanchor(x.clock.Now(), clamp(x.factor, 1/limit, limit))
	if source == nil {
		x.sub.Unsubscribe()
		return
	}
	x.sub.Subscribe(source.TimeTopic())
}

// ForceCorrect samples source once, and makes the corrected time match it
// exactly, keeping the current factor. This may move time backwards. It does
// not change the configured source. A nil source uses the configured one,
// and is a no-op if there is none.
func (x *TimeSource) ForceCorrect(source ClockSource) {
	if source == nil {
		source = x.source
	}
	if source == nil {
		return
	}
	x.ForceCorrectTo(source.Counter())
}

// ForceCorrectTo is ForceCorrect, with an explicit sample.
func (x *TimeSource) ForceCorrectTo(sample Timestamped[int64]) {
	x.anchorPrecise = sample.Timestamp
	x.anchorCorrected = sample.Value
	x.last = sample
	x.hasLast = true
	x.logger.Debug().
		Int64(`value`, sample.Value).
		Int64(`timestamp`, sample.Timestamp).
		Int64(`offset`, x.Offset()).
		Log(`timesync: force corrected`)
}

// Receive applies a reference sample, adjusting the factor such that the
// error at the sample time is removed over the slew period, while tracking
// the rate of the reference.
func (x *TimeSource) Receive(sample Timestamped[int64], _ *topic.Topic[Timestamped[int64]]) {
	now := x.clock.Now()
	e := float64(sample.Value - x.at(sample.Timestamp))

	rate := 1.0
	if x.hasLast {
		if dp := sample.Timestamp - x.last.Timestamp; dp > 0 {
			rate = float64(sample.Value-x.last.Value) / float64(dp)
		} else {
			rate = x.factor
		}
	}
	x.last = sample
	x.hasLast = true
	x.corrections++

	if x.stepThreshold > 0 && e > float64(x.stepThreshold) {
		// the step is applied at the sample time, then carried to now
		x.anchorCorrected = x.at(now) + int64(e)
		x.anchorPrecise = now
		x.factor = clamp(rate, 1/x.limit, x.limit)
		x.steps++
		x.logger.Info().
			Int64(`error_ns`, int64(e)).
			Float64(`factor`, x.factor).
			Log(`timesync: stepped forward`)
		return
	}

	factor := clamp(rate+e/float64(x.slewPeriod), 1/x.limit, x.limit)
	x.reanchor(now, factor)

	x.logger.Debug().
		Int64(`error_ns`, int64(e)).
		Float64(`rate`, rate).
		Float64(`factor`, factor).
		Log(`timesync: slewing`)
}

// Close unsubscribes from the clock source, if any.
func (x *TimeSource) Close() {
	x.sub.Unsubscribe()
	x.source = nil
}

func (x *TimeSource) at(precise int64) int64 {
	return x.anchorCorrected + int64(float64(precise-x.anchorPrecise)*x.factor)
}

func (x *TimeSource) reanchor(precise int64, factor float64) {
	x.anchorCorrected = x.at(precise)
	x.anchorPrecise = precise
	x.factor = factor
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
