package scheduler

import (
	"github.com/joeycumines/go-rtsched/timebase"
	"github.com/joeycumines/go-rtsched/timesync"
	"github.com/joeycumines/logiface"
)

const (
	// DefaultRateWindow is the period over which Rate is measured.
	DefaultRateWindow = 5 * timebase.Second

	// DefaultStarvationThreshold is the number of consecutive misses after
	// which a starvation warning is logged.
	DefaultStarvationThreshold = 1000
)

type (
	// Option configures a Scheduler.
	Option interface {
		applyScheduler(*schedulerOptions) error
	}

	optionImpl struct {
		applySchedulerFunc func(*schedulerOptions) error
	}

	schedulerOptions struct {
		timeSource          *timesync.TimeSource
		clock               timebase.Clock
		logger              *logiface.Logger[logiface.Event]
		rateWindow          int64
		starvationThreshold int32
		metrics             bool
	}
)

func (o *optionImpl) applyScheduler(opts *schedulerOptions) error {
	return o.applySchedulerFunc(opts)
}

// WithTimeSource sets the time source used for all timing decisions. By
// default, each scheduler gets its own, uncorrected, time source.
func WithTimeSource(ts *timesync.TimeSource) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.timeSource = ts
		return nil
	}}
}

// WithClock sets the precise clock, used to measure task run times, and
// (if no WithTimeSource is provided) as the basis of scheduler time.
// Defaults to the clock of the time source, or timebase.Platform.
func WithClock(clock timebase.Clock) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.clock = clock
		return nil
	}}
}

// WithLogger sets the logger, nil (the default) disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithMetrics enables collection of scheduler counters, and per-task run
// time percentiles, see Scheduler.Metrics and Scheduler.Stats.
func WithMetrics(enabled bool) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.metrics = enabled
		return nil
	}}
}

// WithRateWindow sets the period (ns) over which each task's Rate is
// measured.
func WithRateWindow(window int64) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		if window <= 0 {
			return ErrInvalidRateWindow
		}
		opts.rateWindow = window
		return nil
	}}
}

// WithStarvationThreshold sets the number of consecutive misses at which a
// warning is logged for a task. Warnings are rate limited per task. Zero
// disables the warning.
func WithStarvationThreshold(misses int32) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		if misses < 0 {
			return ErrInvalidStarvationThreshold
		}
		opts.starvationThreshold = misses
		return nil
	}}
}

func resolveOptions(opts []Option) (*schedulerOptions, error) {
	cfg := &schedulerOptions{
		rateWindow:          DefaultRateWindow,
		starvationThreshold: DefaultStarvationThreshold,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyScheduler(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
