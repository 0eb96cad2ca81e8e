package timesync

import (
	"errors"

	"github.com/joeycumines/go-rtsched/timebase"
	"github.com/joeycumines/logiface"
)

// DefaultCorrectionLimit is the correction limit used when a source is
// configured without one.
const DefaultCorrectionLimit = 2.0

var (
	// ErrInvalidSlewPeriod is returned by NewTimeSource for a WithSlewPeriod
	// value <= 0.
	ErrInvalidSlewPeriod = errors.New("timesync: slew period must be positive")

	// ErrInvalidStepThreshold is returned by NewTimeSource for a
	// WithStepThreshold value < 0.
	ErrInvalidStepThreshold = errors.New("timesync: step threshold must not be negative")
)

type (
	// Option configures a TimeSource.
	Option interface {
		applyTimeSource(*timeSourceOptions) error
	}

	optionImpl struct {
		applyTimeSourceFunc func(*timeSourceOptions) error
	}

	timeSourceOptions struct {
		clock         timebase.Clock
		source        ClockSource
		limit         float64
		slewPeriod    int64
		stepThreshold int64
		logger        *logiface.Logger[logiface.Event]
	}
)

func (o *optionImpl) applyTimeSource(opts *timeSourceOptions) error {
	return o.applyTimeSourceFunc(opts)
}

// WithClock sets the precise clock, defaulting to timebase.Platform.
func WithClock(clock timebase.Clock) Option {
	return &optionImpl{func(opts *timeSourceOptions) error {
		opts.clock = clock
		return nil
	}}
}

// WithSource subscribes the TimeSource to source, see
// TimeSource.SetClockSource.
func WithSource(source ClockSource, limit float64) Option {
	return &optionImpl{func(opts *timeSourceOptions) error {
		opts.source = source
		opts.limit = limit
		return nil
	}}
}

// WithSlewPeriod sets the horizon (ns) over which a measured error is
// corrected. Shorter periods converge faster, but are bounded by the
// correction limit. Defaults to one second.
func WithSlewPeriod(period int64) Option {
	return &optionImpl{func(opts *timeSourceOptions) error {
		if period <= 0 {
			return ErrInvalidSlewPeriod
		}
		opts.slewPeriod = period
		return nil
	}}
}

// WithStepThreshold enables stepping the corrected time forward, instead of
// slewing, when it falls behind the reference by more than threshold (ns).
// Zero (the default) disables stepping. Corrected time is never stepped
// backwards.
func WithStepThreshold(threshold int64) Option {
	return &optionImpl{func(opts *timeSourceOptions) error {
		if threshold < 0 {
			return ErrInvalidStepThreshold
		}
		opts.stepThreshold = threshold
		return nil
	}}
}

// WithLogger sets the logger, nil (the default) disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *timeSourceOptions) error {
		opts.logger = logger
		return nil
	}}
}

func resolveOptions(opts []Option) (*timeSourceOptions, error) {
	cfg := &timeSourceOptions{
		clock:      timebase.Platform,
		limit:      DefaultCorrectionLimit,
		slewPeriod: timebase.Second,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyTimeSource(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.clock == nil {
		cfg.clock = timebase.Platform
	}
	return cfg, nil
}
