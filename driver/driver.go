// Package driver runs a scheduler, ticking it until there is no eligible
// work, then idling until the next release, or until a reference clock
// sample arrives.
package driver

import (
	"context"
	"errors"
	"time"

	"github.com/joeycumines/go-rtsched/scheduler"
	"github.com/joeycumines/go-rtsched/timebase"
	"github.com/joeycumines/go-rtsched/timesync"
	"github.com/joeycumines/logiface"
)

const (
	// DefaultMaxIdle bounds each idle period, so that changes to task
	// timing made from outside the scheduler are noticed.
	DefaultMaxIdle = 100 * time.Millisecond

	// DefaultDrainLimit is the maximum number of queued reference samples
	// delivered per loop iteration.
	DefaultDrainLimit = 64
)

var (
	// ErrNilScheduler is returned by Run if the scheduler is nil.
	ErrNilScheduler = errors.New("driver: nil scheduler")

	// ErrInvalidMaxIdle is returned by Run for a WithMaxIdle value <= 0.
	ErrInvalidMaxIdle = errors.New("driver: max idle must be positive")
)

type (
	// Option configures Run.
	Option interface {
		applyDriver(*driverOptions) error
	}

	optionImpl struct {
		applyDriverFunc func(*driverOptions) error
	}

	driverOptions struct {
		reference  *timesync.Reference
		logger     *logiface.Logger[logiface.Event]
		maxIdle    time.Duration
		drainLimit int
	}
)

func (o *optionImpl) applyDriver(opts *driverOptions) error {
	return o.applyDriverFunc(opts)
}

// WithReference delivers samples submitted to ref (see
// timesync.Reference.Submit) from the loop, waking it if idle.
func WithReference(ref *timesync.Reference) Option {
	return &optionImpl{func(opts *driverOptions) error {
		opts.reference = ref
		return nil
	}}
}

// WithMaxIdle bounds each idle period, defaulting to DefaultMaxIdle.
func WithMaxIdle(d time.Duration) Option {
	return &optionImpl{func(opts *driverOptions) error {
		if d <= 0 {
			return ErrInvalidMaxIdle
		}
		opts.maxIdle = d
		return nil
	}}
}

// WithDrainLimit sets the maximum number of reference samples delivered per
// iteration, values < 1 mean no limit.
func WithDrainLimit(n int) Option {
	return &optionImpl{func(opts *driverOptions) error {
		opts.drainLimit = n
		return nil
	}}
}

// WithLogger sets the logger, nil (the default) disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *driverOptions) error {
		opts.logger = logger
		return nil
	}}
}

func resolveOptions(opts []Option) (*driverOptions, error) {
	cfg := &driverOptions{
		maxIdle:    DefaultMaxIdle,
		drainLimit: DefaultDrainLimit,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyDriver(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Run drives sched from the calling goroutine, until ctx is cancelled,
// returning the context error. The scheduler (and its tasks and topics) must
// not be used from any other goroutine while Run is active. Tick errors
// (e.g. calling Run from within a task of sched) are returned immediately.
func Run(ctx context.Context, sched *scheduler.Scheduler, opts ...Option) error {
	if sched == nil {
		return ErrNilScheduler
	}
	cfg, err := resolveOptions(opts)
	if err != nil {
		return err
	}

	var samples <-chan timesync.Timestamped[int64]
	if cfg.reference != nil {
		samples = cfg.reference.Samples()
	}

	timer := time.NewTimer(cfg.maxIdle)
	defer timer.Stop()

	cfg.logger.Debug().
		Int(`tasks`, sched.Len()).
		Dur(`max_idle`, cfg.maxIdle).
		Log(`driver: started`)

	var ticks, idles uint64
	defer func() {
		cfg.logger.Debug().
			Uint64(`ticks`, ticks).
			Uint64(`idles`, idles).
			Log(`driver: stopped`)
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if cfg.reference != nil {
			cfg.reference.Drain(cfg.drainLimit)
		}

		if err := sched.Tick(); err != nil {
			return err
		}
		ticks++

		wait := cfg.maxIdle
		if next := sched.NextTaskRelease(); next != timebase.EndOfTime {
			if d := time.Duration(next - sched.Now()); d < wait {
				wait = d
			}
		}
		if wait <= 0 {
			continue
		}

		idles++
		timer.Reset(wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		case sample := <-samples:
			timer.Stop()
			cfg.reference.Deliver(sample)
		}
	}
}
