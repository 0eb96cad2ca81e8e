package scheduler

import (
	"errors"
)

var (
	// ErrNilTask is returned when attempting to attach a nil task.
	ErrNilTask = errors.New("scheduler: nil task")

	// ErrReentrantTick is returned by Tick, if called from within a task,
	// run by the same scheduler.
	ErrReentrantTick = errors.New("scheduler: tick called from within a task")

	// ErrInvalidRateWindow is returned by New for a WithRateWindow value <= 0.
	ErrInvalidRateWindow = errors.New("scheduler: rate window must be positive")

	// ErrInvalidStarvationThreshold is returned by New for a
	// WithStarvationThreshold value < 0.
	ErrInvalidStarvationThreshold = errors.New("scheduler: starvation threshold must not be negative")
)
