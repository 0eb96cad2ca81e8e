package scheduler

import (
	"github.com/joeycumines/go-rtsched/timebase"
)

// DefaultSlip is the window width of a Periodic, unless set by WithSlip.
const DefaultSlip = timebase.Millisecond

type (
	// Periodic is a task that runs its thread at a fixed interval. Each run
	// is given a window of [release, release+slip].
	//
	// Periodic may be used directly (see NewPeriodic), or embedded by value,
	// in which case Init must be called before attaching it.
	Periodic struct {
		TaskBase
		threadRef
		interval    int64
		start       int64
		slip        int64
		started     bool
		skipOverdue bool
	}

	// PeriodicOption configures a Periodic.
	PeriodicOption interface {
		applyPeriodic(*Periodic)
	}

	periodicOptionImpl struct {
		applyPeriodicFunc func(*Periodic)
	}
)

func (o *periodicOptionImpl) applyPeriodic(x *Periodic) { o.applyPeriodicFunc(x) }

// WithStart sets the time of the first run, which is also the phase of all
// subsequent runs. By default, the first run happens as soon as possible,
// and the phase is taken from it.
func WithStart(start int64) PeriodicOption {
	return &periodicOptionImpl{func(x *Periodic) {
		x.start = start
		x.started = true
	}}
}

// WithSlip sets how late (ns) each run may be, defaulting to DefaultSlip.
// Negative values are treated as 0.
func WithSlip(slip int64) PeriodicOption {
	return &periodicOptionImpl{func(x *Periodic) {
		x.SetSlip(slip)
	}}
}

// WithSkipOverdue sets whether missed runs are collapsed into one (the
// default), or are run back to back until caught up.
func WithSkipOverdue(skip bool) PeriodicOption {
	return &periodicOptionImpl{func(x *Periodic) {
		x.skipOverdue = skip
	}}
}

// WithPriority sets the static priority of the task.
func WithPriority(priority uint16) PeriodicOption {
	return &periodicOptionImpl{func(x *Periodic) {
		x.SetPriority(priority)
	}}
}

// NewPeriodic returns a Periodic running thread every interval (ns). An
// interval <= 0 is treated as 1.
func NewPeriodic(name string, thread Thread, interval int64, opts ...PeriodicOption) *Periodic {
	x := new(Periodic)
	x.Init(name, thread, interval, opts...)
	return x
}

// Init (re)configures x, see NewPeriodic. It must not be called while x is
// running.
func (x *Periodic) Init(name string, thread Thread, interval int64, opts ...PeriodicOption) {
	x.SetName(name)
	x.thread = thread
	x.SetInterval(interval)
	x.start = 0
	x.started = false
	x.slip = DefaultSlip
	x.skipOverdue = true
	for _, opt := range opts {
		if opt != nil {
			opt.applyPeriodic(x)
		}
	}
	x.SetWindow(x.start, x.start+x.slip)
}

// Interval returns the period, in nanoseconds.
func (x *Periodic) Interval() int64 { return x.interval }

// SetInterval sets the period, taking effect when the next run is planned.
// An interval <= 0 is treated as 1.
func (x *Periodic) SetInterval(interval int64) {
	if interval <= 0 {
		interval = 1
	}
	x.interval = interval
}

// Slip returns the window width, in nanoseconds.
func (x *Periodic) Slip() int64 { return x.slip }

// SetSlip sets the window width, taking effect when the next run is
// planned. Negative values are treated as 0.
func (x *Periodic) SetSlip(slip int64) {
	if slip < 0 {
		slip = 0
	}
	x.slip = slip
}

// SkipOverdue reports whether missed runs are collapsed.
func (x *Periodic) SkipOverdue() bool { return x.skipOverdue }

// SetSkipOverdue sets whether missed runs are collapsed.
func (x *Periodic) SetSkipOverdue(skip bool) { x.skipOverdue = skip }

// Start returns the phase of the task, which is only valid after the first
// run, unless configured by WithStart.
func (x *Periodic) Start() int64 { return x.start }

// TaskRun plans the next window, then runs the thread.
func (x *Periodic) TaskRun() {
	now := x.Now()
	var next int64
	switch {
	case !x.started:
		x.start = now
		x.started = true
		next = now + x.interval
	case x.skipOverdue:
		if now < x.start {
			next = x.start
		} else {
			next = x.start + ((now-x.start)/x.interval+1)*x.interval
		}
	default:
		next = x.Release() + x.interval
	}
	x.SetWindow(next, next+x.slip)
	x.TaskThread()
}
