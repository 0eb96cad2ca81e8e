package scheduler

import (
	"github.com/joeycumines/go-rtsched/timebase"
)

type (
	// Task is a unit of work that may be attached to a Scheduler.
	// Implementations must embed TaskBase, which provides the timing state,
	// and the (unexported) method that completes this interface.
	Task interface {
		Thread
		base() *TaskBase
	}

	// Thread is the work of a task. TaskThread must return in bounded time,
	// and is expected to handle its own errors.
	Thread interface {
		TaskThread()
	}

	// ThreadFunc implements Thread.
	ThreadFunc func()

	// Initer may be implemented by a task that requires lazy initialisation.
	// TaskInit is called at most once, immediately before the first run. The
	// initialised flag is set before the call, so the task may clear it, to
	// be initialised again.
	Initer interface {
		TaskInit()
	}

	// Runner may be implemented by a task to wrap its thread, e.g. to replan
	// its timing. If not implemented, the scheduler calls TaskThread.
	Runner interface {
		TaskRun()
	}

	// Checker may be implemented by a task that needs to adjust its timing
	// outside the run path, e.g. to pull its release forward in response to
	// an event. TaskCheck is called for every attached task, every tick,
	// including paused tasks.
	Checker interface {
		TaskCheck()
	}

	// TaskBase holds the scheduling state of a task. It must be embedded (by
	// value) in each Task implementation. The zero value is a task released
	// at time 0, with a zero-width window, priority 0, that is not paused.
	//
	// The window invariant, deadline >= release, is maintained by clamping
	// whichever bound is set second.
	TaskBase struct {
		name        string
		member      *member
		release     int64
		deadline    int64
		avgRuntime  int64
		rateStart   int64
		runs        uint64
		windowRuns  uint64
		rate        float32
		misses      int32
		priority    uint16
		paused      bool
		initialised bool
	}
)

func (x ThreadFunc) TaskThread() {
	if x != nil {
		x()
	}
}

func (x *TaskBase) base() *TaskBase { return x }

// Name returns the diagnostic label of the task.
func (x *TaskBase) Name() string { return x.name }

// SetName sets the diagnostic label.
func (x *TaskBase) SetName(name string) { x.name = name }

// Release returns the earliest time the task may be run.
func (x *TaskBase) Release() int64 { return x.release }

// SetRelease sets the earliest time the task may be run, moving the deadline
// forward to match, if it would otherwise be earlier.
func (x *TaskBase) SetRelease(release int64) {
	x.release = release
	if x.deadline < release {
		x.deadline = release
	}
}

// Deadline returns the latest time the task should be run by.
func (x *TaskBase) Deadline() int64 { return x.deadline }

// SetDeadline sets the latest time the task should be run by, moving the
// release back to match, if it would otherwise be later.
func (x *TaskBase) SetDeadline(deadline int64) {
	x.deadline = deadline
	if x.release > deadline {
		x.release = deadline
	}
}

// SetWindow sets both the release and the deadline. If deadline is before
// release, it is clamped to release.
func (x *TaskBase) SetWindow(release, deadline int64) {
	if deadline < release {
		deadline = release
	}
	x.release = release
	x.deadline = deadline
}

// Priority returns the static priority.
func (x *TaskBase) Priority() uint16 { return x.priority }

// SetPriority sets the static priority. Each unit is worth the same as one
// microsecond of lateness, or one miss.
func (x *TaskBase) SetPriority(priority uint16) { x.priority = priority }

// Paused reports whether the task is excluded from selection.
func (x *TaskBase) Paused() bool { return x.paused }

// SetPaused excludes (or re-includes) the task from selection. Pausing does
// not interrupt a run in progress.
func (x *TaskBase) SetPaused(paused bool) { x.paused = paused }

// Initialised reports whether the task has been initialised.
func (x *TaskBase) Initialised() bool { return x.initialised }

// SetInitialised sets the initialised flag, clearing it causes TaskInit to
// be called again, before the next run.
func (x *TaskBase) SetInitialised(initialised bool) { x.initialised = initialised }

// Misses returns the number of consecutive ticks the task was eligible, but
// not selected.
func (x *TaskBase) Misses() int32 { return x.misses }

// AvgRuntime returns the smoothed run time of the task, in nanoseconds.
func (x *TaskBase) AvgRuntime() int64 { return x.avgRuntime }

// Rate returns the measured run frequency, in Hz, updated once per rate
// window (5 seconds, by default).
func (x *TaskBase) Rate() float32 { return x.rate }

// Runs returns the total number of times the task has been run.
func (x *TaskBase) Runs() uint64 { return x.runs }

// Scheduler returns the scheduler the task is attached to, or nil.
func (x *TaskBase) Scheduler() *Scheduler {
	if x.member == nil {
		return nil
	}
	return x.member.sched
}

// Attached reports whether the task is attached to a scheduler.
func (x *TaskBase) Attached() bool { return x.member != nil }

// Detach removes the task from its scheduler, returning false if it was not
// attached. Owners must detach a task before discarding it.
func (x *TaskBase) Detach() bool {
	if x.member == nil {
		return false
	}
	x.member.sched.detach(x.member)
	return true
}

// Now returns the time of the attached scheduler, or the platform clock if
// the task is not attached.
func (x *TaskBase) Now() int64 {
	if x.member != nil {
		return x.member.sched.Now()
	}
	return timebase.Now()
}

func (x *TaskBase) observeRun(now, elapsed, window int64) {
	x.avgRuntime = int64(float64(x.avgRuntime)*0.98 + float64(elapsed)*0.02)
	x.misses = 0
	x.runs++
	x.windowRuns++
	if d := now - x.rateStart; d >= window {
		x.rate = float32(float64(x.windowRuns) / timebase.Seconds(d))
		x.windowRuns = 0
		x.rateStart = now
	}
}
