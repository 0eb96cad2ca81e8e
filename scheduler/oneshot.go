package scheduler

// OneShot is a task that runs its thread once, at (or after) a given time,
// then pauses itself, until rescheduled.
type OneShot struct {
	TaskBase
	threadRef
}

// NewOneShot returns a OneShot that will run thread at time at.
func NewOneShot(name string, thread Thread, at int64) *OneShot {
	x := &OneShot{threadRef: threadRef{thread: thread}}
	x.SetName(name)
	x.SetWindow(at, at)
	return x
}

// Schedule (re)arms the task to run at time at.
func (x *OneShot) Schedule(at int64) {
	x.SetWindow(at, at)
	x.SetPaused(false)
}

// Done reports whether the task has run, and not been rescheduled.
func (x *OneShot) Done() bool { return x.Paused() && x.Runs() != 0 }

func (x *OneShot) TaskRun() {
	x.SetPaused(true)
	x.TaskThread()
}
