package scheduler

// Func is a task that calls a function, whenever it is eligible. The function
// is responsible for moving the window (or pausing the task), otherwise it
// will be eligible every tick.
type Func struct {
	TaskBase
	fn func(task *Func)
}

// NewFunc returns a Func with the window [release, deadline].
func NewFunc(name string, release, deadline int64, fn func(task *Func)) *Func {
	x := &Func{fn: fn}
	x.SetName(name)
	x.SetWindow(release, deadline)
	return x
}

func (x *Func) TaskThread() {
	if x.fn != nil {
		x.fn(x)
	}
}

// SetFunc replaces the function.
func (x *Func) SetFunc(fn func(task *Func)) { x.fn = fn }
