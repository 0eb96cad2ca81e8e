package scheduler

// threadRef adapts a Thread into the capabilities of a task wrapper,
// forwarding the optional ones the thread implements.
type threadRef struct {
	thread Thread
}

func (x *threadRef) TaskThread() {
	if x.thread != nil {
		x.thread.TaskThread()
	}
}

func (x *threadRef) TaskInit() {
	if v, ok := x.thread.(Initer); ok {
		v.TaskInit()
	}
}

func (x *threadRef) TaskCheck() {
	if v, ok := x.thread.(Checker); ok {
		v.TaskCheck()
	}
}

// Thread returns the wrapped thread.
func (x *threadRef) Thread() Thread { return x.thread }

// SetThread replaces the wrapped thread.
func (x *threadRef) SetThread(thread Thread) { x.thread = thread }
