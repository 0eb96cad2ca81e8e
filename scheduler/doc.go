// Package scheduler implements a cooperative, single-core, deadline-aware
// task scheduler.
//
// Tasks are run to completion, one per call to [Scheduler.Tick]. Each tick,
// every attached task is given a chance to update its timing (via
// [Checker]), then the eligible task (not paused, release time reached) with
// the greatest pseudo-priority is run:
//
//	(now - release + (priority + misses) * 1000) / max(1, avgRuntime + deadline - release)
//
// Tasks that are overdue, cheap, tightly windowed, important, or have been
// passed over many times rank highest. Each tick a task is eligible but not
// selected increments its misses, so no eligible task is starved
// indefinitely.
//
// Scheduling is cooperative: nothing blocks, and nothing is preempted. The
// caller (see the driver package) is responsible for calling Tick often
// enough, and may idle until [Scheduler.NextTaskRelease]. A Scheduler, and
// every task attached to it, must only be used from a single goroutine.
//
// Concrete tasks embed [TaskBase], and implement [Task.TaskThread], plus
// any of the optional capabilities [Initer], [Runner] and [Checker]. The
// [Periodic], [OneShot], [Func] and [Event] types cover the common timing
// patterns.
package scheduler
