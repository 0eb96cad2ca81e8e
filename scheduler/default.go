package scheduler

import (
	"sync"
)

var (
	defaultOnce      sync.Once
	defaultScheduler *Scheduler
)

// Default returns the process-wide scheduler, constructing it on first use,
// with the platform clock and no logger. Like any other Scheduler, it must
// only be used from a single goroutine. Prefer explicitly constructed and
// passed instances, where practical.
func Default() *Scheduler {
	defaultOnce.Do(func() {
		var err error
		if defaultScheduler, err = New(); err != nil {
			panic(err)
		}
	})
	return defaultScheduler
}
