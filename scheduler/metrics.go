package scheduler

type (
	// Metrics are the counters of a Scheduler, collected if enabled by
	// WithMetrics.
	Metrics struct {
		// Ticks is the number of calls to Tick, excluding re-entrant calls.
		Ticks uint64
		// IdleTicks is the number of ticks where no task was eligible.
		IdleTicks uint64
		// Runs is the number of tasks run.
		Runs uint64
		// Evictions is the number of invalid entries removed.
		Evictions uint64
		// StarvationWarnings is the number of times a task reached the
		// starvation threshold, including warnings that were rate limited.
		StarvationWarnings uint64
	}

	// TaskStats is a snapshot of the state of an attached task.
	TaskStats struct {
		Name       string
		Release    int64
		Deadline   int64
		AvgRuntime int64
		Runs       uint64
		Rate       float32
		Misses     int32
		Priority   uint16
		Paused     bool
		// RuntimeP50, RuntimeP99 and RuntimeMax are estimated run times (ns),
		// only populated if metrics are enabled.
		RuntimeP50 int64
		RuntimeP99 int64
		RuntimeMax int64
	}

	// runtimeStats tracks the run time distribution of one attachment.
	runtimeStats struct {
		p50 quantile
		p99 quantile
		max int64
	}
)

func newRuntimeStats() *runtimeStats {
	return &runtimeStats{
		p50: newQuantile(0.50),
		p99: newQuantile(0.99),
	}
}

func (x *runtimeStats) observe(elapsed int64) {
	v := float64(elapsed)
	x.p50.add(v)
	x.p99.add(v)
	if elapsed > x.max {
		x.max = elapsed
	}
}

func (x *runtimeStats) fill(stats *TaskStats) {
	if x == nil {
		return
	}
	stats.RuntimeP50 = int64(x.p50.value())
	stats.RuntimeP99 = int64(x.p99.value())
	stats.RuntimeMax = x.max
}
