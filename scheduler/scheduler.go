package scheduler

import (
	"math"
	"reflect"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/go-rtsched/timebase"
	"github.com/joeycumines/go-rtsched/timesync"
	"github.com/joeycumines/logiface"
	"golang.org/x/exp/slices"
)

type (
	// Scheduler arbitrates between attached tasks, see the package docs. The
	// scheduler does not own its tasks: it holds a membership entry for each,
	// which is revoked when the task is detached.
	Scheduler struct {
		members             []*member
		timeSource          *timesync.TimeSource
		precise             timebase.Clock
		logger              *logiface.Logger[logiface.Event]
		starvationLimiter   *catrate.Limiter
		metrics             *Metrics
		rateWindow          int64
		starvationThreshold int32
		ticking             bool
		dirty               bool
	}

	// member is the membership of a task in a scheduler. A nil task
	// indicates a corrupt entry, which is evicted on the next tick.
	member struct {
		task    Task
		sched   *Scheduler
		runtime *runtimeStats
		removed bool
	}
)

// New constructs a Scheduler.
func New(opts ...Option) (*Scheduler, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	ts := cfg.timeSource
	if ts == nil {
		var tsOpts []timesync.Option
		if cfg.clock != nil {
			tsOpts = append(tsOpts, timesync.WithClock(cfg.clock))
		}
		if ts, err = timesync.NewTimeSource(tsOpts...); err != nil {
			return nil, err
		}
	}

	precise := cfg.clock
	if precise == nil {
		precise = ts.Clock()
	}

	x := &Scheduler{
		timeSource:          ts,
		precise:             precise,
		logger:              cfg.logger,
		rateWindow:          cfg.rateWindow,
		starvationThreshold: cfg.starvationThreshold,
	}
	if cfg.metrics {
		x.metrics = new(Metrics)
	}
	if x.starvationThreshold > 0 && x.logger != nil {
		x.starvationLimiter = catrate.NewLimiter(map[time.Duration]int{
			time.Second: 1,
			time.Minute: 10,
		})
	}
	return x, nil
}

// TimeSource returns the time source used for all timing decisions.
func (x *Scheduler) TimeSource() *timesync.TimeSource { return x.timeSource }

// Now returns the current (corrected) scheduler time.
func (x *Scheduler) Now() int64 { return x.timeSource.Now() }

// AddTask attaches task, detaching it from any other scheduler first.
// Attaching a task that is already attached to x is a no-op.
func (x *Scheduler) AddTask(task Task) error {
	if isNil(task) {
		return ErrNilTask
	}
	b := task.base()
	if b.member != nil {
		if b.member.sched == x {
			return nil
		}
		b.member.sched.detach(b.member)
	}
	m := &member{task: task, sched: x}
	if x.metrics != nil {
		m.runtime = newRuntimeStats()
	}
	b.member = m
	b.rateStart = x.Now()
	b.windowRuns = 0
	x.members = append(x.members, m)
	return nil
}

// RemoveTask detaches task, returning false if it was not attached to x.
func (x *Scheduler) RemoveTask(task Task) bool {
	if isNil(task) {
		return false
	}
	b := task.base()
	if b.member == nil || b.member.sched != x {
		return false
	}
	x.detach(b.member)
	return true
}

// Len returns the number of attached tasks.
func (x *Scheduler) Len() (n int) {
	for _, m := range x.members {
		if !m.removed {
			n++
		}
	}
	return
}

// Tasks returns the attached tasks, in attach order.
func (x *Scheduler) Tasks() []Task {
	tasks := make([]Task, 0, len(x.members))
	for _, m := range x.members {
		if !m.removed && m.task != nil {
			tasks = append(tasks, m.task)
		}
	}
	return tasks
}

// NextTaskRelease returns the earliest release time of any task that is
// not paused, or timebase.EndOfTime if there are none. Callers may idle
// until this time, then Tick.
func (x *Scheduler) NextTaskRelease() int64 {
	next := timebase.EndOfTime
	for _, m := range x.members {
		if m.removed || m.task == nil {
			continue
		}
		if b := m.task.base(); !b.paused && b.release < next {
			next = b.release
		}
	}
	return next
}

// Tick runs at most one task, see the package docs. It returns
// ErrReentrantTick (without doing anything) if called from a task being run
// by x, and otherwise always returns nil. Panics raised by tasks are not
// recovered.
func (x *Scheduler) Tick() error {
	if x.ticking {
		return ErrReentrantTick
	}
	x.ticking = true
	defer x.endTick()

	if x.metrics != nil {
		x.metrics.Ticks++
	}

	// members may detach (or be attached) during the check pass, those
	// attached are not checked until the next tick
	for i, n := 0, len(x.members); i < n; i++ {
		m := x.members[i]
		if m.removed {
			continue
		}
		if m.task == nil {
			x.evict(m)
			continue
		}
		if c, ok := m.task.(Checker); ok {
			c.TaskCheck()
		}
	}

	now := x.Now()

	var (
		selected *member
		best     float64
	)
	for _, m := range x.members {
		if m.removed || m.task == nil {
			continue
		}
		b := m.task.base()
		if b.paused || now < b.release {
			continue
		}
		if pp := pseudoPriority(b, now); selected == nil || pp > best {
			selected, best = m, pp
		}
		b.misses++
	}

	if selected == nil {
		if x.metrics != nil {
			x.metrics.IdleTicks++
		}
		return nil
	}

	if x.starvationThreshold > 0 {
		x.checkStarvation(selected)
	}

	x.run(selected)

	return nil
}

// Stats returns a snapshot of every attached task, in attach order.
func (x *Scheduler) Stats() []TaskStats {
	stats := make([]TaskStats, 0, len(x.members))
	for _, m := range x.members {
		if m.removed || m.task == nil {
			continue
		}
		b := m.task.base()
		s := TaskStats{
			Name:       b.name,
			Release:    b.release,
			Deadline:   b.deadline,
			AvgRuntime: b.avgRuntime,
			Runs:       b.runs,
			Rate:       b.rate,
			Misses:     b.misses,
			Priority:   b.priority,
			Paused:     b.paused,
		}
		m.runtime.fill(&s)
		stats = append(stats, s)
	}
	return stats
}

// Metrics returns a copy of the scheduler counters, which will be zero
// unless enabled by WithMetrics.
func (x *Scheduler) Metrics() Metrics {
	if x.metrics == nil {
		return Metrics{}
	}
	return *x.metrics
}

func (x *Scheduler) run(m *member) {
	task := m.task
	b := task.base()

	if !b.initialised {
		b.initialised = true
		if v, ok := task.(Initer); ok {
			v.TaskInit()
		}
	}

	start := x.precise.Now()
	if v, ok := task.(Runner); ok {
		v.TaskRun()
	} else {
		task.TaskThread()
	}
	elapsed := x.precise.Now() - start

	b.observeRun(x.Now(), elapsed, x.rateWindow)

	if m.runtime != nil {
		m.runtime.observe(elapsed)
	}
	if x.metrics != nil {
		x.metrics.Runs++
	}
}

func (x *Scheduler) checkStarvation(selected *member) {
	for _, m := range x.members {
		if m == selected || m.removed || m.task == nil {
			continue
		}
		b := m.task.base()
		if b.misses != x.starvationThreshold {
			continue
		}
		if x.metrics != nil {
			x.metrics.StarvationWarnings++
		}
		if x.starvationLimiter == nil {
			continue
		}
		if _, ok := x.starvationLimiter.Allow(b.name); ok {
			x.logger.Warning().
				Str(`task`, b.name).
				Int64(`misses`, int64(b.misses)).
				Uint64(`priority`, uint64(b.priority)).
				Int64(`release`, b.release).
				Int64(`avg_runtime_ns`, b.avgRuntime).
				Log(`scheduler: task starved`)
		}
	}
}

func (x *Scheduler) evict(m *member) {
	x.logger.Err().
		Int(`tasks`, len(x.members)).
		Log(`scheduler: evicting invalid task entry`)
	m.removed = true
	m.sched = nil
	x.dirty = true
	if x.metrics != nil {
		x.metrics.Evictions++
	}
}

func (x *Scheduler) detach(m *member) {
	if m.task != nil {
		if b := m.task.base(); b.member == m {
			b.member = nil
		}
	}
	m.removed = true
	m.sched = nil
	if x.ticking {
		x.dirty = true
		return
	}
	if i := slices.Index(x.members, m); i >= 0 {
		x.members = slices.Delete(x.members, i, i+1)
	}
}

func (x *Scheduler) endTick() {
	x.ticking = false
	if x.dirty {
		x.dirty = false
		x.members = slices.DeleteFunc(x.members, func(m *member) bool { return m.removed })
	}
}

// pseudoPriority ranks an eligible task, evaluated in floating point, so
// tasks with wide windows are still ordered.
func pseudoPriority(b *TaskBase, now int64) float64 {
	num := float64(now-b.release) + (float64(b.priority)+float64(b.misses))*float64(timebase.Microsecond)
	den := math.Max(1, float64(b.avgRuntime)+float64(b.deadline)-float64(b.release))
	return num / den
}

func isNil(task Task) bool {
	if task == nil {
		return true
	}
	v := reflect.ValueOf(task)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
