package cli

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/joeycumines/go-rtsched/driver"
	"github.com/joeycumines/go-rtsched/internal/config"
	"github.com/joeycumines/go-rtsched/internal/statsstore"
	"github.com/joeycumines/go-rtsched/scheduler"
	"github.com/joeycumines/go-rtsched/timebase"
	"github.com/joeycumines/go-rtsched/timesync"
	"github.com/joeycumines/logiface"
)

type (
	// simulation is a plan, wired to a scheduler.
	simulation struct {
		plan   *config.Plan
		logger *logiface.Logger[logiface.Event]
		clock  timebase.Clock
		ref    *timesync.Reference
		ts     *timesync.TimeSource
		sched  *scheduler.Scheduler
		tasks  []*scheduler.Periodic
		store  *statsstore.Store
		runID  int64
		// recordErr is the first error from the stats task
		recordErr error
	}

	// simResult is the state of a simulation after it stopped.
	simResult struct {
		Stats       []scheduler.TaskStats
		Metrics     scheduler.Metrics
		Factor      float64
		Offset      int64
		Corrections uint64
		Steps       uint64
		Dropped     uint64
		RunID       int64
	}
)

func newSimulation(plan *config.Plan, logger *logiface.Logger[logiface.Event]) (*simulation, error) {
	x := &simulation{
		plan:   plan,
		logger: logger,
		clock:  timebase.Platform,
	}

	tsOpts := []timesync.Option{
		timesync.WithClock(x.clock),
		timesync.WithSlewPeriod(int64(plan.TimeSync.SlewPeriod)),
		timesync.WithStepThreshold(int64(plan.TimeSync.StepThreshold)),
		timesync.WithLogger(logger),
	}
	if plan.Reference.Enabled {
		x.ref = timesync.NewReference(x.clock, plan.Reference.Buffer)
		tsOpts = append(tsOpts, timesync.WithSource(x.ref, plan.TimeSync.CorrectionLimit))
	}
	ts, err := timesync.NewTimeSource(tsOpts...)
	if err != nil {
		return nil, err
	}
	x.ts = ts

	schedOpts := []scheduler.Option{
		scheduler.WithTimeSource(ts),
		scheduler.WithLogger(logger),
		scheduler.WithMetrics(plan.Scheduler.Metrics || plan.Stats.Path != ""),
		scheduler.WithRateWindow(int64(plan.Scheduler.RateWindow)),
	}
	if plan.Scheduler.StarvationThreshold != 0 {
		schedOpts = append(schedOpts, scheduler.WithStarvationThreshold(plan.Scheduler.StarvationThreshold))
	}
	sched, err := scheduler.New(schedOpts...)
	if err != nil {
		ts.Close()
		return nil, err
	}
	x.sched = sched

	now := sched.Now()
	for _, t := range plan.Tasks {
		opts := []scheduler.PeriodicOption{
			scheduler.WithSlip(int64(t.Slip)),
			scheduler.WithSkipOverdue(t.SkipOverdue == nil || *t.SkipOverdue),
			scheduler.WithPriority(t.Priority),
		}
		if t.Start != 0 {
			opts = append(opts, scheduler.WithStart(now+int64(t.Start)))
		}
		task := scheduler.NewPeriodic(t.Name, busyWork(x.clock, int64(t.Work)), int64(t.Interval), opts...)
		if err := sched.AddTask(task); err != nil {
			ts.Close()
			return nil, err
		}
		x.tasks = append(x.tasks, task)
	}

	return x, nil
}

// busyWork returns a thread that spins for work, on clock.
func busyWork(clock timebase.Clock, work int64) scheduler.ThreadFunc {
	return func() {
		if work <= 0 {
			return
		}
		for start := clock.Now(); clock.Now()-start < work; {
		}
	}
}

// openStore opens the stats store, and attaches the task that records to it.
func (x *simulation) openStore(ctx context.Context, name string) error {
	store, err := statsstore.Open(x.plan.Stats.Path, x.logger)
	if err != nil {
		return err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return err
	}
	runID, err := store.StartRun(ctx, name, time.Now())
	if err != nil {
		_ = store.Close()
		return err
	}
	x.store = store
	x.runID = runID

	recorder := scheduler.NewPeriodic(`stats`, scheduler.ThreadFunc(func() {
		if x.recordErr != nil {
			return
		}
		if err := store.Record(ctx, runID, x.sched.Now(), x.sched.Stats()); err != nil {
			x.recordErr = err
			x.logger.Err().
				Err(err).
				Log(`stats: record failed`)
		}
	}), int64(x.plan.Stats.Interval), scheduler.WithSlip(int64(x.plan.Stats.Interval)/2))
	return x.sched.AddTask(recorder)
}

// feedReference simulates the reference clock, until ctx is done. Each
// sample is observed at a random time up to the jitter before it is
// received.
func (x *simulation) feedReference(ctx context.Context) {
	cfg := x.plan.Reference
	epoch := x.clock.Now()
	at := func(precise int64) int64 {
		return precise + int64(cfg.Offset) + int64(float64(precise-epoch)*cfg.DriftPPM/1e6)
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	for {
		now := x.clock.Now()
		var lag int64
		if cfg.Jitter > 0 {
			lag = rand.Int64N(int64(cfg.Jitter))
		}
		// drops are counted by the reference
		x.ref.Submit(timesync.Stamp(at(now-lag), now))
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// run drives the simulation for the plan duration, or until ctx is done.
func (x *simulation) run(ctx context.Context) (*simResult, error) {
	defer x.ts.Close()

	ctx, cancel := context.WithTimeout(ctx, x.plan.Duration)
	defer cancel()

	opts := []driver.Option{
		driver.WithMaxIdle(x.plan.Driver.MaxIdle),
		driver.WithLogger(x.logger),
	}

	done := make(chan struct{})
	if x.ref != nil {
		opts = append(opts, driver.WithReference(x.ref))
		go func() {
			defer close(done)
			x.feedReference(ctx)
		}()
	} else {
		close(done)
	}

	x.logger.Info().
		Int(`tasks`, len(x.tasks)).
		Dur(`duration`, x.plan.Duration).
		Bool(`reference`, x.ref != nil).
		Log(`simulation: started`)

	err := driver.Run(ctx, x.sched, opts...)
	<-done
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}

	res := &simResult{
		Stats:       x.sched.Stats(),
		Metrics:     x.sched.Metrics(),
		Factor:      x.ts.Factor(),
		Offset:      x.ts.Offset(),
		Corrections: x.ts.Corrections(),
		Steps:       x.ts.Steps(),
		RunID:       x.runID,
	}
	if x.ref != nil {
		res.Dropped = x.ref.Dropped()
	}

	if x.store != nil {
		// the run context is done, finish with a fresh one
		finishCtx, finishCancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer finishCancel()
		if err := x.store.Record(finishCtx, x.runID, x.sched.Now(), res.Stats); err != nil {
			return nil, err
		}
		if err := x.store.FinishRun(finishCtx, x.runID, time.Now()); err != nil {
			return nil, err
		}
	}

	x.logger.Info().
		Uint64(`ticks`, res.Metrics.Ticks).
		Uint64(`corrections`, res.Corrections).
		Float64(`factor`, res.Factor).
		Log(`simulation: finished`)

	if x.recordErr != nil {
		return res, fmt.Errorf("stats: %w", x.recordErr)
	}
	return res, nil
}

// close releases the stats store, if open.
func (x *simulation) close() error {
	if x.store == nil {
		return nil
	}
	return x.store.Close()
}
