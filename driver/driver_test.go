package driver

import (
	"context"
	"testing"
	"time"

	"github.com/joeycumines/go-rtsched/scheduler"
	"github.com/joeycumines/go-rtsched/timebase"
	"github.com/joeycumines/go-rtsched/timesync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runAsync(ctx context.Context, sched *scheduler.Scheduler, opts ...Option) <-chan error {
	out := make(chan error, 1)
	go func() { out <- Run(ctx, sched, opts...) }()
	return out
}

func waitFor(t *testing.T, errs <-chan error) error {
	t.Helper()
	select {
	case err := <-errs:
		return err
	case <-time.After(10 * time.Second):
		t.Fatal("driver did not stop")
		return nil
	}
}

func TestRun_nilScheduler(t *testing.T) {
	assert.ErrorIs(t, Run(context.Background(), nil), ErrNilScheduler)
}

func TestRun_invalidOptions(t *testing.T) {
	sched, err := scheduler.New()
	require.NoError(t, err)
	assert.ErrorIs(t, Run(context.Background(), sched, nil, WithMaxIdle(0)), ErrInvalidMaxIdle)
}

func TestRun_cancelled(t *testing.T) {
	sched, err := scheduler.New()
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Run(ctx, sched), context.Canceled)
}

func TestRun_periodic(t *testing.T) {
	sched, err := scheduler.New()
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs int
	var stamps []int64
	p := scheduler.NewPeriodic("p", nil, 2*timebase.Millisecond)
	p.SetThread(scheduler.ThreadFunc(func() {
		runs++
		stamps = append(stamps, p.Now())
		if runs == 5 {
			cancel()
		}
	}))
	require.NoError(t, sched.AddTask(p))

	err = waitFor(t, runAsync(ctx, sched, WithMaxIdle(time.Second)))
	assert.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 5, runs)
	for i := 1; i < len(stamps); i++ {
		assert.GreaterOrEqual(t, stamps[i]-stamps[0], int64(i)*2*timebase.Millisecond)
	}
}

func TestRun_wakesOnReferenceSample(t *testing.T) {
	sched, err := scheduler.New()
	require.NoError(t, err)
	ref := timesync.NewReference(nil, 0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got []timesync.Timestamped[int64]
	e := scheduler.NewEvent("ref", ref.TimeTopic(), 0, func(item timesync.Timestamped[int64]) {
		got = append(got, item)
		cancel()
	})
	require.NoError(t, sched.AddTask(e))

	errs := runAsync(ctx, sched, WithReference(ref), WithMaxIdle(time.Hour))
	time.Sleep(20 * time.Millisecond)
	require.True(t, ref.Submit(timesync.Stamp[int64](7, 3)))

	start := time.Now()
	assert.ErrorIs(t, waitFor(t, errs), context.Canceled)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, []timesync.Timestamped[int64]{timesync.Stamp[int64](7, 3)}, got)
	last, ok := ref.Last()
	assert.True(t, ok)
	assert.Equal(t, int64(7), last.Value)
}

func TestRun_drainsQueuedSamples(t *testing.T) {
	sched, err := scheduler.New()
	require.NoError(t, err)
	ref := timesync.NewReference(nil, 8)
	buf := make([]int64, 0, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for i := int64(0); i < 5; i++ {
		require.True(t, ref.Submit(timesync.Stamp(i, i)))
	}
	cb := func(item timesync.Timestamped[int64]) {
		buf = append(buf, item.Value)
		cancel()
	}
	e := scheduler.NewEvent("collect", ref.TimeTopic(), 0, cb)
	require.NoError(t, sched.AddTask(e))

	assert.ErrorIs(t, waitFor(t, runAsync(ctx, sched, WithReference(ref), WithDrainLimit(0))), context.Canceled)

	last, ok := ref.Last()
	require.True(t, ok)
	assert.Equal(t, int64(4), last.Value)
	assert.Equal(t, []int64{4}, buf, "the event coalesces the burst")
}

func TestRun_reentrant(t *testing.T) {
	sched, err := scheduler.New()
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var nested error
	o := scheduler.NewOneShot("nested", scheduler.ThreadFunc(func() {
		nested = Run(ctx, sched)
		cancel()
	}), 0)
	require.NoError(t, sched.AddTask(o))

	assert.ErrorIs(t, waitFor(t, runAsync(ctx, sched)), context.Canceled)
	assert.ErrorIs(t, nested, scheduler.ErrReentrantTick)
}
