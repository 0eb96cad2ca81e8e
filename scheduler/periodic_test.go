package scheduler

import (
	"testing"

	"github.com/joeycumines/go-rtsched/timebase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodic_skipOverdue(t *testing.T) {
	for _, tc := range [...]struct {
		name     string
		skip     bool
		catchUps int
		release  int64
	}{
		{name: "skip", skip: true, catchUps: 1, release: 400 * timebase.Millisecond},
		{name: "queue", skip: false, catchUps: 3, release: 400 * timebase.Millisecond},
	} {
		t.Run(tc.name, func(t *testing.T) {
			clock := timebase.NewManualClock(0)
			s := newTestScheduler(t, clock)
			var runs int
			p := NewPeriodic("p", ThreadFunc(func() { runs++ }), 100*timebase.Millisecond,
				WithStart(0),
				WithSkipOverdue(tc.skip),
			)
			require.NoError(t, s.AddTask(p))

			mustTick(t, s, 1)
			require.Equal(t, 1, runs)
			assert.Equal(t, 100*timebase.Millisecond, p.Release())

			// three boundaries (100, 200, 300) are missed
			clock.Set(350 * timebase.Millisecond)
			mustTick(t, s, 10)

			assert.Equal(t, tc.catchUps, runs-1)
			assert.Equal(t, tc.release, p.Release())
			assert.Equal(t, tc.release+DefaultSlip, p.Deadline())
		})
	}
}

func TestPeriodic_defaults(t *testing.T) {
	clock := timebase.NewManualClock(1234)
	s := newTestScheduler(t, clock)
	var runs int
	p := NewPeriodic("p", ThreadFunc(func() { runs++ }), 0)
	assert.Equal(t, int64(1), p.Interval())
	assert.Equal(t, DefaultSlip, p.Slip())
	assert.True(t, p.SkipOverdue())
	assert.Equal(t, int64(0), p.Release())
	assert.Equal(t, DefaultSlip, p.Deadline())
	assert.Equal(t, "p", p.Name())

	p.SetInterval(10)
	require.NoError(t, s.AddTask(p))
	mustTick(t, s, 1)

	// the phase comes from the first run
	assert.Equal(t, 1, runs)
	assert.Equal(t, int64(1234), p.Start())
	assert.Equal(t, int64(1244), p.Release())

	clock.Set(1275)
	mustTick(t, s, 1)
	assert.Equal(t, int64(1284), p.Release())
}

func TestPeriodic_options(t *testing.T) {
	p := NewPeriodic("p", nil, 50,
		nil,
		WithStart(1000),
		WithSlip(-5),
		WithPriority(7),
	)
	assert.Equal(t, int64(0), p.Slip())
	assert.Equal(t, uint16(7), p.Priority())
	assert.Equal(t, int64(1000), p.Release())
	assert.Equal(t, int64(1000), p.Deadline())
	assert.Equal(t, int64(1000), p.Start())

	p.SetSlip(20)
	p.SetSkipOverdue(false)
	assert.False(t, p.SkipOverdue())

	clock := timebase.NewManualClock(1010)
	s := newTestScheduler(t, clock)
	require.NoError(t, s.AddTask(p))
	mustTick(t, s, 1)
	assert.Equal(t, uint64(1), p.Runs())
	assert.Equal(t, int64(1050), p.Release())
	assert.Equal(t, int64(1070), p.Deadline())
}

func TestPeriodic_skipBeforeStart(t *testing.T) {
	p := NewPeriodic("p", nil, 100, WithStart(1000))
	clock := timebase.NewManualClock(0)
	s := newTestScheduler(t, clock)
	require.NoError(t, s.AddTask(p))

	// forced early, e.g. by moving the release
	p.SetRelease(0)
	mustTick(t, s, 1)
	assert.Equal(t, int64(1000), p.Release())
}

type periodicThread struct {
	inits, checks, runs int
}

func (x *periodicThread) TaskInit()   { x.inits++ }
func (x *periodicThread) TaskCheck()  { x.checks++ }
func (x *periodicThread) TaskThread() { x.runs++ }

func TestPeriodic_forwardsCapabilities(t *testing.T) {
	clock := timebase.NewManualClock(0)
	s := newTestScheduler(t, clock)
	thread := new(periodicThread)
	p := NewPeriodic("p", thread, 10, WithStart(0))
	require.NoError(t, s.AddTask(p))
	assert.Same(t, thread, p.Thread())

	for i := 0; i < 5; i++ {
		clock.Set(int64(i) * 10)
		mustTick(t, s, 1)
	}
	assert.Equal(t, 1, thread.inits)
	assert.Equal(t, 5, thread.checks)
	assert.Equal(t, 5, thread.runs)

	p.SetThread(nil)
	clock.Set(50)
	mustTick(t, s, 1)
	assert.Equal(t, 5, thread.runs)
	assert.Equal(t, uint64(6), p.Runs())
}

type blinker struct {
	Periodic
	on      bool
	toggles int
}

func newBlinker(period int64) *blinker {
	x := new(blinker)
	x.Init("blinker", ThreadFunc(x.toggle), period, WithStart(0), WithPriority(1))
	return x
}

func (x *blinker) toggle() {
	x.on = !x.on
	x.toggles++
}

func TestPeriodic_embedded(t *testing.T) {
	clock := timebase.NewManualClock(0)
	s := newTestScheduler(t, clock)
	b := newBlinker(500 * timebase.Millisecond)
	require.NoError(t, s.AddTask(b))

	for now := int64(0); now <= 2*timebase.Second; now += 10 * timebase.Millisecond {
		clock.Set(now)
		mustTick(t, s, 1)
	}
	assert.Equal(t, 5, b.toggles)
	assert.True(t, b.on)
	assert.Same(t, s, b.Scheduler())
}
