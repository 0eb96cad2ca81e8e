package scheduler

import (
	"bytes"
	"testing"

	"github.com/joeycumines/go-rtsched/timebase"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"github.com/stretchr/testify/require"
)

type testTask struct {
	TaskBase
	runs    int
	onRun   func()
	onCheck func()
	checks  int
}

func newTestTask(name string, release, deadline int64, priority uint16) *testTask {
	x := new(testTask)
	x.SetName(name)
	x.SetWindow(release, deadline)
	x.SetPriority(priority)
	return x
}

func (x *testTask) TaskThread() {
	x.runs++
	if x.onRun != nil {
		x.onRun()
	}
}

func (x *testTask) TaskCheck() {
	x.checks++
	if x.onCheck != nil {
		x.onCheck()
	}
}

func newTestScheduler(t *testing.T, clock timebase.Clock, opts ...Option) *Scheduler {
	t.Helper()
	s, err := New(append([]Option{WithClock(clock)}, opts...)...)
	require.NoError(t, err)
	return s
}

func newTestLogger(buf *bytes.Buffer) *logiface.Logger[logiface.Event] {
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(buf), stumpy.WithTimeField(``)),
		stumpy.L.WithLevel(logiface.LevelDebug),
	).Logger()
}

func mustTick(t *testing.T, s *Scheduler, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, s.Tick())
	}
}
