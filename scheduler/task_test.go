package scheduler

import (
	"math/rand"
	"testing"

	"github.com/joeycumines/go-rtsched/timebase"
	"github.com/stretchr/testify/assert"
)

func TestTaskBase_windowInvariant(t *testing.T) {
	var b TaskBase
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10000; i++ {
		v := rng.Int63n(2000) - 1000
		switch rng.Intn(3) {
		case 0:
			b.SetRelease(v)
			assert.Equal(t, v, b.Release())
		case 1:
			b.SetDeadline(v)
			assert.Equal(t, v, b.Deadline())
		default:
			b.SetWindow(v, v+rng.Int63n(200)-100)
			assert.Equal(t, v, b.Release())
		}
		if !assert.GreaterOrEqual(t, b.Deadline(), b.Release()) {
			return
		}
	}
}

func TestTaskBase_clamping(t *testing.T) {
	var b TaskBase
	b.SetWindow(100, 200)

	b.SetRelease(300)
	assert.Equal(t, int64(300), b.Release())
	assert.Equal(t, int64(300), b.Deadline())

	b.SetDeadline(50)
	assert.Equal(t, int64(50), b.Release())
	assert.Equal(t, int64(50), b.Deadline())

	b.SetDeadline(80)
	assert.Equal(t, int64(50), b.Release())
	assert.Equal(t, int64(80), b.Deadline())

	b.SetWindow(10, 5)
	assert.Equal(t, int64(10), b.Release())
	assert.Equal(t, int64(10), b.Deadline())
}

func TestTaskBase_accessors(t *testing.T) {
	var b TaskBase
	assert.False(t, b.Paused())
	assert.False(t, b.Initialised())
	assert.False(t, b.Attached())
	assert.Nil(t, b.Scheduler())
	assert.False(t, b.Detach())

	b.SetName("x")
	b.SetPriority(9)
	b.SetPaused(true)
	b.SetInitialised(true)
	assert.Equal(t, "x", b.Name())
	assert.Equal(t, uint16(9), b.Priority())
	assert.True(t, b.Paused())
	assert.True(t, b.Initialised())

	before := timebase.Now()
	assert.GreaterOrEqual(t, b.Now(), before)
}

func TestThreadFunc(t *testing.T) {
	var n int
	ThreadFunc(func() { n++ }).TaskThread()
	ThreadFunc(nil).TaskThread()
	assert.Equal(t, 1, n)
}

func TestPseudoPriority(t *testing.T) {
	b := &TaskBase{}

	// zero width window is clamped to a denominator of 1
	assert.Equal(t, 0.0, pseudoPriority(b, 0))
	b.SetPriority(3)
	b.misses = 2
	assert.Equal(t, 5000.0, pseudoPriority(b, 0))
	assert.Equal(t, 5250.0, pseudoPriority(b, 250))

	// wide windows and expensive tasks rank lower, without truncation
	b.SetWindow(0, 10000)
	b.avgRuntime = 10000
	assert.InDelta(t, 0.25, pseudoPriority(b, 0), 1e-12)

	// an unbounded deadline must not overflow
	b.SetWindow(0, timebase.EndOfTime)
	assert.Greater(t, pseudoPriority(b, 1), 0.0)
	assert.Less(t, pseudoPriority(b, 1), 1e-10)
}
