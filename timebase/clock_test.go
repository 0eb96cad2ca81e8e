package timebase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNow_monotonic(t *testing.T) {
	prev := Now()
	for i := 0; i < 1000; i++ {
		now := Now()
		if now < prev {
			t.Fatalf("clock went backwards: %d < %d", now, prev)
		}
		prev = now
	}
}

func TestPlatform_matchesNow(t *testing.T) {
	a := Now()
	b := Platform.Now()
	c := Now()
	assert.LessOrEqual(t, a, b)
	assert.LessOrEqual(t, b, c)
}

func TestManualClock(t *testing.T) {
	var c ManualClock
	assert.Equal(t, int64(0), c.Now())
	assert.Equal(t, 5*Millisecond, c.Advance(5*Millisecond))
	c.Set(Second)
	assert.Equal(t, Second, c.Now())
	assert.Equal(t, int64(42), NewManualClock(42).Now())
}

func TestClockFunc(t *testing.T) {
	var n int64
	c := ClockFunc(func() int64 {
		n++
		return n
	})
	assert.Equal(t, int64(1), c.Now())
	assert.Equal(t, int64(2), c.Now())
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, 1.5, Seconds(1500*Millisecond))
	assert.Equal(t, 0.0, Seconds(0))
}

func TestUnits(t *testing.T) {
	assert.Equal(t, int64(1_000_000_000), Second)
	assert.Equal(t, int64(604_800_000_000_000), Week)
}
