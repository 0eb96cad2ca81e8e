package timebase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimedBool(t *testing.T) {
	clock := NewManualClock(0)
	b := NewTimedBool(clock, 10)
	assert.True(t, b.Value())
	clock.Set(9)
	assert.True(t, b.Value())
	clock.Set(10)
	assert.False(t, b.Value())

	b.SetFor(5)
	assert.Equal(t, int64(15), b.Release())
	assert.True(t, b.Value())

	b.Set(0)
	assert.False(t, b.Value())
}

func TestTimedBool_nilClock(t *testing.T) {
	b := NewTimedBool(nil, EndOfTime)
	assert.True(t, b.Value())
}
