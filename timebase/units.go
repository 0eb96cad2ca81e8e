package timebase

import (
	"math"
)

// Time units, in nanoseconds.
const (
	Nanosecond  int64 = 1
	Microsecond       = 1000 * Nanosecond
	Millisecond       = 1000 * Microsecond
	Second            = 1000 * Millisecond
	Minute            = 60 * Second
	Hour              = 60 * Minute
	Day               = 24 * Hour
	Week              = 7 * Day
)

// EndOfTime is the largest representable time, used as "never".
const EndOfTime int64 = math.MaxInt64

// Seconds converts nanoseconds to (floating point) seconds.
func Seconds(ns int64) float64 {
	return float64(ns) / float64(Second)
}
