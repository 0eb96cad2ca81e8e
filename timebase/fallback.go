package timebase

import (
	"time"
)

// fallbackAnchor is the reference point for platforms without a directly
// readable monotonic clock, time.Since uses the monotonic reading.
var fallbackAnchor = time.Now()

func fallbackNow() int64 {
	return int64(time.Since(fallbackAnchor))
}
