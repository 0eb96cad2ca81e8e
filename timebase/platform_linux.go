//go:build linux

package timebase

import (
	"golang.org/x/sys/unix"
)

func platformNow() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		// CLOCK_MONOTONIC is mandatory on linux, this is not expected
		return fallbackNow()
	}
	return ts.Nano()
}
