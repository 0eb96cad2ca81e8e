//go:build !linux

package timebase

func platformNow() int64 {
	return fallbackNow()
}
