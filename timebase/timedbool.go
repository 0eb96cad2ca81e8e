package timebase

// TimedBool is true until its release time is reached, e.g. for timeouts and
// hold-offs that are polled from a cooperative task.
type TimedBool struct {
	clock   Clock
	release int64
}

// NewTimedBool returns a TimedBool that is true while clock reads before
// release. A nil clock uses Platform.
func NewTimedBool(clock Clock, release int64) *TimedBool {
	if clock == nil {
		clock = Platform
	}
	return &TimedBool{clock: clock, release: release}
}

// Value reports whether the release time is still in the future.
func (x *TimedBool) Value() bool {
	return x.clock.Now() < x.release
}

// Set replaces the release time.
func (x *TimedBool) Set(release int64) {
	x.release = release
}

// SetFor sets the release time to d nanoseconds from now.
func (x *TimedBool) SetFor(d int64) {
	x.release = x.clock.Now() + d
}

// Release returns the time after which Value is false.
func (x *TimedBool) Release() int64 {
	return x.release
}
