// Package timebase exposes the precise platform clock, as nanoseconds since
// boot, along with the time units and helpers shared by the scheduler, the
// topic bus and the time synchronisation layer.
//
// All times are int64 nanoseconds. The platform clock is monotonic, and is
// cheap enough to be read on every scheduler tick.
package timebase
