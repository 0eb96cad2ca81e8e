// Package timesync provides a corrected time base, for tasks that must agree
// with an external reference clock (GNSS, a host link, a radio beacon).
//
// A [ClockSource] publishes [Timestamped] readings of some reference counter,
// each stamped with the precise platform time at which it was taken. A
// [TimeSource] subscribes to a clock source, and gradually slews its own
// output towards the reference, by adjusting the rate at which it advances
// relative to the precise clock. The corrected time is continuous and never
// moves backwards, except via an explicit [TimeSource.ForceCorrect].
//
// Like the topic package, nothing here is safe for concurrent use, with the
// exception of [Reference.Submit], which hands samples from another goroutine
// to the owning context.
package timesync
