package timesync

// Timestamped pairs a value with the precise platform time (ns) at which it
// was observed.
type Timestamped[T any] struct {
	Value     T
	Timestamp int64
}

// Stamp returns value timestamped at timestamp.
func Stamp[T any](value T, timestamp int64) Timestamped[T] {
	return Timestamped[T]{Value: value, Timestamp: timestamp}
}
