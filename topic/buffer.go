package topic

// Buffer is a subscriber that accumulates received items into a FIFO ring.
// When full, a Buffer either overwrites its oldest item, or drops the new
// one, see SetOverwrite. Drops are counted, see Dropped.
type Buffer[T any] struct {
	Subscriber[T]
	items     ring[T]
	dropped   uint64
	overwrite bool
}

// NewBuffer returns a Buffer with the given capacity (minimum 1), subscribed
// to topic if it is non-nil.
func NewBuffer[T any](topic *Topic[T], capacity int, overwrite bool) *Buffer[T] {
	x := &Buffer[T]{
		items:     newRing[T](capacity),
		overwrite: overwrite,
	}
	x.Init(x)
	x.Subscribe(topic)
	return x
}

func (x *Buffer[T]) Receive(item T, _ *Topic[T]) {
	if x.items.Full() {
		x.dropped++
		if !x.overwrite {
			return
		}
		x.items.Pop()
	}
	x.items.Push(item)
}

// SetOverwrite sets whether the oldest item is discarded to make room.
func (x *Buffer[T]) SetOverwrite(overwrite bool) { x.overwrite = overwrite }

// Len returns the number of buffered items.
func (x *Buffer[T]) Len() int { return x.items.Len() }

// Cap returns the capacity.
func (x *Buffer[T]) Cap() int { return x.items.Cap() }

// Pop removes and returns the oldest item.
func (x *Buffer[T]) Pop() (T, bool) { return x.items.Pop() }

// Get returns the i-th oldest item, panicking if i is out of range.
func (x *Buffer[T]) Get(i int) T { return x.items.Get(i) }

// Clear discards all buffered items.
func (x *Buffer[T]) Clear() { x.items.Clear() }

// Dropped returns the number of items discarded because the buffer was full,
// either the new item or (if overwriting) the oldest.
func (x *Buffer[T]) Dropped() uint64 { return x.dropped }
