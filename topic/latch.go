package topic

// Latch is a subscriber that keeps only the most recently received item.
type Latch[T any] struct {
	Subscriber[T]
	item  T
	fresh bool
}

// NewLatch returns a Latch, subscribed to topic if it is non-nil.
func NewLatch[T any](topic *Topic[T]) *Latch[T] {
	x := new(Latch[T])
	x.Init(x)
	x.Subscribe(topic)
	return x
}

func (x *Latch[T]) Receive(item T, _ *Topic[T]) {
	x.item = item
	x.fresh = true
}

// IsNew reports whether an item has been received since the last call to
// Item.
func (x *Latch[T]) IsNew() bool { return x.fresh }

// Item returns the latest item, clearing the new flag.
func (x *Latch[T]) Item() T {
	x.fresh = false
	return x.item
}

// Peek returns the latest item, without clearing the new flag.
func (x *Latch[T]) Peek() T { return x.item }
