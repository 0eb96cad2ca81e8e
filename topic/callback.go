package topic

// Callback is a subscriber that passes received items to a function.
type Callback[T any] struct {
	Subscriber[T]
	fn func(item T)
}

// NewCallback returns a Callback, subscribed to topic if it is non-nil.
func NewCallback[T any](topic *Topic[T], fn func(item T)) *Callback[T] {
	x := &Callback[T]{fn: fn}
	x.Init(x)
	x.Subscribe(topic)
	return x
}

func (x *Callback[T]) Receive(item T, _ *Topic[T]) {
	if x.fn != nil {
		x.fn(item)
	}
}

// SetFunc replaces the function, nil disables dispatch.
func (x *Callback[T]) SetFunc(fn func(item T)) { x.fn = fn }
