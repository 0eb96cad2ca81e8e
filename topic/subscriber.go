package topic

// Subscriber is a member of at most one Topic. It is intended to be embedded
// (by value) in a longer-lived object, which calls Init with itself as the
// Receiver. The zero value is enabled, but drops items until a receiver is
// set.
type Subscriber[T any] struct {
	receiver Receiver[T]
	topic    *Topic[T]
	prev     *Subscriber[T]
	next     *Subscriber[T]
	disabled bool
}

// NewSubscriber returns an (unsubscribed) Subscriber that dispatches to
// receiver.
func NewSubscriber[T any](receiver Receiver[T]) *Subscriber[T] {
	return &Subscriber[T]{receiver: receiver}
}

// Init sets the receiver, for subscribers embedded by value.
func (x *Subscriber[T]) Init(receiver Receiver[T]) {
	x.receiver = receiver
}

// Subscribe joins topic, after leaving any topic x was previously subscribed
// to. A nil topic just unsubscribes.
func (x *Subscriber[T]) Subscribe(topic *Topic[T]) {
	x.Unsubscribe()
	if topic != nil {
		topic.append(x)
	}
}

// Unsubscribe leaves the current topic, if any.
func (x *Subscriber[T]) Unsubscribe() {
	if x.topic != nil {
		x.topic.remove(x)
	}
}

// Topic returns the subscribed topic, or nil.
func (x *Subscriber[T]) Topic() *Topic[T] {
	return x.topic
}

// Subscribed reports whether x is a member of a topic.
func (x *Subscriber[T]) Subscribed() bool {
	return x.topic != nil
}

// ReceiveEnable toggles delivery, without changing membership. Disabled
// subscribers keep their position in the topic.
func (x *Subscriber[T]) ReceiveEnable(enabled bool) {
	x.disabled = !enabled
}

// ReceiveEnabled reports whether items are being delivered.
func (x *Subscriber[T]) ReceiveEnabled() bool {
	return !x.disabled
}

// Publish publishes item to the subscribed topic, without delivering it back
// to x. It is a no-op if x is not subscribed.
func (x *Subscriber[T]) Publish(item T) {
	if x.topic != nil {
		x.topic.publish(item, x)
	}
}
