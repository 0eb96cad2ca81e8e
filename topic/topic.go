package topic

type (
	// Receiver is implemented by the consumer of a Subscriber.
	Receiver[T any] interface {
		// Receive is called by the Topic, for each published item. The from
		// param is the topic that published the item.
		Receive(item T, from *Topic[T])
	}

	// ReceiverFunc implements Receiver.
	ReceiverFunc[T any] func(item T, from *Topic[T])

	// Topic is a broadcast channel, for values of type T. The zero value is
	// ready to use. Topics never own their subscribers, use Close to detach
	// all members, before discarding a topic that may still have members.
	Topic[T any] struct {
		head    *Subscriber[T]
		tail    *Subscriber[T]
		cursors *cursor[T]
		size    int
	}

	// cursor tracks the next member to visit, for each in-progress publish,
	// so that removal during iteration can advance past the removed member.
	// Members appended after last (including re-subscribed ones) are not
	// visited by that publish.
	cursor[T any] struct {
		next  *Subscriber[T]
		last  *Subscriber[T]
		outer *cursor[T]
	}
)

func (x ReceiverFunc[T]) Receive(item T, from *Topic[T]) { x(item, from) }

// Publish broadcasts item to every enabled subscriber, in subscription order.
// Publishing to a topic without subscribers is a no-op.
func (x *Topic[T]) Publish(item T) {
	x.publish(item, nil)
}

func (x *Topic[T]) publish(item T, except *Subscriber[T]) {
	if x == nil || x.head == nil {
		return
	}

	c := cursor[T]{next: x.head, last: x.tail, outer: x.cursors}
	x.cursors = &c
	defer func() { x.cursors = c.outer }()

	for c.next != nil {
		s := c.next
		if s == c.last {
			c.next = nil
		} else {
			c.next = s.next
		}
		if s == except || s.disabled || s.receiver == nil {
			continue
		}
		s.receiver.Receive(item, x)
	}
}

// Len returns the number of subscribers, including disabled ones.
func (x *Topic[T]) Len() int {
	if x == nil {
		return 0
	}
	return x.size
}

// Subscribers returns a snapshot of the current members, in order.
func (x *Topic[T]) Subscribers() []*Subscriber[T] {
	if x == nil || x.size == 0 {
		return nil
	}
	out := make([]*Subscriber[T], 0, x.size)
	for s := x.head; s != nil; s = s.next {
		out = append(out, s)
	}
	return out
}

// Close force-unsubscribes every member, leaving the topic empty (and still
// usable).
func (x *Topic[T]) Close() {
	if x == nil {
		return
	}
	for x.head != nil {
		x.remove(x.head)
	}
}

func (x *Topic[T]) append(s *Subscriber[T]) {
	s.topic = x
	s.prev = x.tail
	s.next = nil
	if x.tail == nil {
		x.head = s
	} else {
		x.tail.next = s
	}
	x.tail = s
	x.size++
}

func (x *Topic[T]) remove(s *Subscriber[T]) {
	for c := x.cursors; c != nil; c = c.outer {
		if c.last == s {
			c.last = s.prev
			if c.next == s || c.last == nil {
				c.next = nil
			}
		} else if c.next == s {
			c.next = s.next
		}
	}
	if s.prev == nil {
		x.head = s.next
	} else {
		s.prev.next = s.next
	}
	if s.next == nil {
		x.tail = s.prev
	} else {
		s.next.prev = s.prev
	}
	s.prev = nil
	s.next = nil
	s.topic = nil
	x.size--
}
