package scheduler

import (
	"github.com/joeycumines/go-rtsched/timebase"
	"github.com/joeycumines/go-rtsched/topic"
)

// Event is a task that runs in response to items published on a topic.
// Receiving an item pulls the release forward to the time of receipt, with a
// window of slip. After running, the task parks (its release is set to
// timebase.EndOfTime) until the next item. Items received before the task
// runs are coalesced, the handler only sees the latest.
type Event[T any] struct {
	TaskBase
	sub       topic.Subscriber[T]
	handler   func(item T)
	latest    T
	slip      int64
	pending   bool
	coalesced uint64
}

// NewEvent returns an Event, subscribed to source, which will call handler
// within slip (ns) of each item. Negative slip is treated as 0.
func NewEvent[T any](name string, source *topic.Topic[T], slip int64, handler func(item T)) *Event[T] {
	if slip < 0 {
		slip = 0
	}
	x := &Event[T]{handler: handler, slip: slip}
	x.SetName(name)
	x.park()
	x.sub.Init(x)
	x.sub.Subscribe(source)
	return x
}

// Receive implements topic.Receiver.
func (x *Event[T]) Receive(item T, _ *topic.Topic[T]) {
	x.latest = item
	if x.pending {
		x.coalesced++
		return
	}
	x.pending = true
	now := x.Now()
	x.SetWindow(now, now+x.slip)
}

// Pending reports whether an item is waiting to be handled.
func (x *Event[T]) Pending() bool { return x.pending }

// Coalesced returns the number of items that were replaced by a later item,
// before being handled.
func (x *Event[T]) Coalesced() uint64 { return x.coalesced }

// Source returns the subscribed topic, or nil.
func (x *Event[T]) Source() *topic.Topic[T] { return x.sub.Topic() }

// Subscribe moves the task to a different topic, nil unsubscribes.
func (x *Event[T]) Subscribe(source *topic.Topic[T]) { x.sub.Subscribe(source) }

// Close unsubscribes from the topic, and detaches the task.
func (x *Event[T]) Close() {
	x.sub.Unsubscribe()
	x.Detach()
}

func (x *Event[T]) TaskThread() {
	item := x.latest
	x.pending = false
	x.park()
	if x.handler != nil {
		x.handler(item)
	}
}

func (x *Event[T]) park() {
	x.SetWindow(timebase.EndOfTime, timebase.EndOfTime)
}
