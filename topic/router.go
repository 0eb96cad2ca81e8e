package topic

import (
	"golang.org/x/exp/slices"
)

// Router forwards every item published on its source topic to each of its
// target topics. Routes that form a cycle will recurse without bound.
type Router[T any] struct {
	sub     Subscriber[T]
	targets []*Topic[T]
}

// NewRouter returns a Router forwarding from source to targets.
func NewRouter[T any](source *Topic[T], targets ...*Topic[T]) *Router[T] {
	x := new(Router[T])
	x.sub.Init(x)
	for _, t := range targets {
		x.AddTarget(t)
	}
	x.sub.Subscribe(source)
	return x
}

func (x *Router[T]) Receive(item T, from *Topic[T]) {
	for _, t := range x.targets {
		if t != from {
			t.Publish(item)
		}
	}
}

// AddTarget adds a topic to forward to, ignoring nil and duplicates.
func (x *Router[T]) AddTarget(target *Topic[T]) {
	if target != nil && !slices.Contains(x.targets, target) {
		x.targets = append(x.targets, target)
	}
}

// RemoveTarget stops forwarding to target.
func (x *Router[T]) RemoveTarget(target *Topic[T]) {
	x.targets = slices.DeleteFunc(x.targets, func(t *Topic[T]) bool { return t == target })
}

// Source returns the topic being forwarded from, or nil after Close.
func (x *Router[T]) Source() *Topic[T] { return x.sub.Topic() }

// Close unsubscribes from the source topic.
func (x *Router[T]) Close() { x.sub.Unsubscribe() }
