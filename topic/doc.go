// Package topic implements a zero-allocation publish/subscribe bus, for
// distributing sensor and event data within a single execution context.
//
// A [Topic] holds an intrusive list of [Subscriber] members. Each Subscriber
// belongs to at most one Topic at a time, and dispatches received items to its
// [Receiver]. Subscribing and unsubscribing are O(1), and never allocate.
//
// Neither type is safe for concurrent use. Publishing from another goroutine
// (or an interrupt-like context) requires the caller to serialise access, e.g.
// by marshalling the item into the owning goroutine first.
//
// Unsubscribing or subscribing from within a Receive callback is permitted,
// including removing the subscriber that is currently receiving, or any other
// member of the topic. Removed members are never delivered to after removal.
// Members that join during a publish may or may not receive the in-flight
// item.
//
// The standard subscriber behaviours are provided by [Latch] (latch the last
// value), [Buffer] (accumulate into a FIFO ring) and [Callback] (dispatch to a
// function). [Router] forwards items between topics.
package topic
