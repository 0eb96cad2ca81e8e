package topic

// ring is a FIFO ring buffer, sized to a power of two, with a logical
// capacity that may be smaller than the backing slice.
type ring[E any] struct {
	s     []E
	r     uint
	w     uint
	limit int
}

func newRing[E any](capacity int) ring[E] {
	if capacity < 1 {
		capacity = 1
	}
	size := 1
	for size < capacity {
		size <<= 1
	}
	return ring[E]{s: make([]E, size), limit: capacity}
}

func (x *ring[E]) mask(val uint) uint {
	return val & (uint(len(x.s)) - 1)
}

func (x *ring[E]) Len() int { return int(x.w - x.r) }

func (x *ring[E]) Cap() int { return x.limit }

func (x *ring[E]) Full() bool { return x.Len() >= x.limit }

// Push appends v, returning false if the ring is full.
func (x *ring[E]) Push(v E) bool {
	if x.Full() {
		return false
	}
	x.s[x.mask(x.w)] = v
	x.w++
	return true
}

// Pop removes and returns the oldest value.
func (x *ring[E]) Pop() (v E, ok bool) {
	if x.r == x.w {
		return
	}
	i := x.mask(x.r)
	v, ok = x.s[i], true
	var zero E
	x.s[i] = zero
	x.r++
	return
}

// Get returns the i-th oldest value, i must be in [0, Len).
func (x *ring[E]) Get(i int) E {
	if i < 0 || i >= x.Len() {
		panic(`topic: ring index out of range`)
	}
	return x.s[x.mask(x.r+uint(i))]
}

func (x *ring[E]) Clear() {
	for x.r != x.w {
		x.Pop()
	}
}
