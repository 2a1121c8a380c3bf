// Package spsc implements a wait-free single-producer/single-consumer
// ring buffer used for the looper's cross-context queues: button
// commands, clock ticks and transport events flowing into the control
// loop, and display bitmap ids flowing out of it.
package spsc

import "sync/atomic"

// Ring is a fixed-capacity, power-of-two ring buffer over a POD-ish
// element type T. The producer only ever writes writeIdx, the consumer
// only ever writes readIdx; each side may freely read the other's index.
// One slot is always kept empty to distinguish full from empty without a
// separate count field.
type Ring[T any] struct {
	buf      []T
	mask     uint32
	writeIdx atomic.Uint32
	readIdx  atomic.Uint32
}

// New creates a Ring with the given capacity, which must be a power of
// two. The usable capacity is size-1, since one slot is sacrificed to
// disambiguate full from empty.
func New[T any](size int) *Ring[T] {
	if size <= 0 || size&(size-1) != 0 {
		panic("spsc: size must be a power of 2")
	}
	return &Ring[T]{
		buf:  make([]T, size),
		mask: uint32(size - 1),
	}
}

// Push stores item and reports whether it fit. Producer-only. Never
// blocks: on a full queue it drops the item and returns false, which is
// the policy the control plane relies on — dropping a queued item never
// corrupts engine state, it only risks a late visual update or a missed
// clock tick that EMA smoothing absorbs.
func (r *Ring[T]) Push(item T) bool {
	write := r.writeIdx.Load()
	next := write + 1
	if next&r.mask == r.readIdx.Load()&r.mask {
		return false
	}
	r.buf[write&r.mask] = item
	r.writeIdx.Store(next)
	return true
}

// Pop removes and returns the oldest item. Consumer-only. Returns the
// zero value and false if the ring is empty.
func (r *Ring[T]) Pop() (item T, ok bool) {
	read := r.readIdx.Load()
	if read == r.writeIdx.Load() {
		return item, false
	}
	item = r.buf[read&r.mask]
	r.readIdx.Store(read + 1)
	return item, true
}

// Size returns an advisory element count. The result may be stale by the
// time the caller uses it; it exists for debugging and monitoring, never
// for control flow.
func (r *Ring[T]) Size() int {
	return int((r.writeIdx.Load() - r.readIdx.Load()) & r.mask)
}

// Capacity returns the maximum number of elements the ring can hold.
func (r *Ring[T]) Capacity() int {
	return int(r.mask)
}
