// Package queue provides the per-destination delivery queue: an unbounded
// multi-producer/single-consumer FIFO with a distinguished close signal.
//
// Producers never block and never drop; backlog trimming is a consumer-side
// policy applied by the delivery worker, not by the queue itself.
package queue

import (
	"sync"
	"sync/atomic"
)

// Queue is an unbounded FIFO of items of type T. Push never blocks; Pop
// blocks until an item is available or the queue is closed.
type Queue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []T
	closed bool

	pushed atomic.Int64
	popped atomic.Int64
}

// New creates an empty queue
func New[T any]() *Queue[T] {
	q := &Queue[T]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends an item. Pushes after Close are discarded.
func (q *Queue[T]) Push(item T) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.items = append(q.items, item)
	q.pushed.Add(1)
	q.cond.Signal()
}

// Pop removes and returns the oldest item, blocking until one is available.
// The close signal is in-band: items pushed before Close are still handed
// out, and ok=false only once the queue is drained. A consumer blocked on
// an empty queue wakes immediately on Close.
func (q *Queue[T]) Pop() (item T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		var zero T
		return zero, false
	}

	item = q.items[0]
	q.items = q.items[1:]
	q.popped.Add(1)
	return item, true
}

// Len returns the number of queued items
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close puts the close signal at the tail of the queue. Items already
// queued drain first; later pushes are discarded.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.cond.Broadcast()
}

// Closed reports whether Close has been called
func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Stats returns lifetime push/pop counts
func (q *Queue[T]) Stats() (pushed, popped int64) {
	return q.pushed.Load(), q.popped.Load()
}
