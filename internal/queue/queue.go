// Package queue implements the ordered pending-load queue consumed by the
// loader worker.
package queue

import "sync"

// Queue is a thread-safe ordered collection of pending items.
//
// Order is FIFO with one twist: an item whose resource is already resolvable
// locally may be enqueued at the head so cheap loads are served before slow
// first-time fetches. Enqueueing can also displace older pending items via a
// caller-supplied predicate, which is how per-target coalescing is expressed.
type Queue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []T // index 0 = head, the next item to dequeue
	closed bool
}

// New creates an empty open queue.
func New[T any]() *Queue[T] {
	q := &Queue[T]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue inserts item and wakes one blocked dequeuer.
//
// If supersedes is non-nil, every pending item it matches is removed first;
// the newest item for a target always wins. atFront inserts at the head,
// otherwise the item is appended. Enqueue after Close is a no-op.
func (q *Queue[T]) Enqueue(item T, atFront bool, supersedes func(T) bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	if supersedes != nil {
		kept := q.items[:0]
		for _, it := range q.items {
			if !supersedes(it) {
				kept = append(kept, it)
			}
		}
		// Zero the tail so displaced items don't linger in the backing array.
		for i := len(kept); i < len(q.items); i++ {
			var zero T
			q.items[i] = zero
		}
		q.items = kept
	}

	if atFront {
		q.items = append(q.items, item)
		copy(q.items[1:], q.items)
		q.items[0] = item
	} else {
		q.items = append(q.items, item)
	}

	q.cond.Signal()
}

// Dequeue removes and returns the head item, blocking while the queue is
// empty. It returns the zero value and false once the queue has been closed;
// items still pending at close time are discarded.
func (q *Queue[T]) Dequeue() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}

	if q.closed {
		var zero T
		return zero, false
	}

	item := q.items[0]
	var zero T
	q.items[0] = zero
	q.items = q.items[1:]
	return item, true
}

// RemoveAll discards every pending item matched by the predicate and returns
// how many were removed. Advisory: an item already dequeued is unaffected.
func (q *Queue[T]) RemoveAll(match func(T) bool) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.items[:0]
	removed := 0
	for _, it := range q.items {
		if match(it) {
			removed++
			continue
		}
		kept = append(kept, it)
	}
	for i := len(kept); i < len(q.items); i++ {
		var zero T
		q.items[i] = zero
	}
	q.items = kept
	return removed
}

// Len returns the number of pending items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close shuts the queue down: pending items are dropped, blocked dequeuers
// wake up with ok=false, and later Enqueue calls are ignored.
// Safe to call more than once.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.items = nil
	q.cond.Broadcast()
}
