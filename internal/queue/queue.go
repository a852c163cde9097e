// Package queue provides a small generic FIFO. The fuel-zone builder uses
// it as its traversal worklist and the handlers use it to stage export
// jobs, so it is safe for concurrent use.
package queue

import (
	"sync"
)

// Queue is a generic thread-safe FIFO.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
}

// New creates a new empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{
		items: make([]T, 0),
	}
}

// Push appends items to the queue.
func (q *Queue[T]) Push(items ...T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, items...)
}

// Pop removes and returns the first item. Returns the zero value if the
// queue is empty.
func (q *Queue[T]) Pop() T {
	item, _ := q.PopOK()
	return item
}

// PopOK removes and returns the first item, with false when the queue is
// empty. Worklist loops drain with this.
func (q *Queue[T]) PopOK() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

// Empty returns true if the queue has no items.
func (q *Queue[T]) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) == 0
}

// Len returns the number of items in the queue.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Clear removes all items from the queue.
func (q *Queue[T]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = q.items[:0]
}
