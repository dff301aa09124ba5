// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package processor

// fairQueue holds one bounded FIFO per source and serves them round robin,
// taking up to priority[source] items from a source before moving on. It is
// not safe for concurrent use.
type fairQueue[T any] struct {
	queues   [numSources][]T
	maxSize  [numSources]int
	priority [numSources]int

	current Source
	served  int
	size    int
}

func newFairQueue[T any](maxSize, priority [numSources]int) *fairQueue[T] {
	q := &fairQueue[T]{
		maxSize:  maxSize,
		priority: priority,
	}
	for i := range q.priority {
		q.priority[i] = max(q.priority[i], 1)
	}
	return q
}

// push appends [v] to the queue of [source]. It returns false if that queue
// is full.
func (q *fairQueue[T]) push(source Source, v T) bool {
	if len(q.queues[source]) >= q.maxSize[source] {
		return false
	}
	q.queues[source] = append(q.queues[source], v)
	q.size++
	return true
}

// popFrom removes the oldest item of [source].
func (q *fairQueue[T]) popFrom(source Source) (T, bool) {
	var zero T
	queue := q.queues[source]
	if len(queue) == 0 {
		return zero, false
	}
	v := queue[0]
	queue[0] = zero
	q.queues[source] = queue[1:]
	q.size--
	return v, true
}

// pop removes the next item in fair order.
func (q *fairQueue[T]) pop() (Source, T, bool) {
	var zero T
	if q.size == 0 {
		return 0, zero, false
	}
	for {
		if q.served >= q.priority[q.current] || len(q.queues[q.current]) == 0 {
			q.current = (q.current + 1) % numSources
			q.served = 0
			continue
		}
		v, _ := q.popFrom(q.current)
		q.served++
		return q.current, v, true
	}
}

func (q *fairQueue[T]) len() int {
	return q.size
}

func (q *fairQueue[T]) lenOf(source Source) int {
	return len(q.queues[source])
}
