package queue

import (
	"sync"
	"time"
)

// DefaultCapacity is used when a non-positive capacity is requested.
const DefaultCapacity = 10000

// Queue is a fixed-capacity FIFO buffer safe for concurrent use.
//
// Blocking operations take a timeout; a non-positive timeout blocks until
// the operation can proceed or Shutdown is called. Waiting is implemented
// with broadcast channels that are closed and replaced whenever the
// relevant condition may have changed, and every waiter re-checks its
// predicate after waking, so lost and spurious wake-ups are harmless.
type Queue[T any] struct {
	mu   sync.Mutex
	buf  []T
	head int
	size int
	down bool

	// Closed and replaced under mu to broadcast a state change.
	notFull  chan struct{}
	notEmpty chan struct{}
}

// Stats is a point-in-time snapshot of the queue.
type Stats struct {
	Len   int  `json:"len"`
	Cap   int  `json:"cap"`
	Full  bool `json:"full"`
	Empty bool `json:"empty"`
}

// New creates a queue with the given capacity.
func New[T any](capacity int) *Queue[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue[T]{
		buf:      make([]T, capacity),
		notFull:  make(chan struct{}),
		notEmpty: make(chan struct{}),
	}
}

// Enqueue appends item, blocking while the queue is full. It returns false
// if the timeout elapses first or if the queue is, or becomes, shut down.
func (q *Queue[T]) Enqueue(item T, timeout time.Duration) bool {
	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	q.mu.Lock()
	for {
		if q.down {
			q.mu.Unlock()
			return false
		}
		if q.size < len(q.buf) {
			q.buf[(q.head+q.size)%len(q.buf)] = item
			q.size++
			q.broadcast(&q.notEmpty)
			q.mu.Unlock()
			return true
		}
		wait := q.notFull
		q.mu.Unlock()
		select {
		case <-wait:
		case <-deadline:
			return false
		}
		q.mu.Lock()
	}
}

// Dequeue removes and returns the oldest item, blocking while the queue is
// empty. After Shutdown it keeps returning already-queued items until the
// queue is drained, then reports false immediately.
func (q *Queue[T]) Dequeue(timeout time.Duration) (T, bool) {
	var zero T
	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	q.mu.Lock()
	for {
		if q.size > 0 {
			item := q.buf[q.head]
			q.buf[q.head] = zero
			q.head = (q.head + 1) % len(q.buf)
			q.size--
			q.broadcast(&q.notFull)
			q.mu.Unlock()
			return item, true
		}
		if q.down {
			q.mu.Unlock()
			return zero, false
		}
		wait := q.notEmpty
		q.mu.Unlock()
		select {
		case <-wait:
		case <-deadline:
			return zero, false
		}
		q.mu.Lock()
	}
}

// Peek returns the oldest item without removing it.
func (q *Queue[T]) Peek() (T, bool) {
	var zero T
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.size == 0 {
		return zero, false
	}
	return q.buf[q.head], true
}

// Len returns the current number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Cap returns the fixed capacity.
func (q *Queue[T]) Cap() int {
	return len(q.buf)
}

// Empty reports whether the queue holds no items.
func (q *Queue[T]) Empty() bool {
	return q.Len() == 0
}

// Full reports whether the queue is at capacity.
func (q *Queue[T]) Full() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size == len(q.buf)
}

// Clear removes every queued item and wakes producers blocked on fullness.
func (q *Queue[T]) Clear() {
	var zero T
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := 0; i < q.size; i++ {
		q.buf[(q.head+i)%len(q.buf)] = zero
	}
	q.head = 0
	q.size = 0
	q.broadcast(&q.notFull)
}

// Shutdown permanently stops the queue accepting new items and wakes every
// blocked producer and consumer. It is idempotent. Queued items remain
// dequeueable until drained.
func (q *Queue[T]) Shutdown() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.down {
		return
	}
	q.down = true
	q.broadcast(&q.notFull)
	q.broadcast(&q.notEmpty)
}

// IsShutdown reports whether Shutdown has been called.
func (q *Queue[T]) IsShutdown() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.down
}

// GetStats returns a snapshot of the queue state.
func (q *Queue[T]) GetStats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Stats{
		Len:   q.size,
		Cap:   len(q.buf),
		Full:  q.size == len(q.buf),
		Empty: q.size == 0,
	}
}

// broadcast wakes every waiter on ch and arms a fresh channel for the next
// round of waiters. Must be called with mu held.
func (q *Queue[T]) broadcast(ch *chan struct{}) {
	close(*ch)
	*ch = make(chan struct{})
}
