// Package queue provides a bounded blocking FIFO queue shared between
// producers and consumers.
//
// The queue has a fixed capacity decided at construction. Enqueue blocks
// while the queue is full, Dequeue blocks while it is empty; both accept a
// timeout and return control to the caller instead of waiting forever.
//
// Shutdown is cooperative and permanent: once Shutdown is called no new
// item is accepted, every blocked caller is woken so it can re-evaluate
// its exit condition, and items already queued remain dequeueable until
// the queue is drained.
//
// Example Usage:
//
//	q := queue.New[int](128)
//	q.Enqueue(42, time.Second)
//	v, ok := q.Dequeue(time.Second)
//	q.Shutdown()
package queue
