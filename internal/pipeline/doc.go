// Package pipeline orchestrates a pool of workers that pull items from a
// bounded input queue, transform each through the installed strategy, and
// push results into a bounded output queue.
//
// Lifecycle: a pipeline starts Stopped, Start spawns the configured number
// of workers, Stop shuts the input queue down and waits for the workers to
// drain it. Both calls are idempotent and a stopped pipeline can be
// started again.
//
// Delivery is best-effort: when the output queue cannot accept a result
// within the push timeout the result is dropped and counted as an error,
// never requeued. A strategy failure or panic on one item is counted and
// logged but never stops a worker.
//
// Ordering: each queue is FIFO, but with more than one worker no ordering
// is guaranteed between output and input. Two items submitted as A then B
// may emerge as B then A depending on worker timing; this is a property of
// parallel processing, not a defect. Run a single worker when output order
// must follow input order.
package pipeline
