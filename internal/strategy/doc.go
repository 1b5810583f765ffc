// Package strategy defines the pluggable transform applied to every item
// flowing through a pipeline, the concrete transforms shipped with
// procflow, and a caller-owned registry that builds them by name.
//
// A Strategy is a single-item transform: one input in, one output out. It
// may keep internal state (RunningAverage, WindowStats) but is not
// required to be safe for concurrent calls; the pipeline serializes
// invocations so an accumulator is never updated from two workers at once.
//
// The Registry maps a Kind plus a set of named numeric parameters to a
// constructed Strategy. Registries are plain values owned by the caller,
// never process-wide singletons, so tests can build isolated ones with
// fake builders.
package strategy
