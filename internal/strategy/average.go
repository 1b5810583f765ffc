package strategy

// RunningAverage replaces each item with the cumulative mean of every item
// seen since construction or the last Reset.
//
// The accumulator is only cleared by an explicit Reset call; the pipeline
// never resets it during normal operation, so the mean survives strategy
// swaps back and forth.
type RunningAverage[T Numeric] struct {
	total float64
	count int64
}

// NewRunningAverage creates a cumulative mean strategy.
func NewRunningAverage[T Numeric]() *RunningAverage[T] {
	return &RunningAverage[T]{}
}

func (r *RunningAverage[T]) Apply(input T) (T, error) {
	r.total += float64(input)
	r.count++
	return T(r.total / float64(r.count)), nil
}

func (r *RunningAverage[T]) Name() string { return "running-average" }

func (r *RunningAverage[T]) Reset() {
	r.total = 0
	r.count = 0
}
