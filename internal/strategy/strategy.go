package strategy

import "strings"

// Numeric constrains item types that support the arithmetic transforms.
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

// Strategy transforms one input item into one output item.
//
// Implementations are invoked by exactly one worker at a time; thread
// safety of invocation is the pipeline's responsibility, not the
// strategy's.
type Strategy[T any] interface {
	// Apply transforms a single item. A returned error counts against the
	// pipeline's error statistic and drops the item; it never stops the
	// worker.
	Apply(input T) (T, error)

	// Name identifies the strategy in logs, metrics and statistics.
	Name() string

	// Reset clears any internal accumulator. No-op for stateless
	// strategies. The pipeline never calls Reset implicitly.
	Reset()
}

// Scale multiplies every item by a fixed factor.
type Scale[T Numeric] struct {
	factor T
}

// NewScale creates a scaling strategy.
func NewScale[T Numeric](factor T) *Scale[T] {
	return &Scale[T]{factor: factor}
}

func (s *Scale[T]) Apply(input T) (T, error) { return input * s.factor, nil }
func (s *Scale[T]) Name() string             { return "scale" }
func (s *Scale[T]) Reset()                   {}

// Amplify multiplies every item by a floating-point gain, truncating back
// to the item type.
type Amplify[T Numeric] struct {
	gain float64
}

// NewAmplify creates an amplification strategy.
func NewAmplify[T Numeric](gain float64) *Amplify[T] {
	return &Amplify[T]{gain: gain}
}

func (a *Amplify[T]) Apply(input T) (T, error) {
	return T(float64(input) * a.gain), nil
}
func (a *Amplify[T]) Name() string { return "amplify" }
func (a *Amplify[T]) Reset()       {}

// Threshold passes items at or above the threshold unchanged and maps
// items below it to the zero value.
type Threshold[T Numeric] struct {
	threshold T
}

// NewThreshold creates a threshold filter strategy.
func NewThreshold[T Numeric](threshold T) *Threshold[T] {
	return &Threshold[T]{threshold: threshold}
}

func (f *Threshold[T]) Apply(input T) (T, error) {
	if input >= f.threshold {
		return input, nil
	}
	var zero T
	return zero, nil
}
func (f *Threshold[T]) Name() string { return "threshold" }
func (f *Threshold[T]) Reset()       {}

// Repeat concatenates each item with itself a fixed number of times.
type Repeat[T ~string] struct {
	repetitions int
}

// NewRepeat creates a text repetition strategy. Repetition counts below
// one are clamped to one.
func NewRepeat[T ~string](repetitions int) *Repeat[T] {
	if repetitions < 1 {
		repetitions = 1
	}
	return &Repeat[T]{repetitions: repetitions}
}

func (r *Repeat[T]) Apply(input T) (T, error) {
	return T(strings.Repeat(string(input), r.repetitions)), nil
}
func (r *Repeat[T]) Name() string { return "repeat" }
func (r *Repeat[T]) Reset()       {}
