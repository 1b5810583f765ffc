package strategy

import "gonum.org/v1/gonum/stat"

// DefaultWindowSize is used when a window-stats strategy is built without
// an explicit window parameter.
const DefaultWindowSize = 5

// WindowStats replaces each item with the mean of a sliding window over
// the most recent items, smoothing noisy input series.
type WindowStats[T Numeric] struct {
	window []float64
	size   int
}

// NewWindowStats creates a sliding-window smoothing strategy. Window sizes
// below one fall back to DefaultWindowSize.
func NewWindowStats[T Numeric](size int) *WindowStats[T] {
	if size < 1 {
		size = DefaultWindowSize
	}
	return &WindowStats[T]{
		window: make([]float64, 0, size),
		size:   size,
	}
}

func (w *WindowStats[T]) Apply(input T) (T, error) {
	if len(w.window) == w.size {
		copy(w.window, w.window[1:])
		w.window = w.window[:w.size-1]
	}
	w.window = append(w.window, float64(input))
	return T(stat.Mean(w.window, nil)), nil
}

func (w *WindowStats[T]) Name() string { return "window-stats" }

func (w *WindowStats[T]) Reset() {
	w.window = w.window[:0]
}

// StdDev returns the standard deviation of the current window, or zero
// when fewer than two items have been seen.
func (w *WindowStats[T]) StdDev() float64 {
	if len(w.window) < 2 {
		return 0
	}
	return stat.StdDev(w.window, nil)
}
