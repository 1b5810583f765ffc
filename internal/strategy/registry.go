package strategy

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownStrategy is returned when a registry cannot build the
// requested kind, either because the kind does not exist or because it is
// not supported for the registry's item type.
var ErrUnknownStrategy = errors.New("unknown strategy kind")

// Kind identifies a buildable strategy.
type Kind string

const (
	KindScale          Kind = "scale"
	KindAmplify        Kind = "amplify"
	KindThreshold      Kind = "threshold"
	KindRunningAverage Kind = "running-average"
	KindWindowStats    Kind = "window-stats"
	KindRepeat         Kind = "repeat"
)

// Params carries named numeric construction parameters.
type Params map[string]float64

// Get returns the named parameter or def when absent.
func (p Params) Get(name string, def float64) float64 {
	if v, ok := p[name]; ok {
		return v
	}
	return def
}

// Builder constructs a strategy instance from parameters.
type Builder[T any] func(params Params) (Strategy[T], error)

// Registry maps kinds to builders for one item type. Registries are
// explicitly constructed and owned by the caller; there is no process-wide
// instance.
type Registry[T any] struct {
	mu       sync.RWMutex
	builders map[Kind]Builder[T]
}

// NewRegistry creates an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{builders: make(map[Kind]Builder[T])}
}

// Register adds or replaces the builder for a kind.
func (r *Registry[T]) Register(kind Kind, builder Builder[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[kind] = builder
}

// Build constructs a fresh strategy instance for the kind.
func (r *Registry[T]) Build(kind Kind, params Params) (Strategy[T], error) {
	r.mu.RLock()
	builder, ok := r.builders[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, kind)
	}
	return builder(params)
}

// Kinds lists the registered kinds in sorted order.
func (r *Registry[T]) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]Kind, 0, len(r.builders))
	for k := range r.builders {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// NewNumeric creates a registry with the full numeric strategy set.
//
// Parameter defaults: factor 2, gain 1.5, threshold 0, window 5.
func NewNumeric[T Numeric]() *Registry[T] {
	r := NewRegistry[T]()
	r.Register(KindScale, func(p Params) (Strategy[T], error) {
		return NewScale(T(p.Get("factor", 2))), nil
	})
	r.Register(KindAmplify, func(p Params) (Strategy[T], error) {
		return NewAmplify[T](p.Get("gain", 1.5)), nil
	})
	r.Register(KindThreshold, func(p Params) (Strategy[T], error) {
		return NewThreshold(T(p.Get("threshold", 0))), nil
	})
	r.Register(KindRunningAverage, func(Params) (Strategy[T], error) {
		return NewRunningAverage[T](), nil
	})
	r.Register(KindWindowStats, func(p Params) (Strategy[T], error) {
		return NewWindowStats[T](int(p.Get("window", DefaultWindowSize))), nil
	})
	return r
}

// NewText creates a registry with the text strategy set. Numeric kinds are
// deliberately absent so requesting one fails with ErrUnknownStrategy.
//
// Parameter default: repetitions 2.
func NewText[T ~string]() *Registry[T] {
	r := NewRegistry[T]()
	r.Register(KindRepeat, func(p Params) (Strategy[T], error) {
		return NewRepeat[T](int(p.Get("repetitions", 2))), nil
	})
	return r
}
