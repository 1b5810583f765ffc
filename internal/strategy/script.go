package strategy

import (
	"fmt"
	"time"

	"github.com/dop251/goja"
)

// DefaultScriptTimeout bounds a single scripted Apply call.
const DefaultScriptTimeout = 100 * time.Millisecond

// Script evaluates a user-supplied JavaScript function for each item. The
// source must evaluate to a function taking one number and returning one
// number, for example:
//
//	(x) => x * x + 1
//
// Compilation failures surface from NewScript as configuration errors;
// runtime failures surface per item from Apply. Each Apply is bounded by a
// timeout that interrupts the VM, so a runaway script cannot stall a
// worker forever.
type Script[T Numeric] struct {
	vm      *goja.Runtime
	fn      goja.Callable
	timeout time.Duration
}

// NewScript compiles source into a scripted strategy. A non-positive
// timeout falls back to DefaultScriptTimeout.
func NewScript[T Numeric](source string, timeout time.Duration) (*Script[T], error) {
	if timeout <= 0 {
		timeout = DefaultScriptTimeout
	}

	vm := goja.New()
	value, err := vm.RunString(source)
	if err != nil {
		return nil, fmt.Errorf("failed to compile script: %w", err)
	}
	fn, ok := goja.AssertFunction(value)
	if !ok {
		return nil, fmt.Errorf("script must evaluate to a function, got %s", value.ExportType())
	}

	return &Script[T]{vm: vm, fn: fn, timeout: timeout}, nil
}

func (s *Script[T]) Apply(input T) (T, error) {
	timer := time.AfterFunc(s.timeout, func() {
		s.vm.Interrupt("apply timeout exceeded")
	})
	// Stop the timer before clearing, so a late fire cannot leave an
	// interrupt pending for the next call.
	defer s.vm.ClearInterrupt()
	defer timer.Stop()

	var zero T
	result, err := s.fn(goja.Undefined(), s.vm.ToValue(float64(input)))
	if err != nil {
		return zero, fmt.Errorf("script apply failed: %w", err)
	}
	return T(result.ToFloat()), nil
}

func (s *Script[T]) Name() string { return "script" }

// Reset is a no-op: scripted strategies keep state only if the script
// closes over its own variables, and that state belongs to the script.
func (s *Script[T]) Reset() {}
