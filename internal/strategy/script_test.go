package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptApply(t *testing.T) {
	s, err := NewScript[float64]("(x) => x * x + 1", 0)
	require.NoError(t, err)

	got, err := s.Apply(3)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, got, 1e-9)
	assert.Equal(t, "script", s.Name())
}

func TestScriptIntegerItems(t *testing.T) {
	s, err := NewScript[int]("(x) => x * 2", 0)
	require.NoError(t, err)

	got, err := s.Apply(21)
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestScriptCompileError(t *testing.T) {
	_, err := NewScript[float64]("(x => {", 0)
	assert.Error(t, err)
}

func TestScriptNotAFunction(t *testing.T) {
	_, err := NewScript[float64]("42", 0)
	assert.Error(t, err)
}

func TestScriptRuntimeError(t *testing.T) {
	s, err := NewScript[float64]("(x) => { throw new Error('bad item') }", 0)
	require.NoError(t, err)

	_, err = s.Apply(1)
	assert.Error(t, err)

	// A failed item does not poison subsequent calls.
	s2, err := NewScript[float64]("(x) => { if (x < 0) throw new Error('negative'); return x }", 0)
	require.NoError(t, err)
	_, err = s2.Apply(-1)
	require.Error(t, err)
	got, err := s2.Apply(5)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, got, 1e-9)
}

func TestScriptTimeout(t *testing.T) {
	s, err := NewScript[float64]("(x) => { while (true) {} }", 20*time.Millisecond)
	require.NoError(t, err)

	start := time.Now()
	_, err = s.Apply(1)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
