package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScale(t *testing.T) {
	s := NewScale(5)

	got, err := s.Apply(3)
	require.NoError(t, err)
	assert.Equal(t, 15, got)
	assert.Equal(t, "scale", s.Name())
}

func TestAmplify(t *testing.T) {
	a := NewAmplify[float64](1.5)

	got, err := a.Apply(4.0)
	require.NoError(t, err)
	assert.InDelta(t, 6.0, got, 1e-9)
}

func TestAmplifyTruncatesIntegers(t *testing.T) {
	a := NewAmplify[int](1.5)

	got, err := a.Apply(3)
	require.NoError(t, err)
	assert.Equal(t, 4, got) // 4.5 truncated
}

func TestThreshold(t *testing.T) {
	f := NewThreshold(5.0)

	// Below threshold maps to the zero value, at-or-above passes through.
	got, err := f.Apply(3.0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	got, err = f.Apply(7.0)
	require.NoError(t, err)
	assert.Equal(t, 7.0, got)
}

func TestRepeat(t *testing.T) {
	r := NewRepeat[string](3)

	got, err := r.Apply("ab")
	require.NoError(t, err)
	assert.Equal(t, "ababab", got)
}

func TestRepeatClampsToOne(t *testing.T) {
	r := NewRepeat[string](0)

	got, err := r.Apply("x")
	require.NoError(t, err)
	assert.Equal(t, "x", got)
}

func TestRunningAverage(t *testing.T) {
	avg := NewRunningAverage[int]()

	var outputs []int
	for _, in := range []int{10, 20, 30} {
		out, err := avg.Apply(in)
		require.NoError(t, err)
		outputs = append(outputs, out)
	}
	assert.Equal(t, []int{10, 15, 20}, outputs)
}

func TestRunningAverageReset(t *testing.T) {
	avg := NewRunningAverage[float64]()

	_, err := avg.Apply(100)
	require.NoError(t, err)

	avg.Reset()

	got, err := avg.Apply(10)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, got, 1e-9)
}

func TestWindowStats(t *testing.T) {
	w := NewWindowStats[float64](3)

	inputs := []float64{1, 2, 3, 4}
	want := []float64{1, 1.5, 2, 3} // last window is {2,3,4}

	for i, in := range inputs {
		got, err := w.Apply(in)
		require.NoError(t, err)
		assert.InDelta(t, want[i], got, 1e-9)
	}
	assert.Greater(t, w.StdDev(), 0.0)
}

func TestWindowStatsReset(t *testing.T) {
	w := NewWindowStats[float64](3)

	_, err := w.Apply(100)
	require.NoError(t, err)
	w.Reset()

	got, err := w.Apply(2)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, got, 1e-9)
	assert.Equal(t, 0.0, w.StdDev())
}
