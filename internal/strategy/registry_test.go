package strategy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericRegistryBuilds(t *testing.T) {
	r := NewNumeric[float64]()

	s, err := r.Build(KindScale, Params{"factor": 5})
	require.NoError(t, err)
	got, err := s.Apply(2)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, got, 1e-9)

	s, err = r.Build(KindThreshold, Params{"threshold": 5})
	require.NoError(t, err)
	got, err = s.Apply(3)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	s, err = r.Build(KindRunningAverage, nil)
	require.NoError(t, err)
	assert.Equal(t, "running-average", s.Name())

	s, err = r.Build(KindWindowStats, Params{"window": 2})
	require.NoError(t, err)
	assert.Equal(t, "window-stats", s.Name())
}

func TestNumericRegistryDefaults(t *testing.T) {
	r := NewNumeric[int]()

	// No params: scale defaults to factor 2, amplify to gain 1.5.
	s, err := r.Build(KindScale, nil)
	require.NoError(t, err)
	got, err := s.Apply(7)
	require.NoError(t, err)
	assert.Equal(t, 14, got)

	s, err = r.Build(KindAmplify, Params{})
	require.NoError(t, err)
	got, err = s.Apply(4)
	require.NoError(t, err)
	assert.Equal(t, 6, got)
}

func TestRegistryUnknownKind(t *testing.T) {
	r := NewNumeric[float64]()

	_, err := r.Build(Kind("no-such-strategy"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownStrategy))
}

func TestTextRegistry(t *testing.T) {
	r := NewText[string]()

	s, err := r.Build(KindRepeat, Params{"repetitions": 3})
	require.NoError(t, err)
	got, err := s.Apply("go")
	require.NoError(t, err)
	assert.Equal(t, "gogogo", got)

	// Numeric kinds are unsupported for text items.
	_, err = r.Build(KindRunningAverage, nil)
	assert.True(t, errors.Is(err, ErrUnknownStrategy))
}

func TestRegistryCustomBuilder(t *testing.T) {
	r := NewRegistry[int]()
	r.Register(Kind("identity"), func(Params) (Strategy[int], error) {
		return NewScale(1), nil
	})

	s, err := r.Build(Kind("identity"), nil)
	require.NoError(t, err)
	got, err := s.Apply(9)
	require.NoError(t, err)
	assert.Equal(t, 9, got)
	assert.Equal(t, []Kind{"identity"}, r.Kinds())
}

func TestBuildReturnsFreshInstances(t *testing.T) {
	r := NewNumeric[float64]()

	a, err := r.Build(KindRunningAverage, nil)
	require.NoError(t, err)
	b, err := r.Build(KindRunningAverage, nil)
	require.NoError(t, err)

	_, err = a.Apply(100)
	require.NoError(t, err)

	// b's accumulator is independent of a's.
	got, err := b.Apply(10)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, got, 1e-9)
}
