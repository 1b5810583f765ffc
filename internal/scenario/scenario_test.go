package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamkit/procflow/internal/strategy"
)

const sampleYAML = `
name: smoke
pipelines:
  - name: doubler
    workers: 2
    capacity: 64
    strategy: scale
    params:
      factor: 2
    inputs: [1, 2, 3]
    rate: 50
  - name: scripted
    script: "(x) => x + 1"
    inputs: [10]
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "smoke", s.Name)
	require.Len(t, s.Pipelines, 2)

	doubler := s.Pipelines[0]
	assert.Equal(t, "doubler", doubler.Name)
	assert.Equal(t, 2, doubler.Workers)
	assert.Equal(t, "scale", doubler.Strategy)
	assert.Equal(t, 2.0, doubler.Params["factor"])
	assert.Equal(t, []float64{1, 2, 3}, doubler.Inputs)
	assert.Equal(t, 50.0, doubler.Rate)

	assert.Equal(t, "(x) => x + 1", s.Pipelines[1].Script)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "smoke", s.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsBadSpecs(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"no name", "pipelines: [{name: p, strategy: scale, inputs: [1]}]"},
		{"no pipelines", "name: empty"},
		{"unnamed pipeline", "name: s\npipelines: [{strategy: scale, inputs: [1]}]"},
		{"no strategy", "name: s\npipelines: [{name: p, inputs: [1]}]"},
		{"both strategy and script", "name: s\npipelines: [{name: p, strategy: scale, script: x, inputs: [1]}]"},
		{"no inputs", "name: s\npipelines: [{name: p, strategy: scale}]"},
		{"negative workers", "name: s\npipelines: [{name: p, strategy: scale, inputs: [1], workers: -1}]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestBuildStrategy(t *testing.T) {
	reg := strategy.NewNumeric[float64]()

	named := PipelineSpec{Strategy: "scale", Params: map[string]float64{"factor": 3}}
	s, err := named.BuildStrategy(reg)
	require.NoError(t, err)
	v, err := s.Apply(2)
	require.NoError(t, err)
	assert.Equal(t, 6.0, v)

	scripted := PipelineSpec{Script: "(x) => x * 10"}
	s, err = scripted.BuildStrategy(reg)
	require.NoError(t, err)
	v, err = s.Apply(2)
	require.NoError(t, err)
	assert.Equal(t, 20.0, v)

	unknown := PipelineSpec{Strategy: "bogus"}
	_, err = unknown.BuildStrategy(reg)
	assert.ErrorIs(t, err, strategy.ErrUnknownStrategy)
}
