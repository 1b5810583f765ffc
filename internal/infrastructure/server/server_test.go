package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamkit/procflow/internal/infrastructure/monitoring"
	"github.com/streamkit/procflow/internal/pipeline"
	"github.com/streamkit/procflow/internal/strategy"
)

func TestHealth(t *testing.T) {
	m := New("127.0.0.1:0", nil, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestStatsReportsRegisteredPipelines(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := monitoring.New(reg)
	m := New("127.0.0.1:0", reg, nil).WithSnapshot(metrics)

	p := pipeline.New[int](pipeline.Options{Workers: 1, QueueCapacity: 8}, nil).WithMetrics(metrics)
	p.SetStrategy(strategy.NewScale(2))
	m.RegisterPipeline("numbers", p)

	require.NoError(t, p.Start())
	require.True(t, p.Submit(5, time.Second))
	_, ok := p.Retrieve(2 * time.Second)
	require.True(t, ok)
	p.Stop()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Pipelines map[string]pipeline.Statistics `json:"pipelines"`
		Metrics   *monitoring.Snapshot           `json:"metrics"`
	}
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &resp))

	stats, found := resp.Pipelines["numbers"]
	require.True(t, found)
	assert.Equal(t, uint64(1), stats.TotalProcessed)
	assert.Equal(t, "scale", stats.Strategy)
	require.NotNil(t, resp.Metrics)
	assert.Equal(t, uint64(1), resp.Metrics.ItemsProcessed)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := monitoring.New(reg)
	metrics.RecordSubmit()

	m := New("127.0.0.1:0", reg, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "procflow_items_submitted_total")
}

func TestUnregisterPipeline(t *testing.T) {
	m := New("127.0.0.1:0", nil, nil)
	p := pipeline.New[int](pipeline.Options{}, nil)

	m.RegisterPipeline("gone", p)
	m.UnregisterPipeline("gone")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	assert.NotContains(t, rec.Body.String(), "gone")
}
