// Package server provides an optional, read-only observability HTTP
// server for running pipelines: health, statistics snapshots and
// Prometheus metrics. The pipeline API itself stays in-process; nothing
// here mutates pipeline state.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/streamkit/procflow/internal/infrastructure/logging"
	"github.com/streamkit/procflow/internal/infrastructure/monitoring"
	"github.com/streamkit/procflow/internal/pipeline"
)

// StatsProvider exposes a pipeline statistics snapshot. Every
// pipeline.Pipeline[T] satisfies it regardless of item type.
type StatsProvider interface {
	Statistics() pipeline.Statistics
}

// Monitor serves observability endpoints for registered pipelines.
type Monitor struct {
	addr     string
	log      *logging.Logger
	router   *gin.Engine
	gatherer prometheus.Gatherer
	metrics  *monitoring.Metrics

	mu        sync.RWMutex
	pipelines map[string]StatsProvider

	srv *http.Server
}

// New creates a monitor listening on addr. gatherer backs the /metrics
// endpoint and may be nil when no Prometheus registry is in play.
func New(addr string, gatherer prometheus.Gatherer, log *logging.Logger) *Monitor {
	if log == nil {
		log = logging.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	m := &Monitor{
		addr:      addr,
		log:       log.Named("monitor"),
		gatherer:  gatherer,
		pipelines: make(map[string]StatsProvider),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Accept", "Origin"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/health", m.handleHealth)
	router.GET("/stats", m.handleStats)
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	m.router = router
	return m
}

// WithSnapshot includes the metrics collector's running totals in /stats
// responses.
func (m *Monitor) WithSnapshot(metrics *monitoring.Metrics) *Monitor {
	m.metrics = metrics
	return m
}

// RegisterPipeline adds a pipeline under the given name.
func (m *Monitor) RegisterPipeline(name string, p StatsProvider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pipelines[name] = p
}

// UnregisterPipeline removes a pipeline.
func (m *Monitor) UnregisterPipeline(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pipelines, name)
}

// Handler returns the underlying HTTP handler, used directly in tests.
func (m *Monitor) Handler() http.Handler {
	return m.router
}

// Run starts the HTTP server and blocks until it stops.
func (m *Monitor) Run() error {
	m.srv = &http.Server{
		Addr:              m.addr,
		Handler:           m.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	m.log.Info("starting monitor server", zap.String("addr", m.addr))
	if err := m.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (m *Monitor) Shutdown(ctx context.Context) error {
	if m.srv == nil {
		return nil
	}
	m.log.Info("shutting down monitor server")
	return m.srv.Shutdown(ctx)
}

func (m *Monitor) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type statsResponse struct {
	Pipelines map[string]pipeline.Statistics `json:"pipelines"`
	Metrics   *monitoring.Snapshot           `json:"metrics,omitempty"`
}

func (m *Monitor) handleStats(c *gin.Context) {
	m.mu.RLock()
	resp := statsResponse{Pipelines: make(map[string]pipeline.Statistics, len(m.pipelines))}
	for name, p := range m.pipelines {
		resp.Pipelines[name] = p.Statistics()
	}
	m.mu.RUnlock()

	if m.metrics != nil {
		snap := m.metrics.GetSnapshot()
		resp.Metrics = &snap
	}

	data, err := sonic.Marshal(resp)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}
