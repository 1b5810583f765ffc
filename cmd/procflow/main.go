// Command procflow runs the demonstration pipelines: built-in scenarios
// covering each strategy, or a custom YAML scenario file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/streamkit/procflow/internal/infrastructure/config"
	"github.com/streamkit/procflow/internal/infrastructure/logging"
	"github.com/streamkit/procflow/internal/infrastructure/monitoring"
	"github.com/streamkit/procflow/internal/infrastructure/server"
)

func main() {
	scenarioPath := flag.String("scenario", "", "YAML scenario file (empty runs the built-in demo)")
	monitorAddr := flag.String("monitor", "", "monitor listen address (enables the monitor server)")
	dev := flag.Bool("dev", false, "development logging")
	flag.Parse()

	cfg := config.LoadOrDefault()
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}
	if *monitorAddr != "" {
		cfg.Monitor.Enabled = true
		cfg.Monitor.Addr = *monitorAddr
	}

	log, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stdout"},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	reg := prometheus.NewRegistry()
	metrics := monitoring.New(reg)

	var monitor *server.Monitor
	if cfg.Monitor.Enabled {
		monitor = server.New(cfg.Monitor.Addr, reg, log).WithSnapshot(metrics)
		go func() {
			if err := monitor.Run(); err != nil {
				log.Error("monitor server failed", zap.Error(err))
			}
		}()
	}

	executionID := uuid.New().String()
	log.Info("procflow starting",
		zap.String("execution_id", executionID),
		zap.Int("workers", cfg.Pipeline.Workers),
		zap.Int("queue_capacity", cfg.Pipeline.QueueCapacity))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info("received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	d := &driver{cfg: cfg, log: log, metrics: metrics, monitor: monitor}

	var runErr error
	if *scenarioPath != "" {
		runErr = d.runScenarioFile(ctx, *scenarioPath)
	} else {
		runErr = d.runBuiltinDemo(ctx)
	}

	if monitor != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := monitor.Shutdown(shutdownCtx); err != nil {
			log.Warn("monitor shutdown failed", zap.Error(err))
		}
	}

	if runErr != nil {
		log.Error("demo failed", zap.Error(runErr))
		os.Exit(1)
	}
	log.Info("procflow finished", zap.String("execution_id", executionID))
}
