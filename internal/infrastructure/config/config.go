// Package config loads procflow configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Pipeline PipelineConfig
	Monitor  MonitorConfig
	Logging  LogConfig
}

// PipelineConfig holds worker-pool and queue configuration.
type PipelineConfig struct {
	Workers        int `envconfig:"PROCFLOW_WORKERS" default:"4"`
	QueueCapacity  int `envconfig:"PROCFLOW_QUEUE_CAPACITY" default:"10000"`
	PollIntervalMs int `envconfig:"PROCFLOW_POLL_INTERVAL_MS" default:"500"`
	PushTimeoutMs  int `envconfig:"PROCFLOW_PUSH_TIMEOUT_MS" default:"500"`
}

// MonitorConfig holds the optional observability HTTP server configuration.
type MonitorConfig struct {
	Enabled bool   `envconfig:"PROCFLOW_MONITOR_ENABLED" default:"false"`
	Addr    string `envconfig:"PROCFLOW_MONITOR_ADDR" default:"127.0.0.1:9090"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"PROCFLOW_LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"PROCFLOW_LOG_DEV" default:"false"`
}

// PollInterval returns the worker dequeue timeout as a duration.
func (p PipelineConfig) PollInterval() time.Duration {
	return time.Duration(p.PollIntervalMs) * time.Millisecond
}

// PushTimeout returns the output enqueue timeout as a duration.
func (p PipelineConfig) PushTimeout() time.Duration {
	return time.Duration(p.PushTimeoutMs) * time.Millisecond
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns defaults.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			Workers:        4,
			QueueCapacity:  10000,
			PollIntervalMs: 500,
			PushTimeoutMs:  500,
		},
		Monitor: MonitorConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9090",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}

// Validate rejects non-positive sizing parameters.
func (c *Config) Validate() error {
	if c.Pipeline.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Pipeline.Workers)
	}
	if c.Pipeline.QueueCapacity <= 0 {
		return fmt.Errorf("queue capacity must be positive, got %d", c.Pipeline.QueueCapacity)
	}
	if c.Pipeline.PollIntervalMs <= 0 {
		return fmt.Errorf("poll interval must be positive, got %d", c.Pipeline.PollIntervalMs)
	}
	if c.Pipeline.PushTimeoutMs <= 0 {
		return fmt.Errorf("push timeout must be positive, got %d", c.Pipeline.PushTimeoutMs)
	}
	return nil
}
