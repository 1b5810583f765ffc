package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/streamkit/procflow/internal/infrastructure/config"
	"github.com/streamkit/procflow/internal/infrastructure/logging"
	"github.com/streamkit/procflow/internal/infrastructure/monitoring"
	"github.com/streamkit/procflow/internal/infrastructure/server"
	"github.com/streamkit/procflow/internal/pipeline"
	"github.com/streamkit/procflow/internal/scenario"
	"github.com/streamkit/procflow/internal/strategy"
)

const (
	submitTimeout   = 2 * time.Second
	retrieveTimeout = 2 * time.Second
	demoRate        = 50.0 // items per second for the built-in demo
)

type driver struct {
	cfg     *config.Config
	log     *logging.Logger
	metrics *monitoring.Metrics
	monitor *server.Monitor
}

func (d *driver) options(workers, capacity int) pipeline.Options {
	if workers <= 0 {
		workers = d.cfg.Pipeline.Workers
	}
	if capacity <= 0 {
		capacity = d.cfg.Pipeline.QueueCapacity
	}
	return pipeline.Options{
		Workers:       workers,
		QueueCapacity: capacity,
		PollInterval:  d.cfg.Pipeline.PollInterval(),
		PushTimeout:   d.cfg.Pipeline.PushTimeout(),
	}
}

// feed submits items at the given pace; rate <= 0 means unpaced.
func feed[T any](ctx context.Context, p *pipeline.Pipeline[T], items []T, perSecond float64) error {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	limiter := rate.NewLimiter(limit, 1)
	for _, item := range items {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		if !p.Submit(item, submitTimeout) {
			return fmt.Errorf("submit timed out for %v", item)
		}
	}
	return nil
}

// runOne drives a single pipeline end to end and logs its outputs.
func runOne[T any](ctx context.Context, d *driver, name string, opts pipeline.Options, s strategy.Strategy[T], items []T, perSecond float64) error {
	log := d.log.Named(name)
	p := pipeline.New[T](opts, log).WithMetrics(d.metrics)
	p.SetStrategy(s)

	if d.monitor != nil {
		d.monitor.RegisterPipeline(name, p)
		defer d.monitor.UnregisterPipeline(name)
	}

	if err := p.Start(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	defer p.Stop()

	if err := feed(ctx, p, items, perSecond); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	outputs := p.RetrieveBatch(len(items), retrieveTimeout)
	log.Info("pipeline outputs", zap.Any("inputs", items), zap.Any("outputs", outputs))

	p.Stop()
	if data, err := p.Statistics().JSON(); err == nil {
		log.Info("pipeline statistics", zap.ByteString("stats", data))
	}
	return nil
}

// runBuiltinDemo walks each strategy through a short pipeline run.
func (d *driver) runBuiltinDemo(ctx context.Context) error {
	opts := d.options(0, 0)

	d.log.Info("demo: integer scaling")
	ints := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if err := runOne(ctx, d, "scale", opts, strategy.NewScale(5), ints, demoRate); err != nil {
		return err
	}

	d.log.Info("demo: threshold filter")
	floats := []float64{1.5, 6.2, 3.8, 9.1, 4.4, 7.7}
	if err := runOne(ctx, d, "threshold", opts, strategy.NewThreshold(5.0), floats, demoRate); err != nil {
		return err
	}

	d.log.Info("demo: string repetition")
	words := []string{"go", "data", "stream"}
	reg := strategy.NewText[string]()
	repeat, err := reg.Build(strategy.KindRepeat, strategy.Params{"repetitions": 3})
	if err != nil {
		return err
	}
	if err := runOne(ctx, d, "repeat", opts, repeat, words, demoRate); err != nil {
		return err
	}

	d.log.Info("demo: running average")
	if err := runOne(ctx, d, "average", d.options(1, 0), strategy.NewRunningAverage[float64](), []float64{10, 20, 30}, demoRate); err != nil {
		return err
	}

	d.log.Info("demo: sliding window statistics")
	if err := runOne(ctx, d, "window", d.options(1, 0), strategy.NewWindowStats[float64](3), []float64{1, 2, 3, 4, 5, 6}, demoRate); err != nil {
		return err
	}

	d.log.Info("demo: strategy swap under load")
	if err := d.runSwapDemo(ctx); err != nil {
		return err
	}

	d.log.Info("demo: per-item error containment")
	return d.runContainmentDemo(ctx)
}

// runSwapDemo swaps the strategy while items are in flight; items processed
// after the swap use the new strategy.
func (d *driver) runSwapDemo(ctx context.Context) error {
	log := d.log.Named("swap")
	p := pipeline.New[float64](d.options(2, 0), log).WithMetrics(d.metrics)
	p.SetStrategy(strategy.NewScale[float64](2))

	if err := p.Start(); err != nil {
		return err
	}
	defer p.Stop()

	first := []float64{1, 2, 3, 4, 5}
	if err := feed(ctx, p, first, demoRate); err != nil {
		return err
	}

	p.SetStrategy(strategy.NewAmplify[float64](1.5))
	log.Info("strategy swapped", zap.String("strategy", "amplify"))

	second := []float64{10, 20, 30}
	if err := feed(ctx, p, second, demoRate); err != nil {
		return err
	}

	outputs := p.RetrieveBatch(len(first)+len(second), retrieveTimeout)
	log.Info("pipeline outputs", zap.Any("outputs", outputs))
	return nil
}

// runContainmentDemo feeds a script strategy that rejects negatives; failed
// items are counted as errors while the rest flow through.
func (d *driver) runContainmentDemo(ctx context.Context) error {
	log := d.log.Named("containment")
	script, err := strategy.NewScript[float64](
		"(x) => { if (x < 0) throw new Error('negative input'); return Math.sqrt(x) }", 0)
	if err != nil {
		return err
	}

	p := pipeline.New[float64](d.options(1, 0), log).WithMetrics(d.metrics)
	p.SetStrategy(script)
	if err := p.Start(); err != nil {
		return err
	}

	items := []float64{4, -1, 9, -2, 16}
	if err := feed(ctx, p, items, demoRate); err != nil {
		p.Stop()
		return err
	}
	outputs := p.RetrieveBatch(3, retrieveTimeout)
	p.Stop()

	stats := p.Statistics()
	log.Info("pipeline outputs",
		zap.Any("outputs", outputs),
		zap.Uint64("processed", stats.TotalProcessed),
		zap.Uint64("errors", stats.TotalErrors))
	return nil
}

// runScenarioFile loads a YAML scenario and runs each pipeline it defines.
func (d *driver) runScenarioFile(ctx context.Context, path string) error {
	sc, err := scenario.Load(path)
	if err != nil {
		return err
	}
	d.log.Info("running scenario", zap.String("name", sc.Name), zap.Int("pipelines", len(sc.Pipelines)))

	reg := strategy.NewNumeric[float64]()
	for _, ps := range sc.Pipelines {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s, err := ps.BuildStrategy(reg)
		if err != nil {
			return fmt.Errorf("pipeline %q: %w", ps.Name, err)
		}
		if err := runOne(ctx, d, ps.Name, d.options(ps.Workers, ps.Capacity), s, ps.Inputs, ps.Rate); err != nil {
			return err
		}
	}
	return nil
}
