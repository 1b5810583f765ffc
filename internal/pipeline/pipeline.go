package pipeline

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/streamkit/procflow/internal/infrastructure/logging"
	"github.com/streamkit/procflow/internal/infrastructure/monitoring"
	"github.com/streamkit/procflow/internal/queue"
	"github.com/streamkit/procflow/internal/shared/id"
	"github.com/streamkit/procflow/internal/strategy"
)

var (
	// ErrNoStrategy is returned by Start when no strategy is installed.
	ErrNoStrategy = errors.New("no strategy installed")

	// ErrStrategyPanic wraps a panic recovered from a strategy Apply call.
	ErrStrategyPanic = errors.New("strategy panicked")
)

// Defaults applied by Options.withDefaults.
const (
	DefaultWorkers       = 4
	DefaultQueueCapacity = 10000
	DefaultPollInterval  = 500 * time.Millisecond
	DefaultPushTimeout   = 500 * time.Millisecond
)

// Options configures a pipeline. The worker count and queue capacity are
// fixed for the pipeline's lifetime.
type Options struct {
	// Workers is the number of worker goroutines spawned by Start.
	Workers int

	// QueueCapacity bounds each of the input and output queues.
	QueueCapacity int

	// PollInterval bounds each worker dequeue, so workers observe Stop
	// within one interval even when the input queue stays empty.
	PollInterval time.Duration

	// PushTimeout bounds the output enqueue; results that cannot be
	// delivered within it are dropped and counted as errors.
	PushTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.QueueCapacity <= 0 {
		o.QueueCapacity = DefaultQueueCapacity
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.PushTimeout <= 0 {
		o.PushTimeout = DefaultPushTimeout
	}
	return o
}

// run holds the state of one start/stop cycle. Queue shutdown is permanent
// per queue instance, so every cycle gets a fresh input queue; workers are
// bound to their run and drain its queue fully before exiting.
type run[T any] struct {
	id     id.RunID
	input  *queue.Queue[T]
	active atomic.Bool
	wg     sync.WaitGroup
}

// Pipeline owns an input queue, an output queue, a fixed worker pool and
// the currently installed strategy.
type Pipeline[T any] struct {
	opts    Options
	id      id.PipelineID
	log     *logging.Logger
	metrics *monitoring.Metrics

	mu  sync.Mutex // guards cur across lifecycle transitions
	cur *run[T]

	output *queue.Queue[T]

	// strategyMu serializes strategy invocation across workers, so a
	// stateful accumulator is never updated concurrently. SetStrategy
	// takes the same mutex: a swap waits for the in-flight transform and
	// applies from the next dequeued item on.
	strategyMu sync.Mutex
	strat      strategy.Strategy[T]

	processed     atomic.Uint64
	errorCount    atomic.Uint64
	activeWorkers atomic.Int32
}

// New creates a stopped pipeline. A nil logger disables logging.
func New[T any](opts Options, log *logging.Logger) *Pipeline[T] {
	opts = opts.withDefaults()
	if log == nil {
		log = logging.NewNop()
	}

	p := &Pipeline[T]{
		opts:   opts,
		id:     id.NewPipelineID(),
		log:    log.Named("pipeline"),
		output: queue.New[T](opts.QueueCapacity),
	}
	p.log.Info("pipeline initialized",
		zap.String("pipeline_id", p.id.String()),
		zap.Int("workers", opts.Workers),
		zap.Int("queue_capacity", opts.QueueCapacity),
	)
	return p
}

// WithMetrics attaches a metrics collector.
func (p *Pipeline[T]) WithMetrics(m *monitoring.Metrics) *Pipeline[T] {
	p.metrics = m
	return p
}

// ID returns the pipeline's identifier.
func (p *Pipeline[T]) ID() id.PipelineID {
	return p.id
}

// SetStrategy installs the strategy applied to subsequent items. It may be
// called while the pipeline is running; the swap takes effect for the next
// item any worker dequeues. A nil strategy is ignored.
func (p *Pipeline[T]) SetStrategy(s strategy.Strategy[T]) {
	if s == nil {
		p.log.Warn("ignoring nil strategy")
		return
	}
	p.strategyMu.Lock()
	p.strat = s
	p.strategyMu.Unlock()
	p.log.Info("strategy installed", zap.String("strategy", s.Name()))
}

// Start spawns the configured number of workers. Starting an already
// running pipeline is a logged no-op. Starting with no strategy installed
// returns ErrNoStrategy and leaves the pipeline stopped.
func (p *Pipeline[T]) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cur != nil && p.cur.active.Load() {
		p.log.Warn("pipeline already running")
		return nil
	}

	p.strategyMu.Lock()
	installed := p.strat != nil
	p.strategyMu.Unlock()
	if !installed {
		p.log.Error("cannot start: no strategy installed")
		return ErrNoStrategy
	}

	r := &run[T]{
		id:    id.NewRunID(),
		input: queue.New[T](p.opts.QueueCapacity),
	}
	r.active.Store(true)
	p.cur = r

	p.log.Info("starting pipeline",
		zap.String("run_id", r.id.String()),
		zap.Int("workers", p.opts.Workers),
	)
	for i := 0; i < p.opts.Workers; i++ {
		r.wg.Add(1)
		go p.worker(r, i)
	}
	return nil
}

// Stop marks the pipeline stopped, shuts the input queue down and waits
// for every worker to finish draining it. In-flight transforms complete
// naturally; Stop never interrupts them. Idempotent, and safe on a
// never-started pipeline.
func (p *Pipeline[T]) Stop() {
	p.mu.Lock()
	r := p.cur
	if r == nil || !r.active.Swap(false) {
		p.mu.Unlock()
		return
	}
	r.input.Shutdown()
	p.mu.Unlock()

	r.wg.Wait()
	p.log.Info("pipeline stopped",
		zap.String("run_id", r.id.String()),
		zap.Uint64("total_processed", p.processed.Load()),
		zap.Uint64("total_errors", p.errorCount.Load()),
	)
}

// Running reports whether workers are accepting items.
func (p *Pipeline[T]) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cur != nil && p.cur.active.Load()
}

// Submit offers an item to the input queue, blocking up to timeout when
// the queue is full. It returns false without side effect when the
// pipeline is not running.
func (p *Pipeline[T]) Submit(item T, timeout time.Duration) bool {
	p.mu.Lock()
	r := p.cur
	p.mu.Unlock()

	if r == nil || !r.active.Load() {
		p.log.Warn("submit rejected: pipeline not running")
		return false
	}
	if !r.input.Enqueue(item, timeout) {
		return false
	}
	if p.metrics != nil {
		p.metrics.RecordSubmit()
		p.metrics.SetQueueDepth(monitoring.QueueInput, r.input.Len())
	}
	return true
}

// Retrieve removes the oldest result from the output queue, blocking up
// to timeout.
func (p *Pipeline[T]) Retrieve(timeout time.Duration) (T, bool) {
	item, ok := p.output.Dequeue(timeout)
	if ok && p.metrics != nil {
		p.metrics.SetQueueDepth(monitoring.QueueOutput, p.output.Len())
	}
	return item, ok
}

// RetrieveBatch performs count bounded dequeues with an independent
// timeout each and returns however many results arrived in time. It never
// blocks indefinitely per item.
func (p *Pipeline[T]) RetrieveBatch(count int, timeout time.Duration) []T {
	results := make([]T, 0, count)
	for i := 0; i < count; i++ {
		item, ok := p.Retrieve(timeout)
		if !ok {
			continue
		}
		results = append(results, item)
	}
	return results
}

func (p *Pipeline[T]) worker(r *run[T], index int) {
	defer r.wg.Done()

	log := p.log.Named(fmt.Sprintf("worker-%d", index))
	log.Debug("worker started", zap.String("worker_id", id.NewWorkerID().String()))

	count := p.activeWorkers.Add(1)
	if p.metrics != nil {
		p.metrics.SetWorkersActive(int(count))
	}
	defer func() {
		count := p.activeWorkers.Add(-1)
		if p.metrics != nil {
			p.metrics.SetWorkersActive(int(count))
		}
		log.Debug("worker finished")
	}()

	// Keep pulling while the run is active, then drain what is left.
	for r.active.Load() || !r.input.Empty() {
		item, ok := r.input.Dequeue(p.opts.PollInterval)
		if !ok {
			continue
		}
		p.process(log, item)
	}
}

func (p *Pipeline[T]) process(log *logging.Logger, item T) {
	result, name, elapsed, err := p.transform(item)
	if err != nil {
		p.recordError(log, err)
		return
	}

	if !p.output.Enqueue(result, p.opts.PushTimeout) {
		// Deliberate at-most-once policy: the result is dropped, not
		// requeued, when the output side cannot accept it in time.
		p.errorCount.Add(1)
		if p.metrics != nil {
			p.metrics.RecordError(monitoring.ReasonOutputTimeout)
		}
		log.Warn("output queue did not accept result, dropping",
			zap.String("strategy", name),
			zap.Duration("push_timeout", p.opts.PushTimeout),
		)
		return
	}

	p.processed.Add(1)
	if p.metrics != nil {
		p.metrics.RecordProcessed(name, elapsed)
		p.metrics.SetQueueDepth(monitoring.QueueOutput, p.output.Len())
	}
}

// transform applies the installed strategy to one item under the strategy
// mutex. Panics are recovered into errors so a bad item never kills a
// worker.
func (p *Pipeline[T]) transform(item T) (result T, name string, elapsed time.Duration, err error) {
	p.strategyMu.Lock()
	defer p.strategyMu.Unlock()

	s := p.strat
	if s == nil {
		return result, "", 0, ErrNoStrategy
	}
	name = s.Name()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrStrategyPanic, r)
		}
	}()

	start := time.Now()
	result, err = s.Apply(item)
	elapsed = time.Since(start)
	return result, name, elapsed, err
}

func (p *Pipeline[T]) recordError(log *logging.Logger, err error) {
	p.errorCount.Add(1)
	if p.metrics != nil {
		switch {
		case errors.Is(err, ErrStrategyPanic):
			p.metrics.RecordError(monitoring.ReasonPanic)
		case errors.Is(err, ErrNoStrategy):
			p.metrics.RecordError(monitoring.ReasonNoStrategy)
		default:
			p.metrics.RecordError(monitoring.ReasonStrategy)
		}
	}
	log.Error("item processing failed", zap.Error(err))
}
