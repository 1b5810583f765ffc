package pipeline

import "github.com/bytedance/sonic"

// Statistics is a point-in-time snapshot of pipeline state.
type Statistics struct {
	PipelineID     string `json:"pipeline_id"`
	RunID          string `json:"run_id,omitempty"`
	InputDepth     int    `json:"input_depth"`
	OutputDepth    int    `json:"output_depth"`
	TotalProcessed uint64 `json:"total_processed"`
	TotalErrors    uint64 `json:"total_errors"`
	Running        bool   `json:"running"`
	Strategy       string `json:"strategy"`
	Workers        int    `json:"workers"`
	ActiveWorkers  int    `json:"active_workers"`
}

// JSON encodes the snapshot.
func (s Statistics) JSON() ([]byte, error) {
	return sonic.Marshal(s)
}

// Statistics returns a consistent snapshot of queue depths, counters and
// the installed strategy.
func (p *Pipeline[T]) Statistics() Statistics {
	p.mu.Lock()
	r := p.cur
	p.mu.Unlock()

	stats := Statistics{
		PipelineID:     p.id.String(),
		OutputDepth:    p.output.Len(),
		TotalProcessed: p.processed.Load(),
		TotalErrors:    p.errorCount.Load(),
		Strategy:       "none",
		Workers:        p.opts.Workers,
		ActiveWorkers:  int(p.activeWorkers.Load()),
	}
	if r != nil {
		stats.RunID = r.id.String()
		stats.InputDepth = r.input.Len()
		stats.Running = r.active.Load()
	}

	p.strategyMu.Lock()
	if p.strat != nil {
		stats.Strategy = p.strat.Name()
	}
	p.strategyMu.Unlock()

	return stats
}
