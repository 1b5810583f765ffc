// Package id provides typed, prefixed ULID generation.
//
// ULIDs are lexicographically sortable by creation time, so pipeline and
// run identifiers order naturally in logs. Prefixes (pipe_*, wrk_*,
// run_*) make the type of an identifier obvious when it shows up in a log
// line or a statistics snapshot.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// PipelineID identifies a pipeline instance.
type PipelineID string

// WorkerID identifies one worker goroutine within a run.
type WorkerID string

// RunID identifies one start/stop cycle of a pipeline.
type RunID string

const (
	PipelinePrefix = "pipe"
	WorkerPrefix   = "wrk"
	RunPrefix      = "run"
)

// Generator generates ULIDs with optional prefixes.
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the shared generator backed by crypto/rand.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator(rand.Reader)
	})
	return defaultGenerator
}

// NewGenerator creates a generator with the given entropy source. Tests
// can pass a deterministic reader.
func NewGenerator(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID.
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string.
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewPipelineID generates a new pipeline ID.
func NewPipelineID() PipelineID {
	return PipelineID(Default().GenerateWithPrefix(PipelinePrefix))
}

// NewWorkerID generates a new worker ID.
func NewWorkerID() WorkerID {
	return WorkerID(Default().GenerateWithPrefix(WorkerPrefix))
}

// NewRunID generates a new run ID.
func NewRunID() RunID {
	return RunID(Default().GenerateWithPrefix(RunPrefix))
}

func (id PipelineID) String() string { return string(id) }
func (id WorkerID) String() string   { return string(id) }
func (id RunID) String() string      { return string(id) }

// IsValid checks that a prefixed ID carries the expected prefix and a
// parseable ULID payload.
func IsValid(id, prefix string) bool {
	payload, ok := strings.CutPrefix(id, prefix+"_")
	if !ok {
		return false
	}
	_, err := ulid.Parse(payload)
	return err == nil
}

// Timestamp extracts the creation time from a prefixed ID.
func Timestamp(id string) (time.Time, error) {
	_, payload, ok := strings.Cut(id, "_")
	if !ok {
		return time.Time{}, fmt.Errorf("malformed id: %q", id)
	}
	parsed, err := ulid.Parse(payload)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
