package monitoring

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndGather(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordSubmit()
	m.RecordSubmit()
	m.RecordProcessed("scale", 2*time.Millisecond)
	m.RecordError(ReasonOutputTimeout)
	m.SetQueueDepth(QueueInput, 3)
	m.SetWorkersActive(4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ItemsSubmitted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ItemsProcessed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues(ReasonOutputTimeout)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.QueueDepth.WithLabelValues(QueueInput)))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.WorkersActive))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestSnapshotTotals(t *testing.T) {
	m := New(nil)

	m.RecordSubmit()
	m.RecordProcessed("amplify", time.Millisecond)
	m.RecordError(ReasonStrategy)
	m.RecordError(ReasonPanic)

	snap := m.GetSnapshot()
	assert.Equal(t, uint64(1), snap.ItemsSubmitted)
	assert.Equal(t, uint64(1), snap.ItemsProcessed)
	assert.Equal(t, uint64(2), snap.TotalErrors)
	assert.GreaterOrEqual(t, snap.UptimeSeconds, 0.0)
}

func TestMultipleCollectorsCoexist(t *testing.T) {
	// Separate registries: no duplicate registration panic.
	a := New(prometheus.NewRegistry())
	b := New(prometheus.NewRegistry())

	a.RecordSubmit()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.ItemsSubmitted))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ItemsSubmitted))
}
