package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sherine-k/pickups/pkg/dispatch"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewRecorder(reg)
	require.NoError(t, err)

	rec.RecordBatch([]dispatch.Assignment{
		{Driver: "Driver 1"},
		{Driver: dispatch.Unassigned},
		{Driver: "Driver 2"},
	}, 20*time.Millisecond)
	rec.RecordFailure()

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.jobs.WithLabelValues("assigned")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.jobs.WithLabelValues("unassigned")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.batches.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.batches.WithLabelValues("rejected")))
	assert.Equal(t, 1, testutil.CollectAndCount(rec.duration))
}

func TestRecorderReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewRecorder(reg)
	require.NoError(t, err)
	second, err := NewRecorder(reg)
	require.NoError(t, err)

	first.RecordFailure()
	assert.Equal(t, 1.0, testutil.ToFloat64(second.batches.WithLabelValues("rejected")))
}
