package batch

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sherine-k/pickups/pkg/config"
	"github.com/sherine-k/pickups/pkg/dispatch"
	"github.com/sherine-k/pickups/pkg/jobs"
	"github.com/sherine-k/pickups/pkg/metrics"
)

var day = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func pickup(h int, location string) dispatch.Job {
	return dispatch.Job{PickupDate: day, PickupTime: jobs.Clock(time.Duration(h) * time.Hour), Location: location}
}

func TestRunnerRun(t *testing.T) {
	cfg := config.Default()
	cfg.PoolSize = 1
	cfg.Recurring = []config.RecurringPickup{{Location: "SFO", Schedule: "0 12 * * *"}}

	reg := prometheus.NewRegistry()
	rec, err := metrics.NewRecorder(reg)
	require.NoError(t, err)

	runner := NewRunner(cfg, zerolog.Nop(), rec)
	res, err := runner.Run(Request{
		Jobs:       []dispatch.Job{pickup(8, "JFK"), pickup(9, "LGA")},
		TargetDate: day,
	})
	require.NoError(t, err)

	require.Len(t, res.Assignments, 3)
	assert.Equal(t, "SFO", res.Assignments[2].Location, "recurring pickups are merged in")
	assert.Equal(t, "Driver 1", res.Assignments[2].Driver)
	assert.Equal(t, 1, res.Unassigned)
	assert.Equal(t, 2, res.Counts["Driver 1"])
	assert.Equal(t, "first-fit", res.Strategy)
	assert.Equal(t, 1, res.PoolSize)
	assert.NotEmpty(t, res.ID)
	assert.False(t, res.EmptyRoster)

	n, err := testutil.GatherAndCount(reg, "pickups_batch_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRunnerStrategyOverride(t *testing.T) {
	cfg := config.Default()
	runner := NewRunner(cfg, zerolog.Nop(), nil)

	res, err := runner.Run(Request{
		Jobs:       []dispatch.Job{pickup(6, "a"), pickup(9, "b")},
		TargetDate: day,
		Strategy:   "least-loaded",
	})
	require.NoError(t, err)
	assert.Equal(t, "least-loaded", res.Strategy)
	assert.Equal(t, "Driver 2", res.Assignments[1].Driver)

	_, err = runner.Run(Request{TargetDate: day, Strategy: "coin-flip"})
	assert.ErrorIs(t, err, dispatch.ErrUnknownStrategy)
}

func TestRunnerEmptyRoster(t *testing.T) {
	cfg := config.Default()
	cfg.PoolSize = 0

	res, err := NewRunner(cfg, zerolog.Nop(), nil).Run(Request{
		Jobs:       []dispatch.Job{pickup(8, "JFK")},
		TargetDate: day,
	})
	require.NoError(t, err)
	assert.True(t, res.EmptyRoster)
	assert.Equal(t, 1, res.Unassigned)
	assert.Empty(t, res.Counts)
}

func TestRunnerMalformed(t *testing.T) {
	_, err := NewRunner(config.Default(), zerolog.Nop(), nil).Run(Request{
		Jobs:       []dispatch.Job{{PickupDate: day, Row: 3}},
		TargetDate: day,
	})
	var malformed *dispatch.MalformedJobError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 3, malformed.Row)
}

func TestRunnerRunStartBaseline(t *testing.T) {
	cfg := config.Default()
	cfg.Baseline = config.BaselineRunStart

	runner := NewRunner(cfg, zerolog.Nop(), nil)
	runner.now = func() time.Time { return day.Add(10 * time.Hour) }

	res, err := runner.Run(Request{
		Jobs:       []dispatch.Job{pickup(8, "JFK"), pickup(14, "LGA")},
		TargetDate: day,
	})
	require.NoError(t, err)
	assert.Equal(t, dispatch.Unassigned, res.Assignments[0].Driver)
	assert.Equal(t, "Driver 1", res.Assignments[1].Driver)
}
