// Package batch runs one assignment batch end to end: recurring pickups are
// merged in, a fresh pool and tracker are built, and the result is tallied.
package batch

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sherine-k/pickups/pkg/config"
	"github.com/sherine-k/pickups/pkg/dispatch"
	"github.com/sherine-k/pickups/pkg/jobs"
	"github.com/sherine-k/pickups/pkg/metrics"
	"github.com/sherine-k/pickups/pkg/roster"
	"github.com/sherine-k/pickups/pkg/tally"
)

// Result is the outcome of one batch
type Result struct {
	ID          string
	TargetDate  time.Time
	Strategy    string
	PoolSize    int
	Assignments []dispatch.Assignment
	Counts      tally.Counts
	Unassigned  int
	// EmptyRoster is set when jobs existed but the pool had no drivers
	EmptyRoster bool
}

// Request describes a batch to run
type Request struct {
	Jobs       []dispatch.Job
	TargetDate time.Time
	// Strategy overrides the configured strategy when not empty
	Strategy string
}

// Runner executes batches against a configuration. A Runner holds no state
// between batches and may be used from concurrent requests.
type Runner struct {
	cfg      *config.Config
	log      zerolog.Logger
	recorder *metrics.Recorder
	now      func() time.Time
}

// NewRunner creates a new runner. recorder may be nil.
func NewRunner(cfg *config.Config, log zerolog.Logger, recorder *metrics.Recorder) *Runner {
	return &Runner{
		cfg:      cfg,
		log:      log,
		recorder: recorder,
		now:      time.Now,
	}
}

// Run assigns the request's jobs, plus any recurring pickups firing on the
// target date, to a freshly generated pool.
func (r *Runner) Run(req Request) (*Result, error) {
	started := r.now()

	strategyName := req.Strategy
	if strategyName == "" {
		strategyName = r.cfg.Strategy
	}
	strategy, err := dispatch.StrategyByName(strategyName)
	if err != nil {
		r.recordFailure()
		return nil, err
	}

	recurring, err := jobs.Expand(r.cfg.Recurring, req.TargetDate)
	if err != nil {
		r.recordFailure()
		return nil, err
	}
	all := make([]dispatch.Job, 0, len(req.Jobs)+len(recurring))
	all = append(all, req.Jobs...)
	all = append(all, recurring...)

	id := uuid.NewString()
	opts := dispatch.Options{
		Strategy: strategy,
		Logger:   r.log.With().Str("batch", id).Logger(),
	}
	if r.cfg.Baseline == config.BaselineRunStart {
		opts.RunStart = started
	}

	pool := roster.GeneratePool(r.cfg.PoolSize)
	assignments, err := dispatch.NewEngine(pool, r.cfg.Cooldown, opts).Assign(all, req.TargetDate)

	result := &Result{
		ID:         id,
		TargetDate: req.TargetDate,
		Strategy:   strategy.Name(),
		PoolSize:   len(pool),
	}

	var emptyRoster *dispatch.EmptyRosterError
	switch {
	case errors.As(err, &emptyRoster):
		result.EmptyRoster = true
		r.log.Warn().Str("batch", id).Int("jobs", emptyRoster.Jobs).Msg("no drivers in pool, every job left unassigned")
	case err != nil:
		r.recordFailure()
		return nil, fmt.Errorf("batch %s: %w", id, err)
	}

	result.Assignments = assignments
	result.Counts = tally.CountByDriver(assignments)
	result.Unassigned = tally.Unassigned(assignments)

	if r.recorder != nil {
		r.recorder.RecordBatch(assignments, r.now().Sub(started))
	}

	r.log.Info().
		Str("batch", id).
		Str("date", req.TargetDate.Format(time.DateOnly)).
		Int("jobs", len(assignments)).
		Int("recurring", len(recurring)).
		Int("unassigned", result.Unassigned).
		Int("drivers_used", len(result.Counts)).
		Msg("batch completed")

	return result, nil
}

// Reject counts a batch that was refused before it could run, such as an
// upload whose rows failed to parse.
func (r *Runner) Reject() {
	r.recordFailure()
}

func (r *Runner) recordFailure() {
	if r.recorder != nil {
		r.recorder.RecordFailure()
	}
}
