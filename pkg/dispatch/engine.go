// Package dispatch assigns the pickup jobs of one day to a pool of drivers.
//
// Jobs are processed once, in pickup time order. Each job goes to a driver
// whose cooldown since their previous job has elapsed, chosen among the
// available drivers by a Strategy (first in pool order unless configured
// otherwise). A job no driver can take is emitted with the Unassigned driver;
// earlier decisions are never revisited.
package dispatch

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/sherine-k/pickups/pkg/availability"
	"github.com/sherine-k/pickups/pkg/roster"
)

// Options tunes an Engine. The zero value selects first-fit with an
// unconstrained baseline.
type Options struct {
	Strategy Strategy
	// RunStart, when set, is used as every driver's last assignment before
	// the run, so no driver takes a job before RunStart + cooldown.
	RunStart time.Time
	Logger   zerolog.Logger
}

// Engine runs assignment batches over a fixed pool of drivers
type Engine struct {
	pool     []roster.Driver
	cooldown time.Duration
	strategy Strategy
	runStart time.Time
	log      zerolog.Logger
}

// NewEngine creates a new engine
func NewEngine(pool []roster.Driver, cooldown time.Duration, opts Options) *Engine {
	strategy := opts.Strategy
	if strategy == nil {
		strategy = FirstFit{}
	}

	return &Engine{
		pool:     pool,
		cooldown: cooldown,
		strategy: strategy,
		runStart: opts.RunStart,
		log:      opts.Logger,
	}
}

// Assign runs a first-fit batch with a fresh tracker
func Assign(jobs []Job, targetDate time.Time, pool []roster.Driver, cooldown time.Duration) ([]Assignment, error) {
	return NewEngine(pool, cooldown, Options{Logger: zerolog.Nop()}).Assign(jobs, targetDate)
}

// Assign returns one assignment per job falling on targetDate, ordered by
// pickup time. Jobs sharing a pickup time keep their input order.
//
// A malformed job anywhere in jobs fails the whole batch with a
// *MalformedJobError. When jobs match but the pool is empty, the
// all-unassigned result is returned together with an *EmptyRosterError.
func (e *Engine) Assign(jobs []Job, targetDate time.Time) ([]Assignment, error) {
	if err := validateJobs(jobs); err != nil {
		return nil, err
	}

	// Filter jobs for the target date
	batch := make([]Job, 0, len(jobs))
	for _, job := range jobs {
		if SameDay(job.PickupDate, targetDate) {
			batch = append(batch, job)
		}
	}

	// Sort filtered jobs by pickup time
	sort.SliceStable(batch, func(i, j int) bool {
		return ClockOf(batch[i].PickupTime) < ClockOf(batch[j].PickupTime)
	})

	tracker := e.newTracker()
	assignments := make([]Assignment, 0, len(batch))
	available := make([]roster.Driver, 0, len(e.pool))

	for _, job := range batch {
		puDatetime := job.Datetime()

		// Collect the drivers whose cooldown has elapsed
		available = available[:0]
		for _, driver := range e.pool {
			if tracker.IsAvailable(driver, puDatetime) {
				available = append(available, driver)
			}
		}

		assignment := Assignment{
			PickupDate: job.PickupDate,
			Location:   job.Location,
			PickupTime: job.PickupTime,
			Driver:     Unassigned,
		}

		if len(available) > 0 {
			driver := e.strategy.Select(available, tracker)
			if err := tracker.RecordAssignment(driver, puDatetime); err != nil {
				return nil, fmt.Errorf("strategy %s selected %s: %w", e.strategy.Name(), driver, err)
			}
			assignment.Driver = driver.Name
		}

		e.log.Trace().
			Time("pickup", puDatetime).
			Str("location", job.Location).
			Str("driver", assignment.Driver).
			Int("available", len(available)).
			Msg("job processed")

		assignments = append(assignments, assignment)
	}

	e.log.Debug().
		Str("date", targetDate.Format(time.DateOnly)).
		Str("strategy", e.strategy.Name()).
		Int("input", len(jobs)).
		Int("jobs", len(batch)).
		Int("unassigned", countUnassigned(assignments)).
		Msg("batch assigned")

	if len(e.pool) == 0 && len(batch) > 0 {
		return assignments, &EmptyRosterError{Jobs: len(batch)}
	}
	return assignments, nil
}

func (e *Engine) newTracker() *availability.Tracker {
	if e.runStart.IsZero() {
		return availability.NewTracker(e.pool, e.cooldown)
	}
	return availability.NewTrackerFrom(e.pool, e.cooldown, e.runStart)
}

// validateJobs checks the fields the engine needs before anything is sorted
func validateJobs(jobs []Job) error {
	for i, job := range jobs {
		row := job.Row
		if row == 0 {
			row = i + 1
		}
		if job.PickupDate.IsZero() {
			return &MalformedJobError{Row: row, Field: "pickup date", Reason: "missing"}
		}
		if job.PickupTime.IsZero() {
			return &MalformedJobError{Row: row, Field: "pickup time", Reason: "missing"}
		}
	}
	return nil
}

func countUnassigned(assignments []Assignment) int {
	n := 0
	for _, a := range assignments {
		if !a.IsAssigned() {
			n++
		}
	}
	return n
}
