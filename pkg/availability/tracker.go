// Package availability tracks when each driver of a pool last took a job and
// answers whether the cooldown since then has elapsed.
//
// A Tracker belongs to exactly one assignment run. It must not be shared across
// target dates or input batches.
package availability

import (
	"errors"
	"fmt"
	"time"

	"github.com/sherine-k/pickups/pkg/roster"
)

var (
	// ErrUnknownDriver is returned when a driver outside the pool is recorded
	ErrUnknownDriver = errors.New("driver is not in the pool")
	// ErrTimeRegression is returned when a recorded time precedes the driver's last one
	ErrTimeRegression = errors.New("assignment time precedes last assignment")
)

type entry struct {
	last        time.Time
	constrained bool
	count       int
}

// Tracker holds the last-assigned time of every driver in a pool
type Tracker struct {
	cooldown time.Duration
	entries  map[string]*entry
}

// NewTracker returns a tracker where no driver has been assigned yet.
// Every driver is available for any job until its first assignment.
func NewTracker(pool []roster.Driver, cooldown time.Duration) *Tracker {
	t := &Tracker{
		cooldown: cooldown,
		entries:  make(map[string]*entry, len(pool)),
	}
	for _, d := range pool {
		t.entries[d.Name] = &entry{}
	}
	return t
}

// NewTrackerFrom returns a tracker where every driver is treated as having been
// assigned at baseline. No driver can take a job before baseline + cooldown.
func NewTrackerFrom(pool []roster.Driver, cooldown time.Duration, baseline time.Time) *Tracker {
	t := NewTracker(pool, cooldown)
	for _, e := range t.entries {
		e.last = baseline
		e.constrained = true
	}
	return t
}

// Cooldown returns the minimum rest between two assignments of one driver
func (t *Tracker) Cooldown() time.Duration {
	return t.cooldown
}

// IsAvailable reports whether d may take a job starting at candidate.
// A driver outside the pool is never available.
func (t *Tracker) IsAvailable(d roster.Driver, candidate time.Time) bool {
	e, ok := t.entries[d.Name]
	if !ok {
		return false
	}
	if !e.constrained {
		return true
	}
	return !e.last.Add(t.cooldown).After(candidate)
}

// RecordAssignment marks d as assigned at the given time
func (t *Tracker) RecordAssignment(d roster.Driver, assigned time.Time) error {
	e, ok := t.entries[d.Name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDriver, d.Name)
	}
	if e.constrained && assigned.Before(e.last) {
		return fmt.Errorf("%w: %s at %s, last %s", ErrTimeRegression, d.Name,
			assigned.Format(time.DateTime), e.last.Format(time.DateTime))
	}
	e.last = assigned
	e.constrained = true
	e.count++
	return nil
}

// LastAssigned returns the time d was last assigned. The boolean is false when
// d has no constraining time yet.
func (t *Tracker) LastAssigned(d roster.Driver) (time.Time, bool) {
	e, ok := t.entries[d.Name]
	if !ok || !e.constrained {
		return time.Time{}, false
	}
	return e.last, true
}

// Assignments returns how many jobs have been recorded for d during this run
func (t *Tracker) Assignments(d roster.Driver) int {
	if e, ok := t.entries[d.Name]; ok {
		return e.count
	}
	return 0
}

// Len returns the number of drivers tracked
func (t *Tracker) Len() int {
	return len(t.entries)
}
