package dispatch

import (
	"time"
)

// Unassigned is the driver value of an assignment no driver could take
const Unassigned = "No Driver"

// Job represents a single pickup read from the input
type Job struct {
	// PickupDate carries the calendar day; its clock is ignored.
	PickupDate time.Time
	// PickupTime carries the clock; its calendar day is ignored. The zero
	// time.Time means the time is missing, so midnight must be a non-zero
	// value such as jobs.Clock(0) or time.Date(0, 1, 1, 0, 0, 0, 0, loc).
	PickupTime time.Time
	Location   string

	// Row is the 1-based source row, 0 when the job did not come from a file
	Row int
}

// Datetime combines the pickup day and clock into one instant
func (j Job) Datetime() time.Time {
	y, m, d := j.PickupDate.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, j.PickupDate.Location()).Add(ClockOf(j.PickupTime))
}

// Assignment represents the outcome for one job of a run
type Assignment struct {
	PickupDate time.Time
	Location   string
	PickupTime time.Time
	Driver     string
}

// IsAssigned reports whether a driver took the job
func (a Assignment) IsAssigned() bool {
	return a.Driver != Unassigned
}

// Datetime combines the pickup day and clock into one instant
func (a Assignment) Datetime() time.Time {
	return Job{PickupDate: a.PickupDate, PickupTime: a.PickupTime}.Datetime()
}

// ClockOf returns the time elapsed since midnight on t's own day
func ClockOf(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second + time.Duration(t.Nanosecond())
}

// SameDay reports whether a and b fall on the same calendar date
func SameDay(a, b time.Time) bool {
	ya, ma, da := a.Date()
	yb, mb, db := b.Date()
	return ya == yb && ma == mb && da == db
}
