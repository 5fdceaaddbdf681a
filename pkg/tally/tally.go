// Package tally derives per-driver load figures from an assignment run.
package tally

import (
	"sort"

	"github.com/sherine-k/pickups/pkg/dispatch"
	"github.com/sherine-k/pickups/pkg/roster"
)

// Counts maps a driver name to the number of jobs it took
type Counts map[string]int

// Entry is one row of Counts in display order
type Entry struct {
	Driver string `json:"driver"`
	Count  int    `json:"count"`
}

// CountByDriver counts the jobs taken by each driver. Unassigned jobs are not
// counted under any key.
func CountByDriver(assignments []dispatch.Assignment) Counts {
	counts := Counts{}
	for _, a := range assignments {
		if a.IsAssigned() {
			counts[a.Driver]++
		}
	}
	return counts
}

// Unassigned returns how many jobs no driver took
func Unassigned(assignments []dispatch.Assignment) int {
	n := 0
	for _, a := range assignments {
		if !a.IsAssigned() {
			n++
		}
	}
	return n
}

// Total returns the sum of all counts
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Max returns the highest single count, 0 for empty counts
func (c Counts) Max() int {
	highest := 0
	for _, n := range c {
		if n > highest {
			highest = n
		}
	}
	return highest
}

// Sorted returns the counts in natural driver order
func (c Counts) Sorted() []Entry {
	entries := make([]Entry, 0, len(c))
	for driver, n := range c {
		entries = append(entries, Entry{Driver: driver, Count: n})
	}
	sort.Slice(entries, func(i, j int) bool {
		return roster.Less(entries[i].Driver, entries[j].Driver)
	})
	return entries
}
