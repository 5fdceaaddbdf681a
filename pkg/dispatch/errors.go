package dispatch

import (
	"errors"
	"fmt"
)

// ErrUnknownStrategy is returned by StrategyByName for names it does not know
var ErrUnknownStrategy = errors.New("unknown strategy")

// MalformedJobError reports a job record that is missing a required field or
// holds a value that cannot be parsed. The whole batch is rejected.
type MalformedJobError struct {
	Row    int
	Field  string
	Value  string
	Reason string
}

func (e *MalformedJobError) Error() string {
	msg := "malformed job"
	if e.Row > 0 {
		msg = fmt.Sprintf("%s at row %d", msg, e.Row)
	}
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Field)
	}
	if e.Value != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Value)
	}
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	return msg
}

// EmptyRosterError is returned alongside the result when jobs exist for the
// target date but the pool has no drivers. Every job in that result is
// unassigned.
type EmptyRosterError struct {
	Jobs int
}

func (e *EmptyRosterError) Error() string {
	return fmt.Sprintf("empty driver pool: %d jobs left unassigned", e.Jobs)
}
