package dispatch

import (
	"fmt"

	"github.com/sherine-k/pickups/pkg/availability"
	"github.com/sherine-k/pickups/pkg/roster"
)

// Strategy picks which of the currently available drivers takes a job.
// available is never empty and is given in pool order.
type Strategy interface {
	Name() string
	Select(available []roster.Driver, state *availability.Tracker) roster.Driver
}

// FirstFit takes the first available driver in pool order
type FirstFit struct{}

func (FirstFit) Name() string { return "first-fit" }

func (FirstFit) Select(available []roster.Driver, _ *availability.Tracker) roster.Driver {
	return available[0]
}

// LeastRecent prefers drivers that have not worked yet, then the one whose
// last job is the oldest. Ties keep pool order.
type LeastRecent struct{}

func (LeastRecent) Name() string { return "least-recent" }

func (LeastRecent) Select(available []roster.Driver, state *availability.Tracker) roster.Driver {
	best := available[0]
	bestLast, bestSeen := state.LastAssigned(best)
	for _, d := range available[1:] {
		if !bestSeen {
			break
		}
		last, seen := state.LastAssigned(d)
		if !seen || last.Before(bestLast) {
			best, bestLast, bestSeen = d, last, seen
		}
	}
	return best
}

// LeastLoaded takes the driver with the fewest jobs so far in this run.
// Ties keep pool order.
type LeastLoaded struct{}

func (LeastLoaded) Name() string { return "least-loaded" }

func (LeastLoaded) Select(available []roster.Driver, state *availability.Tracker) roster.Driver {
	best := available[0]
	bestCount := state.Assignments(best)
	for _, d := range available[1:] {
		if n := state.Assignments(d); n < bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// StrategyByName returns the strategy registered under name
func StrategyByName(name string) (Strategy, error) {
	switch name {
	case "", "first-fit":
		return FirstFit{}, nil
	case "least-recent":
		return LeastRecent{}, nil
	case "least-loaded":
		return LeastLoaded{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}
