package jobs

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sherine-k/pickups/pkg/config"
	"github.com/sherine-k/pickups/pkg/dispatch"
)

// Expand generates the jobs of every recurring pickup that fire on date.
// Jobs are grouped by pickup in configuration order, each group in time order.
func Expand(recurring []config.RecurringPickup, date time.Time) ([]dispatch.Job, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

	start := midnight(date, date.Location())
	end := start.AddDate(0, 0, 1)

	jobs := []dispatch.Job{}
	for _, pickup := range recurring {
		schedule, err := parser.Parse(pickup.Schedule)
		if err != nil {
			return nil, fmt.Errorf("recurring pickup %s: failed to parse schedule: %w", pickup.Location, err)
		}

		// Next is strictly after its argument, so step back to include midnight
		current := start.Add(-time.Second)
		for {
			next := schedule.Next(current)
			if next.IsZero() || !next.Before(end) {
				break
			}

			jobs = append(jobs, dispatch.Job{
				PickupDate: start,
				PickupTime: Clock(next.Sub(start)),
				Location:   pickup.Location,
			})

			current = next
		}
	}

	return jobs, nil
}
