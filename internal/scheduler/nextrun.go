// Package scheduler materializes concrete issues from recurring issue
// templates on a fixed polling interval, catching up missed occurrences
// after downtime.
package scheduler

import (
	"time"

	"github.com/phrazzld/kanban-api/internal/domain"
)

// ComputeNextRun advances a template's schedule by one occurrence. It is a
// pure function of the previous *scheduled* instant, never of wall-clock
// execution time, which guarantees each scheduled slot is represented at most
// once no matter how late the scheduler processes it.
//
// Advancement rules per frequency:
//   - DAILY: add cfg.Interval days (default 1)
//   - WEEKLY: with cfg.Days set, advance to the earliest weekday in the set
//     strictly after prev's weekday, wrapping to the following week if none
//     remains; otherwise add 7 days
//   - MONTHLY: advance one calendar month; cfg.DayOfMonth, if set, is clamped
//     to the last valid day of the target month
//   - CUSTOM: add 1 day (documented fallback; cron expressions are out of scope)
func ComputeNextRun(prev time.Time, freq domain.Frequency, cfg domain.RecurrenceConfig) time.Time {
	switch freq {
	case domain.FrequencyDaily:
		interval := cfg.Interval
		if interval <= 0 {
			interval = 1
		}
		return prev.AddDate(0, 0, interval)

	case domain.FrequencyWeekly:
		if len(cfg.Days) == 0 {
			return prev.AddDate(0, 0, 7)
		}
		// Smallest strictly-positive day delta to any weekday in the set.
		best := 7
		for _, d := range cfg.Days {
			delta := (int(d) - int(prev.Weekday()) + 7) % 7
			if delta == 0 {
				delta = 7
			}
			if delta < best {
				best = delta
			}
		}
		return prev.AddDate(0, 0, best)

	case domain.FrequencyMonthly:
		year, month, day := prev.Date()
		if cfg.DayOfMonth > 0 {
			day = cfg.DayOfMonth
		}
		// Day zero of month+2 is the last day of month+1; going through it
		// avoids the overflow AddDate would apply to e.g. Jan 31 + 1 month.
		lastDay := time.Date(year, month+2, 0, 0, 0, 0, 0, prev.Location()).Day()
		if day > lastDay {
			day = lastDay
		}
		return time.Date(year, month+1, day,
			prev.Hour(), prev.Minute(), prev.Second(), prev.Nanosecond(), prev.Location())

	default: // CUSTOM and anything unrecognized
		return prev.AddDate(0, 0, 1)
	}
}
