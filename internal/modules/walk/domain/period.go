package domain

import (
	"fmt"
	"time"
)

type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

func (p Period) Validate() error {
	switch p {
	case PeriodWeek, PeriodMonth, PeriodAll:
		return nil
	default:
		return fmt.Errorf("unsupported period %q", string(p))
	}
}

// Window is the look-back span of the period; zero means unbounded.
func (p Period) Window() time.Duration {
	switch p {
	case PeriodWeek:
		return 7 * 24 * time.Hour
	case PeriodMonth:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

// FilterByPeriod returns the records dated within the period ending at now,
// in their stored order. The input is never modified.
func FilterByPeriod(records []WalkRecord, period Period, now time.Time) []WalkRecord {
	out := make([]WalkRecord, 0, len(records))
	window := period.Window()
	if window == 0 {
		return append(out, records...)
	}
	cutoff := now.Add(-window)
	for _, r := range records {
		if r.Date.Before(cutoff) {
			continue
		}
		out = append(out, r)
	}
	return out
}
