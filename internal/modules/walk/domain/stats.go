package domain

import (
	"math"
	"sort"
	"time"
)

type Summary struct {
	AverageSteps  int
	AveragePace   float64
	WalkCount     int
	TotalSteps    int
	TotalDuration time.Duration
	BestSteps     int
}

// Summarize aggregates a filtered set of walks. AveragePace is the mean of each
// walk's stored pace, not total steps over total time.
func Summarize(records []WalkRecord) Summary {
	if len(records) == 0 {
		return Summary{}
	}
	var totalSteps int
	var paceSum float64
	var totalMS int64
	best := 0
	for _, r := range records {
		totalSteps += r.Steps
		paceSum += r.StepsPerMinute
		totalMS += r.DurationMS
		if r.Steps > best {
			best = r.Steps
		}
	}
	n := float64(len(records))
	return Summary{
		AverageSteps:  int(math.Round(float64(totalSteps) / n)),
		AveragePace:   RoundTo(paceSum/n, 1),
		WalkCount:     len(records),
		TotalSteps:    totalSteps,
		TotalDuration: time.Duration(totalMS) * time.Millisecond,
		BestSteps:     best,
	}
}

type DayTotal struct {
	Day        time.Time
	Steps      int
	Walks      int
	DurationMS int64
}

// DailySeries buckets walks by calendar day in loc, ordered by day.
func DailySeries(records []WalkRecord, loc *time.Location) []DayTotal {
	if loc == nil {
		loc = time.UTC
	}
	byDay := map[time.Time]*DayTotal{}
	for _, r := range records {
		local := r.Date.In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		total, ok := byDay[day]
		if !ok {
			total = &DayTotal{Day: day}
			byDay[day] = total
		}
		total.Steps += r.Steps
		total.Walks++
		total.DurationMS += r.DurationMS
	}
	out := make([]DayTotal, 0, len(byDay))
	for _, total := range byDay {
		out = append(out, *total)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

func RoundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
