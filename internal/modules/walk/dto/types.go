package dto

import "time"

type AppendInput struct {
	Date           time.Time
	DurationMS     int64
	Steps          int
	StepsPerMinute float64
}

type WalkOutput struct {
	ID             string    `json:"id"`
	Index          int       `json:"index"`
	Date           time.Time `json:"date"`
	DurationMS     int64     `json:"duration"`
	Steps          int       `json:"steps"`
	StepsPerMinute float64   `json:"stepsPerMinute"`
}

type DeleteOutput struct {
	Deleted bool       `json:"deleted"`
	Walk    WalkOutput `json:"walk"`
}

type StatsOutput struct {
	Period          string  `json:"period"`
	AverageSteps    int     `json:"averageSteps"`
	AveragePace     float64 `json:"averagePace"`
	WalkCount       int     `json:"walkCount"`
	TotalSteps      int     `json:"totalSteps"`
	TotalDurationMS int64   `json:"totalDuration"`
	BestSteps       int     `json:"bestSteps"`
}

type ChartPoint struct {
	Day        time.Time `json:"day"`
	Steps      int       `json:"steps"`
	Walks      int       `json:"walks"`
	DurationMS int64     `json:"duration"`
}

type ExportInput struct {
	Format string
	Path   string
	Period string
}

type ExportOutput struct {
	Path   string
	Format string
	Count  int
}
