package dto

import "time"

type StartOutput struct {
	StartedAt time.Time `json:"startedAt"`
	Mode      string    `json:"mode"`
}

type StopOutput struct {
	DurationMS     int64   `json:"duration"`
	Steps          int     `json:"steps"`
	StepsPerMinute float64 `json:"stepsPerMinute"`
	Recorded       bool    `json:"recorded"`
	WalkID         string  `json:"walkId,omitempty"`
}

type ReadoutOutput struct {
	Status         string  `json:"status"`
	ElapsedMS      int64   `json:"elapsed"`
	Steps          int     `json:"steps"`
	StepsPerMinute float64 `json:"stepsPerMinute"`
	Mode           string  `json:"mode,omitempty"`
}
