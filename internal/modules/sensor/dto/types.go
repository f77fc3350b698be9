package dto

import "time"

type Event struct {
	Kind string
	At   time.Time
	X    float64
	Y    float64
	Z    float64
}

type ProbeOutput struct {
	Available bool
	Mode      string
	Name      string
	Version   string
	RateHz    int
	Detail    string
}
