package domain

import "math"

// Magnitude is the Euclidean norm of an acceleration vector.
func Magnitude(x, y, z float64) float64 {
	return math.Sqrt(x*x + y*y + z*z)
}

// Filter is a moving average over the most recent magnitudes. Values are
// immutable: Push returns a new Filter and never touches the receiver's window.
type Filter struct {
	capacity int
	window   []float64
}

func NewFilter(capacity int) Filter {
	if capacity < 1 {
		capacity = 1
	}
	return Filter{capacity: capacity}
}

func (f Filter) Push(magnitude float64) (Filter, float64) {
	capacity := f.capacity
	if capacity < 1 {
		capacity = 1
	}
	next := make([]float64, 0, capacity)
	next = append(next, f.window...)
	next = append(next, magnitude)
	for len(next) > capacity {
		next = next[1:]
	}
	out := Filter{capacity: capacity, window: next}
	return out, out.Mean()
}

func (f Filter) Mean() float64 {
	if len(f.window) == 0 {
		return 0
	}
	var sum float64
	for _, v := range f.window {
		sum += v
	}
	return sum / float64(len(f.window))
}

func (f Filter) Reset() Filter {
	return Filter{capacity: f.capacity}
}

func (f Filter) Len() int { return len(f.window) }

func (f Filter) Capacity() int { return f.capacity }
