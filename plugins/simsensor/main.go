package main

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	sensorrpc "pacer/internal/modules/sensor/adapter/out/rpc"

	"github.com/hashicorp/go-plugin"
)

const (
	rateHz   = 60
	cadence  = 1.8 // strides per second
	peak     = 3.5 // m/s² above gravity at heel strike
	gravity  = 9.8
	maxBatch = 256
)

// server synthesizes a walking gait: a sharp vertical spike once per stride on
// top of gravity, with a little lateral sway.
type server struct {
	mu      sync.Mutex
	started time.Time
	next    int64
	rng     *rand.Rand
}

func newServer() *server {
	return &server{started: time.Now(), rng: rand.New(rand.NewPCG(1, 2))}
}

func (s *server) GetInfo(_ context.Context, _ *sensorrpc.Empty) (*sensorrpc.Info, error) {
	return &sensorrpc.Info{Name: "simsensor", Version: "1.0.0", RateHz: rateHz}, nil
}

func (s *server) ReadSamples(_ context.Context, in *sensorrpc.ReadSamplesRequest) (*sensorrpc.ReadSamplesResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit := int(in.Max)
	if limit <= 0 || limit > maxBatch {
		limit = maxBatch
	}
	due := int64(time.Since(s.started).Seconds() * rateHz)
	out := make([]sensorrpc.Sample, 0, limit)
	for s.next < due && len(out) < limit {
		out = append(out, s.sample(s.next))
		s.next++
	}
	return &sensorrpc.ReadSamplesResponse{Samples: out}, nil
}

func (s *server) sample(i int64) sensorrpc.Sample {
	offset := time.Duration(i) * time.Second / rateHz
	t := offset.Seconds()
	phase := math.Sin(2 * math.Pi * cadence * t)
	spike := 0.0
	if phase > 0 {
		spike = peak * math.Pow(phase, 8)
	}
	x := 0.3*math.Sin(math.Pi*cadence*t) + s.rng.NormFloat64()*0.05
	y := 0.2*math.Cos(2*math.Pi*cadence*t) + s.rng.NormFloat64()*0.05
	z := gravity + spike + s.rng.NormFloat64()*0.05
	return sensorrpc.Sample{
		UnixMS: s.started.Add(offset).UnixMilli(),
		X:      &x,
		Y:      &y,
		Z:      &z,
	}
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: sensorrpc.HandshakeConfig,
		Plugins:         sensorrpc.PluginMap(newServer()),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
