package domain_test

import (
	"strings"
	"testing"
	"time"

	"pacer/internal/modules/sensor/domain"
)

func TestMissingAxesReadAsZero(t *testing.T) {
	t.Parallel()
	s := domain.Sample{X: domain.Axis(1.5), Z: domain.Axis(9.8)}
	x, y, z := s.Components()
	if x != 1.5 || y != 0 || z != 9.8 {
		t.Fatalf("unexpected components: %v %v %v", x, y, z)
	}
	if x, y, z := (domain.Sample{}).Components(); x != 0 || y != 0 || z != 0 {
		t.Fatalf("empty sample should be all zero")
	}
}

func TestSampleEvent(t *testing.T) {
	t.Parallel()
	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	e := domain.SampleEvent(domain.Sample{At: at, Y: domain.Axis(2)})
	if e.Kind != domain.EventSample || !e.At.Equal(at) || e.Y != 2 || e.X != 0 {
		t.Fatalf("unexpected event: %+v", e)
	}
}

func TestSyntheticFires(t *testing.T) {
	t.Parallel()
	s := domain.DefaultSynthetic()
	if s.Fires(0.05) {
		t.Fatalf("draws under the skip probability should be dropped")
	}
	if !s.Fires(0.1) || !s.Fires(0.99) {
		t.Fatalf("draws at or above the skip probability should fire")
	}
	if err := (domain.Synthetic{Interval: 0, Skip: 0.1}).Validate(); err == nil {
		t.Fatalf("zero interval should be invalid")
	}
	if err := (domain.Synthetic{Interval: time.Second, Skip: 1}).Validate(); err == nil {
		t.Fatalf("skip of 1 would never fire")
	}
}

func TestManifestValidate(t *testing.T) {
	t.Parallel()
	if err := (domain.Manifest{}).Validate(); err == nil {
		t.Fatalf("binary should be required")
	}
	if err := (domain.Manifest{Binary: "/bin/simsensor"}).Validate(); err != nil {
		t.Fatalf("checksum should be optional: %v", err)
	}
	if err := (domain.Manifest{Binary: "/bin/simsensor", SHA256: "ABC"}).Validate(); err == nil {
		t.Fatalf("malformed checksum should fail")
	}
	if err := (domain.Manifest{Binary: "/bin/simsensor", SHA256: strings.Repeat("a", 64)}).Validate(); err != nil {
		t.Fatalf("valid checksum rejected: %v", err)
	}
}
