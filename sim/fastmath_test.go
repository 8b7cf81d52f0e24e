package sim

import (
	"math"
	"testing"
)

func TestFastTrigOverHeadingRange(t *testing.T) {
	// Exercise the full input range the agent pass produces: wrapped
	// headings in [0, 2*pi), plus the pi/2 shift the cosine path adds.
	const steps = 1000
	for i := 0; i < steps; i++ {
		h := float32(i) / steps * 2 * math.Pi

		if got, want := fastSin(h), float32(math.Sin(float64(h))); absf(got-want) > 0.002 {
			t.Fatalf("fastSin(%v) = %v, want %v", h, got, want)
		}
		if got, want := fastCos(h), float32(math.Cos(float64(h))); absf(got-want) > 0.002 {
			t.Fatalf("fastCos(%v) = %v, want %v", h, got, want)
		}
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		name string
		in   float32
		want float32
	}{
		{"zero", 0, 0},
		{"already in range", 1.5, 1.5},
		{"just above pi", math.Pi + 0.5, -math.Pi + 0.5},
		{"just below minus pi", -math.Pi - 0.5, math.Pi - 0.5},
		{"near two pi", 2*math.Pi - 0.25, -0.25},
		{"cosine path max", 2*math.Pi + math.Pi/2 - 0.01, math.Pi/2 - 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeAngle(tt.in)
			if absf(got-tt.want) > 1e-5 {
				t.Errorf("normalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
			}
			if got < -math.Pi-1e-5 || got > math.Pi+1e-5 {
				t.Errorf("normalizeAngle(%v) = %v outside [-pi, pi]", tt.in, got)
			}
		})
	}
}
