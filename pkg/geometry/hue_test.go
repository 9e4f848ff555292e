package geometry

import (
	"math"
	"math/rand/v2"
	"testing"
)

func TestNormalizeHue(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{359.5, 359.5},
		{360, 0},
		{725, 5},
		{-10, 350},
		{-370, 350},
	}
	for _, tt := range tests {
		if got := NormalizeHue(tt.in); !near(got, tt.want) {
			t.Errorf("NormalizeHue(%v) = %v; want %v", tt.in, got, tt.want)
		}
	}
}

func TestHueDelta(t *testing.T) {
	tests := []struct {
		name     string
		from, to float64
		want     float64
	}{
		{"wraps backwards through zero", 10, 350, -20},
		{"wraps forwards through zero", 350, 10, 20},
		{"plain forward", 100, 140, 40},
		{"plain backward", 140, 100, -40},
		{"opposite picks positive", 0, 180, 180},
		{"same hue", 42, 42, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HueDelta(tt.from, tt.to); !near(got, tt.want) {
				t.Errorf("HueDelta(%v, %v) = %v; want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

// For every hue pair the path never exceeds 180 degrees and it
// points towards the shorter side of the wheel.
func TestHueDelta_ShortestPathProperty(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 20000; i++ {
		h1 := r.Float64() * 360
		h2 := r.Float64() * 360
		d := HueDelta(h1, h2)
		if math.Abs(d) > 180 {
			t.Fatalf("HueDelta(%v, %v) = %v exceeds 180", h1, h2, d)
		}
		if got := NormalizeHue(h1 + d); HueDistance(got, h2) > 1e-6 {
			t.Fatalf("h1 + delta = %v does not land on %v", got, h2)
		}
		cw := NormalizeHue(h2 - h1)
		if cw < 180-1e-9 && d < 0 {
			t.Fatalf("HueDelta(%v, %v) = %v; forward path %v is shorter", h1, h2, d, cw)
		}
		if cw > 180+1e-9 && d > 0 {
			t.Fatalf("HueDelta(%v, %v) = %v; backward path %v is shorter", h1, h2, d, 360-cw)
		}
	}
}

func TestLerpHue(t *testing.T) {
	if got := LerpHue(10, 350, 0.5); !near(got, 0) {
		t.Errorf("LerpHue(10, 350, 0.5) = %v; want 0", got)
	}
	if got := LerpHue(350, 30, 0.25); !near(got, 0) {
		t.Errorf("LerpHue(350, 30, 0.25) = %v; want 0", got)
	}
	for _, tt := range []float64{0, 0.3, 0.7, 1} {
		got := LerpHue(300, 60, tt)
		if got < 0 || got >= 360 {
			t.Errorf("LerpHue out of range: %v", got)
		}
	}
}

func TestSmoothstepAndMap(t *testing.T) {
	if Smoothstep(-1) != 0 || Smoothstep(2) != 1 {
		t.Error("Smoothstep must clamp its input")
	}
	if !near(Smoothstep(0.5), 0.5) {
		t.Errorf("Smoothstep(0.5) = %v; want 0.5", Smoothstep(0.5))
	}
	if got := Map(0.5, 0, 1, 38, 48); !near(got, 43) {
		t.Errorf("Map = %v; want 43", got)
	}
	if got := Map(3, 1, 1, 7, 9); got != 7 {
		t.Errorf("Map with empty input range = %v; want 7", got)
	}
}

func TestUnwrapAngle(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0.1, 0.1},
		{math.Pi + 0.1, -math.Pi + 0.1},
		{-math.Pi - 0.1, math.Pi - 0.1},
		{5 * math.Pi, math.Pi},
	}
	for _, tt := range tests {
		if got := UnwrapAngle(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("UnwrapAngle(%v) = %v; want %v", tt.in, got, tt.want)
		}
	}
}
