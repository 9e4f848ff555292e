package nebula

import (
	"math"
	"testing"

	"github.com/lao-tseu-is-alive/go-nebula-clouds/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// arc samples a circle arc from angle `from` to `to` (radians) every stepDeg.
// Increasing angles run clockwise on screen because Y points down.
func arc(center geometry.Vector2D, radius, from, to, stepDeg float64) []geometry.Vector2D {
	step := stepDeg * math.Pi / 180
	if to < from {
		step = -step
	}
	n := int(math.Abs(to-from) / math.Abs(step))
	pts := make([]geometry.Vector2D, 0, n+1)
	for i := 1; i <= n; i++ {
		a := from + float64(i)*step
		pts = append(pts, center.Add(geometry.NewVector(math.Cos(a), math.Sin(a)).Mul(radius)))
	}
	return pts
}

// trace feeds points to the recognizer every 16 ms and returns every analysis.
func trace(r *Recognizer, start geometry.Vector2D, pts []geometry.Vector2D) []Analysis {
	t := 0.0
	r.Begin(start, t)
	var out []Analysis
	for _, p := range pts {
		t += 16
		if a, ok := r.Append(p, t); ok {
			out = append(out, a)
		}
	}
	return out
}

func TestRecognizer_ShortPathIsNoop(t *testing.T) {
	r := NewRecognizer(DefaultConfig())
	r.Begin(geometry.Vector2D{}, 0)
	_, ok := r.Append(geometry.Vector2D{X: 4}, 16)
	assert.False(t, ok)
	_, ok = r.Append(geometry.Vector2D{X: 4}, 500)
	assert.False(t, ok, "zero length moves never classify")

	_, ok = NewRecognizer(DefaultConfig()).Append(geometry.Vector2D{X: 100}, 0)
	assert.False(t, ok, "samples without a press are ignored")
}

func TestRecognizer_TwoCirclesLockLoop(t *testing.T) {
	tests := []struct {
		name     string
		from, to float64
		wantDir  int
	}{
		{"clockwise", 0, 4 * math.Pi, 1},
		{"counter clockwise", 0, -4 * math.Pi, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRecognizer(DefaultConfig())
			center := geometry.Vector2D{}
			pts := arc(center, 100, tt.from, tt.to, 10)
			out := trace(r, geometry.Vector2D{X: 100}, pts)
			require.NotEmpty(t, out)

			final := out[len(out)-1]
			assert.Equal(t, GestureLoop, final.Type)
			assert.Equal(t, tt.wantDir, final.Direction)
			assert.Equal(t, 0, final.Flips)
			assert.Greater(t, final.ConsecutiveLoops, 0.0)
			assert.Less(t, final.Centroid.Len(), 100.0)

			typ, dir := r.Locked()
			assert.Equal(t, GestureLoop, typ)
			assert.Equal(t, tt.wantDir, dir)

			r.End()
			typ, dir = r.Locked()
			assert.Equal(t, GestureNone, typ)
			assert.Equal(t, 0, dir)
			assert.False(t, r.Active())
		})
	}
}

func TestRecognizer_OppositeTurnFlipsLock(t *testing.T) {
	cfg := DefaultConfig()
	r := NewRecognizer(cfg)
	// two turns clockwise, then two counter clockwise on a tangent circle
	pts := arc(geometry.Vector2D{}, 100, 0, 4*math.Pi, 8)
	pts = append(pts, arc(geometry.Vector2D{X: 200}, 100, math.Pi, -3*math.Pi, 8)...)
	out := trace(r, geometry.Vector2D{X: 100}, pts)
	require.NotEmpty(t, out)

	for i, a := range out {
		require.Equalf(t, GestureLoop, a.Type, "analysis %d left the loop", i)
	}
	assert.Equal(t, -1, out[len(out)-1].Direction)
	typ, dir := r.Locked()
	assert.Equal(t, GestureLoop, typ)
	assert.Equal(t, -1, dir, "the lock follows the reversed rotation")
	assert.Equal(t, 2, r.Flips())
	assert.Less(t, r.Flips(), cfg.InfinityFlipThreshold)
}

func TestRecognizer_LongGestureKeepsPathBounded(t *testing.T) {
	cfg := DefaultConfig()
	r := NewRecognizer(cfg)
	out := trace(r, geometry.Vector2D{X: 100}, arc(geometry.Vector2D{}, 100, 0, 20*math.Pi, 8))
	require.NotEmpty(t, out)

	keep := cfg.RecentWindow + 2*cfg.PredictionStride
	assert.Less(t, len(r.path), 2*keep)
	assert.GreaterOrEqual(t, len(r.path), keep)
	final := out[len(out)-1]
	assert.Equal(t, GestureLoop, final.Type)
	assert.Equal(t, 1, final.Direction)
	assert.Equal(t, 0, final.Flips)
}

func TestRecognizer_FigureEightFiresInfinityOnce(t *testing.T) {
	const radius = 100.0
	left := geometry.Vector2D{X: -radius}
	right := geometry.Vector2D{X: radius}
	lobeA := arc(left, radius, 0, 2*math.Pi, 8)       // clockwise
	lobeB := arc(right, radius, math.Pi, -math.Pi, 8) // counter clockwise
	var pts []geometry.Vector2D
	pts = append(pts, lobeA...)
	pts = append(pts, lobeB...)
	firstEight := len(pts)
	pts = append(pts, lobeA...)
	pts = append(pts, lobeB...)

	r := NewRecognizer(DefaultConfig())
	r.Begin(geometry.Vector2D{}, 0)
	fired, firedAt := 0, -1
	for i, p := range pts {
		a, ok := r.Append(p, float64(i+1)*16)
		if !ok {
			continue
		}
		if i < firstEight {
			assert.NotEqualf(t, GestureInfinity, a.Type, "one figure-eight is not enough (flips=%d)", a.Flips)
		}
		if a.InfinityFired {
			fired++
			firedAt = i
			assert.GreaterOrEqual(t, a.Flips, DefaultConfig().InfinityFlipThreshold)
		}
	}
	assert.Equal(t, 1, fired, "infinity is one-shot per gesture")
	assert.GreaterOrEqual(t, firedAt, firstEight)
	assert.GreaterOrEqual(t, r.Flips(), 3)
}

func TestRecognizer_StraightSwipeIsLinear(t *testing.T) {
	r := NewRecognizer(DefaultConfig())
	var pts []geometry.Vector2D
	for x := 8.0; x <= 400; x += 8 {
		pts = append(pts, geometry.Vector2D{X: x, Y: 0.5 * x})
	}
	out := trace(r, geometry.Vector2D{}, pts)
	require.NotEmpty(t, out)
	for _, a := range out {
		assert.Equal(t, GestureLinear, a.Type)
		assert.Greater(t, a.Swipe.X, 0.0)
	}
	typ, _ := r.Locked()
	assert.Equal(t, GestureNone, typ, "linear is never locked")
}

func TestRecognizer_FastStrokeIsResampled(t *testing.T) {
	cfg := DefaultConfig()
	r := NewRecognizer(cfg)
	r.Begin(geometry.Vector2D{}, 0)
	r.Append(geometry.Vector2D{X: 80}, 16)
	require.Len(t, r.path, 11, "an 80px jump becomes 10 steps of 8px")
	for i := 1; i < len(r.path); i++ {
		assert.InDelta(t, cfg.MinPointSpacing, r.path[i].Pos.DistanceTo(r.path[i-1].Pos), 1e-9)
		assert.GreaterOrEqual(t, r.path[i].T, r.path[i-1].T)
	}
}

func TestRecognizer_Hold(t *testing.T) {
	cfg := DefaultConfig()
	r := NewRecognizer(cfg)
	r.Begin(geometry.Vector2D{X: 5, Y: 5}, 0)

	spawn, gray := r.Hold(cfg.LongPressMs - 1)
	assert.False(t, spawn)
	assert.False(t, gray)

	spawn, gray = r.Hold(cfg.LongPressMs)
	assert.True(t, spawn)
	assert.False(t, gray)

	spawn, _ = r.Hold(cfg.LongPressMs + 100)
	assert.False(t, spawn, "spawn fires once per press")

	_, gray = r.Hold(cfg.GrayscaleHoldMs)
	assert.True(t, gray)
	_, gray = r.Hold(cfg.GrayscaleHoldMs + 100)
	assert.False(t, gray)

	// moving beyond the radius cancels the hold
	r.Begin(geometry.Vector2D{}, 0)
	r.Append(geometry.Vector2D{X: cfg.LongPressRadius + 1}, 50)
	spawn, gray = r.Hold(cfg.GrayscaleHoldMs)
	assert.False(t, spawn)
	assert.False(t, gray)
}

func BenchmarkRecognizer_Append(b *testing.B) {
	cfg := DefaultConfig()
	r := NewRecognizer(cfg)
	pts := arc(geometry.Vector2D{}, 120, 0, 20*math.Pi, 6)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Begin(geometry.Vector2D{X: 120}, 0)
		for j, p := range pts {
			r.Append(p, float64(j)*16)
		}
	}
}
