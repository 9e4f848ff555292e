package geometry

import (
	"math"
	"math/rand/v2"
)

// Polygon is a closed, ordered list of vertices. The last vertex connects back to the first.
type Polygon []Vector2D

// NewBlobShape returns an organic silhouette around the origin: a regular polygon
// with sides vertices and a random start angle, then depth rounds of midpoint
// subdivision where every new midpoint is pushed by a gaussian offset
// proportional to variance times the edge length.
func NewBlobShape(r *rand.Rand, radius float64, sides, depth int, variance float64) Polygon {
	if sides < 3 {
		sides = 3
	}
	start := r.Float64() * 2 * math.Pi
	step := 2 * math.Pi / float64(sides)

	points := make(Polygon, 0, sides<<max(depth, 0))
	for i := 0; i < sides; i++ {
		points = append(points, NewVectorPolar(radius, start+float64(i)*step))
	}
	return subdivide(r, points, depth, variance)
}

func subdivide(r *rand.Rand, points Polygon, depth int, variance float64) Polygon {
	if depth <= 0 {
		return points
	}
	out := make(Polygon, 0, len(points)*2)
	for i, p1 := range points {
		p2 := points[(i+1)%len(points)]
		mid := p1.Lerp(p2, 0.5)
		spread := variance * p1.DistanceTo(p2)
		mid = mid.Add(Vector2D{r.NormFloat64() * spread, r.NormFloat64() * spread})
		out = append(out, p1, mid)
	}
	return subdivide(r, out, depth-1, variance)
}

// Contains reports whether pt lies inside the polygon (even-odd rule).
func (p Polygon) Contains(pt Vector2D) bool {
	inside := false
	for i, j := 0, len(p)-1; i < len(p); j, i = i, i+1 {
		a, b := p[i], p[j]
		if (a.Y > pt.Y) != (b.Y > pt.Y) &&
			pt.X < (b.X-a.X)*(pt.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// Transform rotates the polygon by angle radians, scales it and moves it to center.
// The receiver is not modified; dst is reused when it has enough capacity.
func (p Polygon) Transform(dst Polygon, center Vector2D, angle, scale float64) Polygon {
	dst = dst[:0]
	cosA, sinA := math.Cos(angle), math.Sin(angle)
	for _, v := range p {
		dst = append(dst, Vector2D{
			X: center.X + (v.X*cosA-v.Y*sinA)*scale,
			Y: center.Y + (v.X*sinA+v.Y*cosA)*scale,
		})
	}
	return dst
}
