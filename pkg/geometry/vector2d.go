// Package geometry holds the plane math shared by the nebula engine and its
// renderers: vectors, polygons, hue arithmetic and noise.
//
// Engine positions are centered on the middle of the canvas, X grows to the
// right and Y grows downward like the screen.
package geometry

import (
	"fmt"
	"math"
)

// Epsilon is the tolerance of the approximate comparisons below.
const Epsilon = 1e-9

// Vector2D is a point or a displacement in the plane.
type Vector2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func NewVector(x, y float64) Vector2D { return Vector2D{X: x, Y: y} }

// NewVectorPolar builds a vector from a length and a heading in radians.
// Components closer to zero than Epsilon are snapped to zero.
func NewVectorPolar(radius, theta float64) Vector2D {
	sin, cos := math.Sincos(theta)
	return Vector2D{X: snap(radius * cos), Y: snap(radius * sin)}
}

func snap(f float64) float64 {
	if math.Abs(f) < Epsilon {
		return 0
	}
	return f
}

func (v Vector2D) String() string { return fmt.Sprintf("(%.2f, %.2f)", v.X, v.Y) }

func (v Vector2D) Add(w Vector2D) Vector2D { return Vector2D{X: v.X + w.X, Y: v.Y + w.Y} }
func (v Vector2D) Sub(w Vector2D) Vector2D { return Vector2D{X: v.X - w.X, Y: v.Y - w.Y} }
func (v Vector2D) Mul(k float64) Vector2D  { return Vector2D{X: v.X * k, Y: v.Y * k} }
func (v Vector2D) Dot(w Vector2D) float64  { return v.X*w.X + v.Y*w.Y }

// Cross is the signed area of the parallelogram spanned by v and w.
// On screen (Y down) it is positive when w turns clockwise from v.
func (v Vector2D) Cross(w Vector2D) float64 { return v.X*w.Y - v.Y*w.X }

// Perp is v turned a quarter clockwise on screen.
func (v Vector2D) Perp() Vector2D { return Vector2D{X: -v.Y, Y: v.X} }

func (v Vector2D) LenSqr() float64 { return v.Dot(v) }
func (v Vector2D) Len() float64    { return math.Hypot(v.X, v.Y) }

// Normalize returns the unit vector of v, or zero for a vanishing v.
func (v Vector2D) Normalize() Vector2D {
	l := v.Len()
	if l < Epsilon {
		return Vector2D{}
	}
	return v.Mul(1 / l)
}

// ClampLen shortens v to at most limit, keeping its heading.
func (v Vector2D) ClampLen(limit float64) Vector2D {
	if l := v.Len(); l > limit && l >= Epsilon {
		return v.Mul(limit / l)
	}
	return v
}

func (v Vector2D) DistanceTo(w Vector2D) float64        { return v.Sub(w).Len() }
func (v Vector2D) DistanceSquaredTo(w Vector2D) float64 { return v.Sub(w).LenSqr() }

// Angle is the heading of v in radians, within [-Pi, Pi].
func (v Vector2D) Angle() float64 { return math.Atan2(v.Y, v.X) }

// Lerp moves from v toward w by the fraction t.
func (v Vector2D) Lerp(w Vector2D, t float64) Vector2D {
	return Vector2D{X: Lerp(v.X, w.X, t), Y: Lerp(v.Y, w.Y, t)}
}

// Eq compares componentwise within Epsilon.
func (v Vector2D) Eq(w Vector2D) bool {
	return math.Abs(v.X-w.X) <= Epsilon && math.Abs(v.Y-w.Y) <= Epsilon
}

// Centroid is the mean of the points, zero when there are none.
func Centroid(points []Vector2D) Vector2D {
	var sum Vector2D
	for _, p := range points {
		sum = sum.Add(p)
	}
	if len(points) == 0 {
		return sum
	}
	return sum.Mul(1 / float64(len(points)))
}
