package geometry

import "math"

// NormalizeHue wraps any angle in degrees into [0, 360).
func NormalizeHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	// math.Mod(-1e-17, 360)+360 rounds to exactly 360
	if h >= 360 {
		h -= 360
	}
	return h
}

// HueDelta returns the signed shortest angular path from one hue to another,
// in (-180, 180]. HueDelta(10, 350) is -20, not +340.
func HueDelta(from, to float64) float64 {
	d := math.Mod(to-from, 360)
	if d > 180 {
		d -= 360
	}
	if d <= -180 {
		d += 360
	}
	return d
}

// HueDistance is the unsigned shortest angular distance, in [0, 180].
func HueDistance(a, b float64) float64 {
	return math.Abs(HueDelta(a, b))
}

// LerpHue interpolates along the shortest hue path and returns a normalized hue.
func LerpHue(from, to, t float64) float64 {
	return NormalizeHue(from + HueDelta(from, to)*t)
}

// UnwrapAngle folds a radian difference into (-Pi, Pi].
func UnwrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp is the scalar linear interpolation a + (b-a)*t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Map re-maps v from [inMin, inMax] to [outMin, outMax] without clamping.
func Map(v, inMin, inMax, outMin, outMax float64) float64 {
	if inMax == inMin {
		return outMin
	}
	return outMin + (v-inMin)/(inMax-inMin)*(outMax-outMin)
}

// Smoothstep is the cubic Hermite ease 3t²-2t³ with t clamped to [0, 1].
func Smoothstep(t float64) float64 {
	t = Clamp(t, 0, 1)
	return t * t * (3 - 2*t)
}
