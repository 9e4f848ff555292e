package geometry

import (
	perlin "github.com/aquilax/go-perlin"
)

// Perlin parameters: weight 2 and harmonic spacing 2 are the usual values,
// three octaves give organic but still smooth variations.
const (
	noiseAlpha   = 2.0
	noiseBeta    = 2.0
	noiseOctaves = 3
)

// Noise is a deterministic coherent noise source returning values in [0, 1].
// The same key always yields the same value for a given seed, which keeps
// placements stable within a frame while still varying across cycles.
type Noise struct {
	p *perlin.Perlin
}

// NewNoise builds a seeded noise source.
func NewNoise(seed int64) *Noise {
	return &Noise{p: perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, seed)}
}

// At samples 1D noise.
func (n *Noise) At(x float64) float64 {
	return unit(n.p.Noise1D(x))
}

// At2 samples 2D noise.
func (n *Noise) At2(x, y float64) float64 {
	return unit(n.p.Noise2D(x, y))
}

// unit maps the signed perlin output into [0, 1].
func unit(v float64) float64 {
	return Clamp(0.5+0.5*v, 0, 1)
}
