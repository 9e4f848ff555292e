package nebula

import (
	"github.com/lao-tseu-is-alive/go-nebula-clouds/pkg/geometry"
)

// Placed is a circle already occupying the canvas this frame.
type Placed struct {
	Pos    geometry.Vector2D
	Radius float64
	Hue    float64
}

// Placement is the result of a placement search.
type Placement struct {
	Pos       geometry.Vector2D
	Radius    float64
	Attempts  int
	Exhausted bool // no candidate met the separation, the last one was kept
}

// Placer picks positions for new blobs in center-origin world coordinates.
// Candidates come from coherent noise keyed by slot, cycle and attempt, so the
// same request always yields the same position while new cycles move elsewhere.
type Placer struct {
	cfg   *Config
	noise *geometry.Noise
}

func NewPlacer(cfg *Config, noise *geometry.Noise) *Placer {
	return &Placer{cfg: cfg, noise: noise}
}

// noise keys sit off the integer lattice where gradient noise is always zero
const placementKeyOffset = 0.5

// candidate returns the position tried at the given attempt.
func (p *Placer) candidate(slot, cycle, attempt int, radius float64) geometry.Vector2D {
	margin := radius * p.cfg.PlacementMarginFactor
	halfW := p.cfg.Width/2 + margin
	halfH := p.cfg.Height/2 + margin

	key := float64(slot)*10 + float64(cycle)*3.17 + placementKeyOffset
	nx := p.noise.At(key + float64(attempt)*5.31)
	ny := p.noise.At(key + 1000 + float64(attempt)*4.79)

	// perlin output rarely leaves [0.2, 0.8], stretch it over the full range
	nx = geometry.Clamp(geometry.Map(nx, 0.2, 0.8, 0, 1), 0, 1)
	ny = geometry.Clamp(geometry.Map(ny, 0.2, 0.8, 0, 1), 0, 1)
	return geometry.Vector2D{
		X: geometry.Lerp(-halfW, halfW, nx),
		Y: geometry.Lerp(-halfH, halfH, ny),
	}
}

// Place searches up to PlacementAttempts candidates and returns the first one
// far enough from every placed circle. The search never fails: when the budget
// runs out the last candidate is returned with Exhausted set.
func (p *Placer) Place(slot, cycle int, radius, hue float64, placed []Placed) Placement {
	attempts := max(p.cfg.PlacementAttempts, 1)
	var pos geometry.Vector2D
	for attempt := 0; attempt < attempts; attempt++ {
		pos = p.candidate(slot, cycle, attempt, radius)
		if p.fits(pos, radius, hue, placed) {
			return Placement{Pos: pos, Radius: radius, Attempts: attempt + 1}
		}
	}
	return Placement{Pos: pos, Radius: radius, Attempts: attempts, Exhausted: true}
}

func (p *Placer) fits(pos geometry.Vector2D, radius, hue float64, placed []Placed) bool {
	for _, other := range placed {
		need := p.RequiredSeparation(radius, other.Radius, geometry.HueDistance(hue, other.Hue))
		if pos.DistanceSquaredTo(other.Pos) < need*need {
			return false
		}
	}
	return true
}

// RequiredSeparation is the minimum center distance between two blobs.
func (p *Placer) RequiredSeparation(r1, r2, hueDist float64) float64 {
	return (r1 + r2) * p.cfg.SeparationFactor(hueDist)
}

// SeparationFactor is not monotonic in hue distance: same hue and near
// complementary pairs get more room than unrelated hues.
func (c *Config) SeparationFactor(hueDist float64) float64 {
	switch {
	case hueDist < c.SameHueThreshold:
		return c.SameHueSepFactor
	case hueDist >= c.ComplementaryMin && hueDist <= c.ComplementaryMax:
		return c.ComplementarySepFactor
	default:
		return c.BaseSepFactor
	}
}
