package nebula

import (
	"math/rand/v2"
	"slices"

	"github.com/lao-tseu-is-alive/go-nebula-clouds/pkg/geometry"
)

// HueZone is a named band of the color wheel. Max may exceed 360 for bands
// that wrap through red.
type HueZone struct {
	Name     string
	Min, Max float64
}

// Contains reports whether hue falls in the zone, wrap included.
func (z HueZone) Contains(hue float64) bool {
	hue = geometry.NormalizeHue(hue)
	if z.Max >= 360 {
		return hue >= z.Min || hue <= z.Max-360
	}
	return hue >= z.Min && hue <= z.Max
}

var colorZones = []HueZone{
	{"coral", 10, 35},
	{"peach", 345, 375},
	{"magenta", 290, 330},
	{"forest", 90, 140},
	{"sea", 165, 195},
	{"sky", 200, 225},
	{"golden", 40, 55},
}

// Palette hands out hues for new blobs while avoiding the recently used ones.
type Palette struct {
	rng    *rand.Rand
	cfg    *Config
	recent []float64
}

func NewPalette(cfg *Config, rng *rand.Rand) *Palette {
	return &Palette{rng: rng, cfg: cfg}
}

// Recent returns a copy of the remembered hues, oldest first.
func (p *Palette) Recent() []float64 {
	return slices.Clone(p.recent)
}

// Reset forgets the hue history.
func (p *Palette) Reset() {
	p.recent = p.recent[:0]
}

// Next picks a hue from a zone not used recently, rejecting hues that sit
// closer than MinHueSpacing to any remembered hue. When every attempt fails the
// last candidate is used anyway.
func (p *Palette) Next() float64 {
	zones := p.freshZones()
	var hue float64
	for attempt := 0; attempt < max(p.cfg.HueAttempts, 1); attempt++ {
		z := zones[p.rng.IntN(len(zones))]
		hue = geometry.NormalizeHue(z.Min + p.rng.Float64()*(z.Max-z.Min))
		if p.farFromRecent(hue) {
			break
		}
	}
	p.remember(hue)
	return hue
}

func (p *Palette) freshZones() []HueZone {
	fresh := make([]HueZone, 0, len(colorZones))
	for _, z := range colorZones {
		used := slices.ContainsFunc(p.recent, z.Contains)
		if !used {
			fresh = append(fresh, z)
		}
	}
	if len(fresh) == 0 {
		return colorZones
	}
	return fresh
}

func (p *Palette) farFromRecent(hue float64) bool {
	for _, h := range p.recent {
		if geometry.HueDistance(h, hue) < p.cfg.MinHueSpacing {
			return false
		}
	}
	return true
}

func (p *Palette) remember(hue float64) {
	p.recent = append(p.recent, hue)
	if n := p.cfg.RecentHueMemory; n > 0 && len(p.recent) > n {
		p.recent = slices.Delete(p.recent, 0, len(p.recent)-n)
	}
}
