package nebula

import (
	"math"

	"github.com/lao-tseu-is-alive/go-nebula-clouds/pkg/geometry"
)

type colorFamily int

const (
	familyMulti colorFamily = iota
	familyMono
	familyGray
)

// phaseKey identifies a color phase. A blob computes new targets only when
// the key it last saw differs from the current one.
type phaseKey struct {
	black   bool
	family  colorFamily
	monoHue float64
	variant MonoVariant
}

// ColorScheduler computes every blob's hue, saturation and brightness from the
// current mode. Transitions start from the last rendered color and take a
// duration proportional to the distance travelled.
type ColorScheduler struct {
	cfg       *Config
	modes     *ModeMachine
	grayscale bool
}

func NewColorScheduler(cfg *Config, modes *ModeMachine) *ColorScheduler {
	return &ColorScheduler{cfg: cfg, modes: modes}
}

// SetGrayscale forces the gray family regardless of the current mode.
func (c *ColorScheduler) SetGrayscale(on bool) { c.grayscale = on }

func (c *ColorScheduler) Grayscale() bool { return c.grayscale }

// RotatingHue is the global hue offset shared by multi-color blobs.
func (c *ColorScheduler) RotatingHue(now float64) float64 {
	if c.cfg.HueRotationPeriodMs <= 0 {
		return 0
	}
	return geometry.NormalizeHue(now * 360 / c.cfg.HueRotationPeriodMs)
}

func (c *ColorScheduler) key() phaseKey {
	m := c.modes.Current()
	k := phaseKey{black: m.IsBlack()}
	switch {
	case c.grayscale || m.IsGray():
		k.family = familyGray
	case m.IsMono():
		k.family = familyMono
		k.monoHue = c.modes.MonoHue()
		k.variant = c.modes.Variant()
	}
	return k
}

// Update advances the color of one blob to now.
func (c *ColorScheduler) Update(b *Blob, now float64) {
	k := c.key()
	if !b.phaseSet || k != b.phase {
		c.enterPhase(b, k, now)
	}

	// moving targets follow the rotating hue every frame
	if k.family == familyMulti || (k.family == familyMono && k.monoHue == RotatingHue) {
		b.Color.TargetHue = c.hueTarget(b, k, now)
	}

	p := geometry.Smoothstep(b.Color.Progress(now))
	b.Hue = geometry.LerpHue(b.Color.StartHue, b.Color.TargetHue, p)
	b.Sat = geometry.Lerp(b.Color.StartSat, b.Color.TargetSat, p)
	b.Bri = geometry.Lerp(b.Color.StartBri, b.Color.TargetBri, p)
}

func (c *ColorScheduler) enterPhase(b *Blob, k phaseKey, now float64) {
	fresh := !b.phaseSet
	if !fresh && k.family == familyMulti && b.phase.family != familyMulti {
		// re-anchor the rotating base on the last rendered hue
		b.rotationBase = geometry.NormalizeHue(b.Hue - c.RotatingHue(now) + b.hueOffset)
	}
	b.phase, b.phaseSet = k, true

	hue := c.hueTarget(b, k, now)
	sat, bri := c.satBri(b, k)
	b.Color = ColorTransition{
		StartHue:  b.Hue,
		StartSat:  b.Sat,
		StartBri:  b.Bri,
		TargetHue: hue,
		TargetSat: sat,
		TargetBri: bri,
		Start:     now,
		Duration:  c.duration(b.Hue, hue, b.Sat, sat),
	}

	// a blob born into a settled phase takes its colors at once
	if fresh && !c.modes.Transitioning(now) {
		b.Color.Duration = 0
		b.Color.StartHue, b.Color.StartSat, b.Color.StartBri = hue, sat, bri
	}
}

func (c *ColorScheduler) hueTarget(b *Blob, k phaseKey, now float64) float64 {
	switch k.family {
	case familyMono:
		base := k.monoHue
		if base == RotatingHue {
			base = c.RotatingHue(now)
		}
		return geometry.NormalizeHue(base + geometry.Lerp(-10, 10, b.variation))
	case familyGray:
		return b.Hue
	default:
		return geometry.NormalizeHue(b.rotationBase + c.RotatingHue(now))
	}
}

// satBri returns the saturation and brightness targets. Black side values stay
// low enough for additive blending, white side values high enough for multiply.
func (c *ColorScheduler) satBri(b *Blob, k phaseKey) (sat, bri float64) {
	v := b.variation*2 - 1
	switch {
	case k.family == familyGray && k.black:
		return 0, geometry.Lerp(38, 48, b.variation)
	case k.family == familyGray:
		return 0, geometry.Lerp(8, 40, b.variation)
	case k.family == familyMono && k.black:
		return geometry.Clamp(80+15*v, 65, 100), geometry.Clamp(44+8*v, 35, 50)
	case k.family == familyMono && k.variant == VariantA:
		return geometry.Clamp(85+15*v, 70, 100), geometry.Clamp(80+15*v, 55, 98)
	case k.family == familyMono:
		return geometry.Clamp(75+15*v, 60, 100), geometry.Clamp(92+10*v, 80, 100)
	case k.black:
		return 94, 48
	default:
		return 100, 98
	}
}

// duration is the larger of the hue and saturation travel times, never less
// than MinColorChangeMs.
func (c *ColorScheduler) duration(fromHue, toHue, fromSat, toSat float64) float64 {
	minMs := c.cfg.MinColorChangeMs
	hueMs := math.Abs(geometry.HueDelta(fromHue, toHue)) / 180 * minMs
	satMs := math.Abs(toSat-fromSat) / 100 * minMs
	return max(minMs, hueMs, satMs)
}
