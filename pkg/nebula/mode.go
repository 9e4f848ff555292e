package nebula

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/lao-tseu-is-alive/go-nebula-clouds/pkg/geometry"
)

// Mode is one of the six global color regimes.
type Mode int

const (
	BlackMulti Mode = iota
	BlackMono
	BlackGray
	WhiteGray
	WhiteMono
	WhiteMulti
)

var modeNames = [...]string{
	BlackMulti: "black-multi",
	BlackMono:  "black-mono",
	BlackGray:  "black-gray",
	WhiteGray:  "white-gray",
	WhiteMono:  "white-mono",
	WhiteMulti: "white-multi",
}

// AllModes lists every mode in declaration order.
var AllModes = []Mode{BlackMulti, BlackMono, BlackGray, WhiteGray, WhiteMono, WhiteMulti}

func (m Mode) String() string {
	if m < BlackMulti || m > WhiteMulti {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

func (m Mode) IsBlack() bool { return m <= BlackGray }
func (m Mode) IsGray() bool  { return m == BlackGray || m == WhiteGray }
func (m Mode) IsMono() bool  { return m == BlackMono || m == WhiteMono }

// ParseMode converts a mode name such as "white-mono" back to a Mode.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if name == s {
			return Mode(i), nil
		}
	}
	return BlackMulti, fmt.Errorf("unknown mode %q", s)
}

// isBridgeCrossing is true for the gray to gray hop between the two sides.
func isBridgeCrossing(from, to Mode) bool {
	return from.IsGray() && to.IsGray() && from != to
}

// ValidNext returns the modes reachable from current. The sides only connect
// through the gray pair, and right after such a crossing the gray bridge may
// not be taken back.
func ValidNext(current Mode, justCrossedBridge bool) []Mode {
	switch current {
	case BlackMulti, BlackMono:
		return without([]Mode{BlackMulti, BlackMono, BlackGray}, current)
	case WhiteMulti, WhiteMono:
		return without([]Mode{WhiteMulti, WhiteMono, WhiteGray}, current)
	case BlackGray:
		if justCrossedBridge {
			return []Mode{BlackMulti, BlackMono}
		}
		return []Mode{BlackMulti, BlackMono, WhiteGray}
	case WhiteGray:
		if justCrossedBridge {
			return []Mode{WhiteMulti, WhiteMono}
		}
		return []Mode{WhiteMulti, WhiteMono, BlackGray}
	}
	return []Mode{BlackMulti}
}

func without(modes []Mode, m Mode) []Mode {
	return slices.DeleteFunc(modes, func(x Mode) bool { return x == m })
}

// MonoVariant selects the saturation/brightness flavour of white mono modes.
type MonoVariant int

const (
	VariantA MonoVariant = iota // saturated mid tones
	VariantB                    // pale pastel
)

// RotatingHue marks a mono mode that follows the global rotating hue.
const RotatingHue = -1.0

var monoHues = []float64{RotatingHue, 0, 30, 60, 120, 180, 200, 240, 280, 300, 330}

// BlendPolicy is the compositing mode the renderer must use for blob forms.
type BlendPolicy int

const (
	BlendAdditive BlendPolicy = iota
	BlendMultiply
	BlendNormal
)

func (b BlendPolicy) String() string {
	switch b {
	case BlendAdditive:
		return "additive"
	case BlendMultiply:
		return "multiply"
	default:
		return "normal"
	}
}

// ModeMachine cycles the global color regime. Time is expressed in milliseconds
// on the same clock the engine frames use.
type ModeMachine struct {
	rng *rand.Rand
	cfg *Config

	current  Mode
	previous Mode

	modeStart    float64
	modeDuration float64

	justCrossedBridge bool
	monoHue           float64
	variant           MonoVariant
}

// NewModeMachine starts in the given mode with its transition already completed.
func NewModeMachine(cfg *Config, rng *rand.Rand, start Mode, now float64) *ModeMachine {
	m := &ModeMachine{
		rng:      rng,
		cfg:      cfg,
		current:  start,
		previous: start,
		monoHue:  RotatingHue,
	}
	m.modeStart = now - cfg.ModeTransitionMs
	m.modeDuration = m.randomDuration()
	if start.IsMono() {
		m.pickMono()
	}
	return m
}

func (m *ModeMachine) randomDuration() float64 {
	return m.cfg.ModeMinMs + m.rng.Float64()*(m.cfg.ModeMaxMs-m.cfg.ModeMinMs)
}

func (m *ModeMachine) pickMono() {
	m.monoHue = monoHues[m.rng.IntN(len(monoHues))]
	m.variant = MonoVariant(m.rng.IntN(2))
}

// Update advances the machine and reports whether a new transition started.
// A mode change is only considered once the previous transition has finished.
func (m *ModeMachine) Update(now float64) bool {
	if now-m.modeStart < m.modeDuration || m.Transitioning(now) {
		return false
	}
	m.advance(now)
	return true
}

func (m *ModeMachine) advance(now float64) {
	candidates := ValidNext(m.current, m.justCrossedBridge)
	next := candidates[m.rng.IntN(len(candidates))]

	if isBridgeCrossing(m.current, next) {
		m.justCrossedBridge = true
	} else if !next.IsGray() {
		m.justCrossedBridge = false
	}

	m.previous, m.current = m.current, next
	m.modeStart = now
	m.modeDuration = m.randomDuration()
	if next.IsMono() {
		m.pickMono()
	}
}

// Current is the mode being transitioned to (or held).
func (m *ModeMachine) Current() Mode { return m.current }

// Previous is the mode the last transition started from.
func (m *ModeMachine) Previous() Mode { return m.previous }

// JustCrossedBridge reports whether the last transition was a gray to gray crossing.
func (m *ModeMachine) JustCrossedBridge() bool { return m.justCrossedBridge }

// MonoHue is the hue of the current mono mode or RotatingHue.
func (m *ModeMachine) MonoHue() float64 { return m.monoHue }

// Variant is the white mono flavour picked for the current mono mode.
func (m *ModeMachine) Variant() MonoVariant { return m.variant }

// TransitionStart is the clock value at which the current transition began.
func (m *ModeMachine) TransitionStart() float64 { return m.modeStart }

// Progress is the normalized transition progress, clamped to [0, 1].
func (m *ModeMachine) Progress(now float64) float64 {
	if m.cfg.ModeTransitionMs <= 0 {
		return 1
	}
	return geometry.Clamp((now-m.modeStart)/m.cfg.ModeTransitionMs, 0, 1)
}

// EasedProgress is Progress passed through smoothstep.
func (m *ModeMachine) EasedProgress(now float64) float64 {
	return geometry.Smoothstep(m.Progress(now))
}

func (m *ModeMachine) Transitioning(now float64) bool {
	return m.Progress(now) < 1
}

// Background is the canvas luminance, 0 black and 1 white. It only
// crossfades while a bridge crossing is in progress.
func (m *ModeMachine) Background(now float64) float64 {
	to := sideLuminance(m.current)
	if !isBridgeCrossing(m.previous, m.current) {
		return to
	}
	return geometry.Lerp(sideLuminance(m.previous), to, m.EasedProgress(now))
}

func sideLuminance(m Mode) float64 {
	if m.IsBlack() {
		return 0
	}
	return 1
}

// BlendPolicy derives the compositing mode from the background luminance:
// additive on black, multiply on white, normal inside the crossfade zone.
func (m *ModeMachine) BlendPolicy(now float64) BlendPolicy {
	if isBridgeCrossing(m.previous, m.current) && m.Transitioning(now) {
		e := m.EasedProgress(now)
		if e >= m.cfg.CrossfadeLow && e <= m.cfg.CrossfadeHigh {
			return BlendNormal
		}
	}
	if m.Background(now) < 0.5 {
		return BlendAdditive
	}
	return BlendMultiply
}
