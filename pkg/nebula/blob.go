package nebula

import (
	"github.com/google/uuid"
	"github.com/lao-tseu-is-alive/go-nebula-clouds/pkg/geometry"
)

// Blob is one slot of the cloud field. Slots are reused across life cycles;
// ID changes every time a new life starts in the slot.
type Blob struct {
	ID   uuid.UUID
	Slot int

	// Frozen for the whole life cycle
	Radius float64
	Origin geometry.Vector2D
	Forms  []geometry.Polygon

	// Motion, mutated every frame by the Integrator
	Pos        geometry.Vector2D
	Vel        geometry.Vector2D
	GravityVel geometry.Vector2D

	// Schedule
	SpawnTime float64 // ms on the engine clock
	Cycle     int     // -1 until the first birth
	Manual    bool
	Visible   int
	Life      LifeState

	frozenSince float64 // time since spawn captured when a mode transition began
	frozen      bool

	// Color, rendered values plus the running transition
	Hue, Sat, Bri float64
	Color         ColorTransition
	phase         phaseKey
	phaseSet      bool
	rotationBase  float64
	variation     float64 // per-blob [0,1] used for mono/gray spread
	hueOffset     float64 // fixed re-anchor offset in [-50, 50]

	// Spin, in degrees per second for Rotation and degrees for Angle
	Rotation       float64
	rotationVel    float64
	TargetRotation float64
	Angle          float64

	// Drift scales the wander force
	Drift       float64
	driftVel    float64
	TargetDrift float64

	seed float64 // noise key, stable per slot
}

// ColorTransition is a running hue/saturation/brightness interpolation.
type ColorTransition struct {
	StartHue, StartSat, StartBri    float64
	TargetHue, TargetSat, TargetBri float64
	Start                           float64
	Duration                        float64
}

// Progress is the linear progress of the transition at now, clamped to [0, 1].
func (c ColorTransition) Progress(now float64) float64 {
	if c.Duration <= 0 {
		return 1
	}
	return geometry.Clamp((now-c.Start)/c.Duration, 0, 1)
}

// newBlob returns an unborn slot scheduled to start at spawnTime.
func newBlob(slot int, spawnTime float64) *Blob {
	return &Blob{
		Slot:      slot,
		SpawnTime: spawnTime,
		Cycle:     -1,
		seed:      float64(slot)*10 + 0.5,
		Sat:       94,
		Bri:       48,
	}
}

// Alive reports whether the slot has been born at least once.
func (b *Blob) Alive() bool {
	return b.Cycle >= 0
}

// resetLife prepares the slot for a fresh life: new identity, frozen geometry,
// zeroed motion and a color phase that will be recomputed on the next frame.
// Visible belongs to the caller: a rollover keeps the count its fade left,
// a manual spawn restarts it at zero.
func (b *Blob) resetLife(pos geometry.Vector2D, radius, hue float64, forms []geometry.Polygon) {
	b.ID = uuid.New()
	b.Origin = pos
	b.Pos = pos
	b.Radius = radius
	b.Forms = forms
	b.Vel = geometry.Vector2D{}
	b.GravityVel = geometry.Vector2D{}
	b.Hue = geometry.NormalizeHue(hue)
	b.phaseSet = false
	b.Color = ColorTransition{
		StartHue:  b.Hue,
		StartSat:  b.Sat,
		StartBri:  b.Bri,
		TargetHue: b.Hue,
		TargetSat: b.Sat,
		TargetBri: b.Bri,
	}
}
