package nebula

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/lao-tseu-is-alive/go-nebula-clouds/pkg/geometry"
)

const (
	refFrameMs    = 1000.0 / 60
	refScreenSize = 1920.0
	spinPerFrame  = 0.016 // seconds of spin applied per reference frame
)

// Integrator advances blob motion once per frame. All forces are scaled by
// the frame delta relative to 60 Hz, so the field moves at the same pace
// whatever the refresh rate.
type Integrator struct {
	cfg   *Config
	noise *geometry.Noise
	grid  *spatialGrid

	active    []*Blob
	neighbors []*Blob

	orbital         float64
	orbitalTarget   float64
	lastInteraction float64
	infinity        bool

	pointer     geometry.Vector2D
	pointerDown bool

	springDt    float64
	rotSpring   harmonica.Spring
	driftSpring harmonica.Spring
}

func NewIntegrator(cfg *Config, noise *geometry.Noise) *Integrator {
	return &Integrator{
		cfg:           cfg,
		noise:         noise,
		grid:          newSpatialGrid(),
		orbital:       cfg.BaseOrbitalVelocity,
		orbitalTarget: cfg.BaseOrbitalVelocity,
	}
}

// Orbital is the shared tangential velocity scalar.
func (in *Integrator) Orbital() float64 { return in.orbital }

// InfinityActive reports whether an infinity burst suspended the central forces.
func (in *Integrator) InfinityActive() bool { return in.infinity }

// SetPointer tracks the pointer used by the repulsion zone.
func (in *Integrator) SetPointer(p geometry.Vector2D, down bool) {
	in.pointer, in.pointerDown = p, down
	if !down {
		in.infinity = false
	}
}

// Touch marks a gesture interaction, delaying the idle decay of momentum.
func (in *Integrator) Touch(now float64) { in.lastInteraction = now }

func (in *Integrator) baseSize() float64 {
	return math.Max(math.Max(in.cfg.Width, in.cfg.Height), 1)
}

func (in *Integrator) springs(dt float64) {
	if dt == in.springDt {
		return
	}
	in.springDt = dt
	in.rotSpring = harmonica.NewSpring(dt/1000, in.cfg.RotationSpringFreq, 1.0)
	in.driftSpring = harmonica.NewSpring(dt/1000, in.cfg.DriftSpringFreq, 1.0)
}

// Step advances every born blob by dt milliseconds.
func (in *Integrator) Step(blobs []*Blob, now, dt float64) {
	dt = geometry.Clamp(dt, 0, in.cfg.MaxDtMs)
	if dt == 0 {
		return
	}
	ts := dt / refFrameMs
	in.springs(dt)
	in.stepOrbital(now, ts)

	in.active = in.active[:0]
	maxRadius := 0.0
	for _, b := range blobs {
		if b.Alive() && b.Life.Phase != PhaseUnborn {
			in.active = append(in.active, b)
			maxRadius = math.Max(maxRadius, b.Radius)
		}
	}
	in.grid.rebuild(in.active, 2*maxRadius)

	idle := now-in.lastInteraction > in.cfg.RotationIdleMs
	for _, b := range in.active {
		in.stepMotion(b, now, ts)
		in.stepSpin(b, ts, idle)
	}
}

// stepOrbital smooths the shared orbital velocity toward its target, and the
// target back to the baseline once gestures stop.
func (in *Integrator) stepOrbital(now, ts float64) {
	if now-in.lastInteraction > in.cfg.OrbitalIdleMs {
		in.orbitalTarget += (in.cfg.BaseOrbitalVelocity - in.orbitalTarget) * timeLerp(0.02, ts)
	}
	in.orbital += (in.orbitalTarget - in.orbital) * timeLerp(0.05, ts)
}

func (in *Integrator) stepMotion(b *Blob, now, ts float64) {
	cfg := in.cfg
	base := in.baseSize()
	var acc geometry.Vector2D

	d := b.Pos.Len()
	floor := math.Max(d, cfg.GravityMinDist)
	if !in.infinity {
		// (a) center gravity
		if d > 0 {
			acc = acc.Sub(b.Pos.Mul(1 / d).Mul(cfg.CenterGravity * base / floor))
		}
		// (b) orbital tangent
		acc = acc.Add(b.Pos.Perp().Mul(in.orbital * cfg.OrbitalTangent / floor))
	}

	// (c) wander, scaled by drift
	angle := in.noise.At2(b.seed, now*0.0002) * 4 * math.Pi
	driftMul := geometry.Clamp(1+b.Drift*1000, 0.1, 5)
	acc = acc.Add(geometry.NewVectorPolar(cfg.WanderStrength*driftMul, angle))

	// pointer repulsion zone grows with the spin the gesture injected
	if in.pointerDown {
		zone := 100 + math.Abs(b.TargetRotation)*5
		away := b.Pos.Sub(in.pointer)
		if pd := away.Len(); pd < zone {
			acc = acc.Add(away.Mul(1 / math.Max(pd, 1)).Mul(cfg.PointerRepel * (1 - pd/zone)))
		}
	}

	// (d) mutual attraction with a repulsive core, into the gravity velocity
	b.GravityVel = b.GravityVel.Mul(math.Pow(cfg.GravityVelocityDecay, ts)).Add(in.mutual(b, base).Mul(ts))

	b.Vel = b.Vel.Add(acc.Mul(ts))
	b.Vel = b.Vel.Mul(math.Pow(cfg.Damping, ts)).ClampLen(cfg.MaxSpeed)

	screenScale := base / refScreenSize
	b.Pos = b.Pos.Add(b.Vel.Add(b.GravityVel).Mul(ts * screenScale))
	in.bounce(b)
}

func (in *Integrator) mutual(b *Blob, base float64) geometry.Vector2D {
	var acc geometry.Vector2D
	in.neighbors = in.grid.near(b.Pos.X, b.Pos.Y, in.neighbors[:0])
	for _, o := range in.neighbors {
		if o == b {
			continue
		}
		diff := o.Pos.Sub(b.Pos)
		d := math.Max(diff.Len(), 1)
		dir := diff.Mul(1 / d)
		core := in.cfg.MutualRepelRadius * (b.Radius + o.Radius)
		if d < core {
			acc = acc.Sub(dir.Mul(in.cfg.MutualRepel * (1 - d/core)))
			continue
		}
		acc = acc.Add(dir.Mul(in.cfg.MutualAttract * (o.Radius / base) / (1 + d*d/(base*base))))
	}
	return acc
}

// bounce keeps the blob inside a region larger than the canvas, reflecting
// the outward velocity with energy loss.
func (in *Integrator) bounce(b *Blob) {
	halfW, halfH := in.cfg.Width/2, in.cfg.Height/2
	over := in.cfg.BounceMargin * math.Min(halfW, halfH)
	limX, limY := halfW+over, halfH+over
	r := in.cfg.BounceRestitution

	if b.Pos.X > limX || b.Pos.X < -limX {
		b.Pos.X = geometry.Clamp(b.Pos.X, -limX, limX)
		if b.Vel.X*b.Pos.X > 0 {
			b.Vel.X *= -r
		}
	}
	if b.Pos.Y > limY || b.Pos.Y < -limY {
		b.Pos.Y = geometry.Clamp(b.Pos.Y, -limY, limY)
		if b.Vel.Y*b.Pos.Y > 0 {
			b.Vel.Y *= -r
		}
	}
}

// stepSpin decays the gesture targets once idle and lets the rendered values
// follow them through critically damped springs.
func (in *Integrator) stepSpin(b *Blob, ts float64, idle bool) {
	cfg := in.cfg
	if idle {
		decay := math.Pow(0.98, ts)
		b.TargetRotation *= decay
		b.TargetDrift *= decay
	}
	b.Rotation, b.rotationVel = in.rotSpring.Update(b.Rotation, b.rotationVel, b.TargetRotation)
	b.Rotation = geometry.Clamp(b.Rotation, -cfg.MaxTargetRotation, cfg.MaxTargetRotation)
	b.Drift, b.driftVel = in.driftSpring.Update(b.Drift, b.driftVel, b.TargetDrift)

	b.Angle += (in.BaseSpin(b) + b.Rotation) * spinPerFrame * ts
}

// BaseSpin is the idle rotation speed of a blob in degrees per second.
func (in *Integrator) BaseSpin(b *Blob) float64 {
	return geometry.Map(in.noise.At(b.seed*0.7), 0, 1, -in.cfg.MaxBaseSpinDeg, in.cfg.MaxBaseSpinDeg)
}

// timeLerp converts a per reference frame blend factor to the current frame length.
func timeLerp(f, ts float64) float64 {
	return 1 - math.Pow(1-f, ts)
}
