package nebula

import (
	"math"

	"github.com/lao-tseu-is-alive/go-nebula-clouds/pkg/geometry"
)

// goldenAngle spreads infinity impulses evenly around the circle.
const goldenAngle = 2.399963

// ApplyLoop injects the torque of a locked loop gesture into every born blob.
// Blobs near the gesture centroid get the full effect, far ones at least 15%.
func (in *Integrator) ApplyLoop(blobs []*Blob, a Analysis, now float64) {
	cfg := in.cfg
	in.Touch(now)
	dir := float64(a.Direction)
	multiplier := 1 + a.ConsecutiveLoops
	chaos := math.Min(a.NumRotations*0.2*multiplier, 2)
	diag := math.Hypot(cfg.Width, cfg.Height)

	for _, b := range blobs {
		if !b.Alive() || b.Life.Phase == PhaseUnborn {
			continue
		}
		d := b.Pos.DistanceTo(a.Centroid)
		proximity := math.Max(0.15, 1-d/(0.5*diag)*0.85)
		torque := (2 + a.NumRotations*5) * multiplier * proximity

		if b.TargetRotation*dir < 0 {
			// opposing spin brakes first
			b.TargetRotation = b.TargetRotation*0.92 + dir*torque*0.5
		} else {
			b.TargetRotation += dir * torque
		}
		b.TargetRotation = geometry.Clamp(b.TargetRotation, -cfg.MaxTargetRotation, cfg.MaxTargetRotation)
		b.TargetDrift = math.Max(b.TargetDrift, chaos*0.002*proximity)

		if a.NumRotations > 0.25 {
			out := b.Pos.Sub(a.Centroid)
			if out.LenSqr() > 0 {
				b.Vel = b.Vel.Add(out.Normalize().Mul(chaos * 0.8 * proximity))
			}
		}
	}
	in.orbitalTarget = geometry.Clamp(in.orbitalTarget+dir*chaos*0.1, -2, 2)
}

// ApplyKick pushes blobs near the end of a linear swipe along its direction.
func (in *Integrator) ApplyKick(blobs []*Blob, a Analysis, now float64) {
	dist := a.Swipe.Len()
	if dist == 0 {
		return
	}
	in.Touch(now)
	minSide := math.Max(math.Min(in.cfg.Width, in.cfg.Height), 1)
	maxDist := 0.5 * minSide
	intensity := dist / minSide * 10
	dir := a.Swipe.Mul(1 / dist)

	for _, b := range blobs {
		if !b.Alive() || b.Life.Phase == PhaseUnborn {
			continue
		}
		f := 1 - b.Pos.DistanceTo(a.Last)/maxDist
		if f <= 0.1 {
			continue
		}
		b.Vel = b.Vel.Mul(1 - 0.5*f).Add(dir.Mul(intensity * 5 * f))
	}
}

// ApplyInfinity is the one-shot burst of an infinity gesture: every blob loses
// its momentum and leaves along a golden angle spread, and the shared orbit stops.
// Central forces stay off until the pointer is released.
func (in *Integrator) ApplyInfinity(blobs []*Blob, now float64) {
	in.Touch(now)
	for i, b := range blobs {
		b.Vel = geometry.NewVectorPolar(in.cfg.InfinityImpulse, float64(i)*goldenAngle)
	}
	in.orbital, in.orbitalTarget = 0, 0
	in.infinity = true
}
