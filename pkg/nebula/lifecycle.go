package nebula

import (
	"math"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-nebula-clouds/pkg/geometry"
)

// Phase is the stage of a blob inside one life cycle.
type Phase int

const (
	PhaseUnborn Phase = iota
	PhaseAssemble
	PhaseSustain
	PhaseFade
)

func (p Phase) String() string {
	switch p {
	case PhaseAssemble:
		return "assemble"
	case PhaseSustain:
		return "sustain"
	case PhaseFade:
		return "fade"
	default:
		return "unborn"
	}
}

// LifeState is the lifecycle snapshot of a blob for the current frame.
type LifeState struct {
	Phase       Phase
	Cycle       int
	LifeTime    float64 // ms into the current cycle
	Progress    float64 // LifeTime over the full cycle length
	TargetForms int
	Alpha       float64
}

// LifeAt derives the life state from the time elapsed since the slot's spawn anchor.
func (c *Config) LifeAt(sinceSpawn float64) LifeState {
	total := c.TotalLifeMs()
	if sinceSpawn <= 0 || total <= 0 {
		return LifeState{Phase: PhaseUnborn, Cycle: -1}
	}
	cycle := int(math.Floor(sinceSpawn / total))
	lifeTime := sinceSpawn - float64(cycle)*total
	st := LifeState{Cycle: cycle, LifeTime: lifeTime, Progress: lifeTime / total}

	n := float64(c.FormsPerBlob)
	switch {
	case lifeTime < c.AssembleMs:
		t := lifeTime / c.AssembleMs
		st.Phase = PhaseAssemble
		st.TargetForms = int(math.Floor(geometry.Map(t, 0, 1, 0, n)))
		st.Alpha = geometry.Smoothstep(t)
	case lifeTime < c.AssembleMs+c.SustainMs:
		st.Phase = PhaseSustain
		st.TargetForms = c.FormsPerBlob
		st.Alpha = 1
	default:
		t := (lifeTime - c.AssembleMs - c.SustainMs) / c.FadeMs
		st.Phase = PhaseFade
		st.TargetForms = int(math.Floor(geometry.Map(t, 0, 1, n, 0)))
		st.Alpha = 1 - geometry.Smoothstep(t)
	}
	return st
}

// StepToward moves cur toward target by at most maxStep.
func StepToward(cur, target, maxStep int) int {
	switch d := target - cur; {
	case d > maxStep:
		return cur + maxStep
	case d < -maxStep:
		return cur - maxStep
	default:
		return target
	}
}

// Lifecycle schedules the blob slots: staggered natural starts, cycle
// rollovers with fresh placement and color, manual spawns and the
// stroke-by-stroke pacing of the visible form count.
type Lifecycle struct {
	cfg     *Config
	rng     *rand.Rand
	placer  *Placer
	palette *Palette
	blobs   []*Blob
	placed  []Placed // scratch, reused every birth
}

func NewLifecycle(cfg *Config, rng *rand.Rand, placer *Placer, palette *Palette, now float64) *Lifecycle {
	l := &Lifecycle{cfg: cfg, rng: rng, placer: placer, palette: palette}
	l.Reset(now)
	return l
}

// Reset drops every blob and restarts the natural schedule at now.
func (l *Lifecycle) Reset(now float64) {
	l.blobs = make([]*Blob, l.cfg.NumBlobs)
	for i := range l.blobs {
		l.blobs[i] = newBlob(i, now+float64(i)*l.cfg.SpawnIntervalMs)
	}
	l.palette.Reset()
}

// Blobs returns the slot table, indexed by slot.
func (l *Lifecycle) Blobs() []*Blob {
	return l.blobs
}

// Update advances every slot to now. While freeze is set each slot keeps the
// life time it had when the freeze began, so nothing is born or dies during a
// mode transition. On thaw the spawn anchor moves by the frozen span and life
// resumes where it stopped. It returns the blobs that started a new life this frame.
func (l *Lifecycle) Update(now float64, freeze bool) []*Blob {
	var born []*Blob
	for _, b := range l.blobs {
		since := now - b.SpawnTime
		switch {
		case freeze && !b.frozen:
			b.frozenSince, b.frozen = since, true
		case freeze:
			since = b.frozenSince
		case b.frozen:
			b.SpawnTime = now - b.frozenSince
			since, b.frozen = b.frozenSince, false
		}

		st := l.cfg.LifeAt(since)
		if st.Phase != PhaseUnborn && st.Cycle != b.Cycle {
			l.birth(b, st.Cycle)
			born = append(born, b)
		}
		b.Life = st

		// Slot 0 is the only privileged slot: it appears fully formed as soon
		// as it assembles. Its fade is still paced.
		if b.Slot == 0 && l.cfg.SnapFirstSlot && st.Phase == PhaseAssemble {
			b.Visible = l.cfg.FormsPerBlob
			continue
		}
		b.Visible = StepToward(b.Visible, st.TargetForms, l.cfg.MaxFormStepPerFrame)
	}
	return born
}

// birth starts cycle for a slot at a freshly solved position.
func (l *Lifecycle) birth(b *Blob, cycle int) {
	radius := l.randomRadius(l.cfg.BlobRadiusMin, l.cfg.BlobRadiusMax)
	hue := l.palette.Next()
	res := l.placer.Place(b.Slot, cycle, radius, hue, l.others(b))
	l.start(b, res.Pos, radius, hue)
	b.Cycle = cycle
	b.Manual = false
}

// Spawn starts a new life at pos right now, preempting the slot closest to
// the end of its life. It always succeeds and returns the reused slot.
func (l *Lifecycle) Spawn(pos geometry.Vector2D, now float64) *Blob {
	b := l.blobs[l.PickPreemptSlot(now)]
	radius := l.randomRadius(l.cfg.ManualRadiusMin, l.cfg.ManualRadiusMax)
	l.start(b, pos, radius, l.palette.Next())
	b.SpawnTime = now
	b.Cycle = 0
	// the new silhouettes assemble stroke by stroke from nothing
	b.Visible = 0
	b.Manual = true
	b.frozen = false
	b.Life = LifeState{Phase: PhaseUnborn, Cycle: -1}
	return b
}

// PickPreemptSlot returns the slot a manual spawn should reuse: the highest
// life progress wins and slots past 80% of their life get a +10 bonus, so a
// fading blob is always preferred over one still assembling. A frozen slot is
// judged by the life time it was frozen at.
func (l *Lifecycle) PickPreemptSlot(now float64) int {
	best, bestPriority := 0, math.Inf(-1)
	for i, b := range l.blobs {
		since := now - b.SpawnTime
		if b.frozen {
			since = b.frozenSince
		}
		progress := 0.0
		if since > 0 {
			progress = l.cfg.LifeAt(since).Progress
		}
		priority := progress
		if progress > 0.8 {
			priority += 10
		}
		if priority > bestPriority {
			best, bestPriority = i, priority
		}
	}
	return best
}

func (l *Lifecycle) start(b *Blob, pos geometry.Vector2D, radius, hue float64) {
	b.resetLife(pos, radius, hue, l.newForms(radius))
	b.variation = l.rng.Float64()
	b.hueOffset = l.rng.Float64()*100 - 50
	b.rotationBase = hue
}

func (l *Lifecycle) randomRadius(lo, hi float64) float64 {
	return geometry.Lerp(lo, hi, l.rng.Float64()) * min(l.cfg.Width, l.cfg.Height)
}

// others lists the live blobs a new placement must keep away from.
func (l *Lifecycle) others(self *Blob) []Placed {
	l.placed = l.placed[:0]
	for _, b := range l.blobs {
		if b == self || !b.Alive() || b.Life.Phase == PhaseUnborn {
			continue
		}
		l.placed = append(l.placed, Placed{Pos: b.Pos, Radius: b.Radius, Hue: b.Hue})
	}
	return l.placed
}

// newForms builds the translucent layers of one blob. Every layer is a
// separate jittered silhouette, slightly offset from the blob center.
func (l *Lifecycle) newForms(radius float64) []geometry.Polygon {
	forms := make([]geometry.Polygon, l.cfg.FormsPerBlob)
	spread := l.cfg.FormSidesMax - l.cfg.FormSidesMin + 1
	for i := range forms {
		sides := l.cfg.FormSidesMin + l.rng.IntN(max(spread, 1))
		shape := geometry.NewBlobShape(l.rng, radius*geometry.Lerp(0.8, 1, l.rng.Float64()),
			sides, l.cfg.FormDepth, l.cfg.FormVariance)
		offset := geometry.Vector2D{X: l.rng.NormFloat64(), Y: l.rng.NormFloat64()}.Mul(radius * 0.06)
		forms[i] = shape.Transform(shape, offset, 0, 1)
	}
	return forms
}
