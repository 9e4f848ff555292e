package nebula

import (
	"math"

	"github.com/lao-tseu-is-alive/go-nebula-clouds/pkg/geometry"
)

// GestureType is the classification of the pointer path in progress.
type GestureType int

const (
	GestureNone GestureType = iota
	GestureLinear
	GestureLoop
	GestureInfinity
)

func (g GestureType) String() string {
	switch g {
	case GestureLinear:
		return "linear"
	case GestureLoop:
		return "loop"
	case GestureInfinity:
		return "infinity"
	default:
		return "none"
	}
}

// Sample is one pointer position in world coordinates with its time in ms.
type Sample struct {
	Pos geometry.Vector2D
	T   float64
}

// Analysis is what the recognizer concluded after a pointer sample.
// Direction is +1 for clockwise on screen, -1 for counter clockwise.
type Analysis struct {
	Type             GestureType
	Direction        int
	Rotation         float64 // signed radians over the trailing window
	NumRotations     float64
	ConsecutiveLoops float64
	Flips            int
	Centroid         geometry.Vector2D // of the trailing window
	Last             geometry.Vector2D
	Swipe            geometry.Vector2D // trailing window displacement
	InfinityFired    bool              // true only on the sample that fired it
}

// Recognizer classifies a pointer stream. It is reset on every press and
// release; nothing survives between gestures.
type Recognizer struct {
	cfg *Config

	active bool
	path   []Sample
	start  Sample

	// direction prediction
	predicted   int
	confidence  int
	flips       int
	predictNext int // next path index whose triple has not been scored

	// incremental turning of the resampled path
	lastHeading float64
	hasHeading  bool

	// lock
	locked           GestureType
	lockedDir        int
	lockedRotation   float64
	oppositeRun      float64
	consecutiveLoops float64
	infinityFired    bool

	// press and hold
	movedAway  bool
	spawnFired bool
	grayFired  bool
}

func NewRecognizer(cfg *Config) *Recognizer {
	return &Recognizer{cfg: cfg}
}

// Active reports whether a pointer is currently down.
func (r *Recognizer) Active() bool { return r.active }

// Begin starts a new gesture at p.
func (r *Recognizer) Begin(p geometry.Vector2D, t float64) {
	path := r.path[:0]
	*r = Recognizer{cfg: r.cfg, path: path, active: true}
	r.start = Sample{Pos: p, T: t}
	r.path = append(r.path, r.start)
}

// End releases the pointer. Momentum already written into blobs is untouched.
func (r *Recognizer) End() {
	path := r.path[:0]
	*r = Recognizer{cfg: r.cfg, path: path}
}

// Locked is the sticky classification and its direction.
func (r *Recognizer) Locked() (GestureType, int) {
	return r.locked, r.lockedDir
}

// Flips is the number of direction reversals seen so far.
func (r *Recognizer) Flips() int { return r.flips }

// Append adds a pointer sample and analyses the path. ok is false while there
// is not enough path or time to judge intent; such samples have no effect.
func (r *Recognizer) Append(p geometry.Vector2D, t float64) (a Analysis, ok bool) {
	if !r.active {
		return Analysis{}, false
	}
	if p.DistanceTo(r.start.Pos) > r.cfg.LongPressRadius {
		r.movedAway = true
	}

	r.resample(Sample{Pos: p, T: t})
	r.predict()

	if len(r.path) <= r.cfg.MinAnalysisPoints || t-r.start.T < r.cfg.MinAnalysisMs {
		return Analysis{}, false
	}
	return r.analyse()
}

// resample appends s, first filling gaps wider than MinPointSpacing with
// interpolated points so fast strokes keep their turns.
func (r *Recognizer) resample(s Sample) {
	last := r.path[len(r.path)-1]
	spacing := r.cfg.MinPointSpacing
	if d := last.Pos.DistanceTo(s.Pos); spacing > 0 && d > spacing {
		n := int(d / spacing)
		for i := 1; i < n; i++ {
			f := float64(i) / float64(n)
			r.push(Sample{Pos: last.Pos.Lerp(s.Pos, f), T: geometry.Lerp(last.T, s.T, f)})
		}
	}
	r.push(s)
}

func (r *Recognizer) push(s Sample) {
	r.path = append(r.path, s)
	r.trackTurn()
	r.compact()
}

// compact drops the oldest samples once the path is twice as long as what the
// analysis window and the pending prediction triples can still reach.
func (r *Recognizer) compact() {
	stride := max(r.cfg.PredictionStride, 1)
	keep := r.cfg.RecentWindow + 2*stride
	if len(r.path) < 2*keep {
		return
	}
	drop := min(len(r.path)-keep, r.predictNext-2*stride)
	if drop <= 0 {
		return
	}
	n := copy(r.path, r.path[drop:])
	r.path = r.path[:n]
	r.predictNext -= drop
}

// trackTurn measures the heading change brought by the newest point and
// feeds it to the loop lock.
func (r *Recognizer) trackTurn() {
	n := len(r.path)
	if n < 3 {
		return
	}
	seg := r.path[n-1].Pos.Sub(r.path[n-3].Pos)
	if seg.Len() < 3 {
		return
	}
	heading := seg.Angle()
	if !r.hasHeading {
		r.lastHeading, r.hasHeading = heading, true
		return
	}
	delta := geometry.UnwrapAngle(heading - r.lastHeading)
	r.lastHeading = heading
	if r.locked != GestureLoop || delta == 0 {
		return
	}

	if sign(delta) == r.lockedDir {
		r.lockedRotation += math.Abs(delta)
		r.oppositeRun = math.Max(0, r.oppositeRun-math.Abs(delta))
		return
	}
	r.oppositeRun += math.Abs(delta)
	if r.oppositeRun > 2*math.Pi {
		// a full turn the other way: follow it without leaving the loop
		r.lockedDir = -r.lockedDir
		r.lockedRotation = r.oppositeRun
		r.oppositeRun = 0
		r.consecutiveLoops = 0
		r.flips++
	}
}

// predict scores every unseen triple spaced by PredictionStride. Agreement
// raises the confidence, disagreement lowers it, and at zero the prediction
// flips.
func (r *Recognizer) predict() {
	stride := max(r.cfg.PredictionStride, 1)
	if r.predictNext < 2*stride {
		r.predictNext = 2 * stride
	}
	for ; r.predictNext < len(r.path); r.predictNext += stride {
		i := r.predictNext
		a, b, c := r.path[i-2*stride].Pos, r.path[i-stride].Pos, r.path[i].Pos
		cross := b.Sub(a).Cross(c.Sub(b))
		if math.Abs(cross) <= r.cfg.CrossDeadZone {
			continue
		}
		dir := sign(cross)
		switch {
		case r.predicted == 0:
			r.predicted, r.confidence = dir, 1
		case dir == r.predicted:
			r.confidence = min(r.confidence+1, r.cfg.MaxConfidence)
		default:
			r.confidence--
			if r.confidence <= 0 {
				r.predicted, r.confidence = dir, 1
				r.flips++
			}
		}
	}
}

func (r *Recognizer) analyse() (Analysis, bool) {
	window := r.path[max(0, len(r.path)-r.cfg.RecentWindow):]
	first, last := window[0].Pos, window[len(window)-1].Pos
	swipe := last.Sub(first)

	rotation, same, opposite := r.windowTurning(window)
	total := same + opposite
	consistency := 0.0
	if total > 3 {
		consistency = float64(same) / float64(total)
	}
	loopLike := consistency > r.cfg.LoopConsistency &&
		math.Abs(rotation) > r.cfg.LoopMinAngleDeg*math.Pi/180 &&
		r.predicted != 0

	switch {
	case r.locked != GestureLoop && loopLike:
		r.locked, r.lockedDir = GestureLoop, r.predicted
		r.lockedRotation = math.Abs(rotation)
	case r.locked == GestureLoop && loopLike && r.predicted == r.lockedDir:
		r.consecutiveLoops += 0.02
	}

	points := make([]geometry.Vector2D, len(window))
	for i, s := range window {
		points[i] = s.Pos
	}
	a := Analysis{
		Rotation:         rotation,
		NumRotations:     math.Abs(rotation) / (2 * math.Pi),
		ConsecutiveLoops: r.consecutiveLoops,
		Flips:            r.flips,
		Centroid:         geometry.Centroid(points),
		Last:             last,
		Swipe:            swipe,
	}

	switch {
	case r.locked == GestureLoop && r.flips >= r.cfg.InfinityFlipThreshold:
		a.Type = GestureInfinity
		a.Direction = r.lockedDir
		a.InfinityFired = !r.infinityFired
		r.infinityFired = true
	case r.locked == GestureLoop:
		a.Type = GestureLoop
		a.Direction = r.lockedDir
	case swipe.Len() > r.cfg.LinearMinDistance:
		a.Type = GestureLinear
	default:
		return a, false
	}
	return a, true
}

// windowTurning sums the unwrapped heading changes of the window, sampled
// every second point, and counts turns agreeing with the prediction.
func (r *Recognizer) windowTurning(window []Sample) (rotation float64, same, opposite int) {
	var prev float64
	hasPrev := false
	for i := 2; i < len(window); i += 2 {
		seg := window[i].Pos.Sub(window[i-2].Pos)
		if seg.Len() < 3 {
			continue
		}
		heading := seg.Angle()
		if hasPrev {
			diff := geometry.UnwrapAngle(heading - prev)
			rotation += diff
			if math.Abs(diff) > 0.05 {
				if sign(diff) == r.predicted {
					same++
				} else {
					opposite++
				}
			}
		}
		prev, hasPrev = heading, true
	}
	return rotation, same, opposite
}

// Hold checks the press and hold triggers. Each fires at most once per press
// and only while the pointer stayed within LongPressRadius.
func (r *Recognizer) Hold(now float64) (spawn, grayscale bool) {
	if !r.active || r.movedAway {
		return false, false
	}
	held := now - r.start.T
	if held >= r.cfg.LongPressMs && !r.spawnFired {
		r.spawnFired, spawn = true, true
	}
	if held >= r.cfg.GrayscaleHoldMs && !r.grayFired {
		r.grayFired, grayscale = true, true
	}
	return spawn, grayscale
}

// PressPoint is where the current gesture started.
func (r *Recognizer) PressPoint() geometry.Vector2D { return r.start.Pos }

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
