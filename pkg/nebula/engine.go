package nebula

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/lao-tseu-is-alive/go-nebula-clouds/pkg/geometry"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// BlobView is what a renderer needs to draw one blob. Center is in screen
// coordinates, Forms are in blob local coordinates and must be rotated by
// Angle and scaled by Scale before being moved to Center.
type BlobView struct {
	ID        uuid.UUID
	Slot      int
	Center    geometry.Vector2D
	Radius    float64
	Angle     float64 // radians
	Scale     float64
	Alpha     float64 // life envelope
	FormAlpha float64 // opacity of a single form
	Hue       float64
	Sat       float64
	Bri       float64
	Phase     Phase
	Forms     []geometry.Polygon
}

// Option customises an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for mode changes, spawns, gestures and
// recovered frame errors. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithRand replaces the seeded random source.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// Engine owns the whole cloud field and drives it one frame at a time.
// It is not safe for concurrent use: the host calls every method from its
// frame goroutine. Times are milliseconds on the host's monotonic clock,
// the engine being created at time 0.
type Engine struct {
	cfg        *Config
	log        *zap.Logger
	rng        *rand.Rand
	errLimiter *rate.Limiter
	seed       int64

	noise    *geometry.Noise
	modes    *ModeMachine
	colors   *ColorScheduler
	palette  *Palette
	placer   *Placer
	life     *Lifecycle
	gestures *Recognizer
	physics  *Integrator

	now     float64
	started bool

	errorUntil  float64
	lastGesture GestureType

	grayAuto bool
	grayNext float64
	grayEnd  float64

	views []BlobView
}

// NewEngine validates cfg and builds an engine whose natural schedule starts
// at time 0.
func NewEngine(cfg *Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	start, _ := ParseMode(cfg.StartMode)

	e := &Engine{cfg: cfg, log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}

	e.seed = cfg.Seed
	if e.seed == 0 {
		e.seed = time.Now().UnixNano()
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(uint64(e.seed), uint64(e.seed)^0x9e3779b97f4a7c15))
	}
	e.errLimiter = rate.NewLimiter(rate.Limit(cfg.ErrorLogPerSecond), 1)

	e.modes = NewModeMachine(cfg, e.rng, start, 0)
	e.colors = NewColorScheduler(cfg, e.modes)
	e.gestures = NewRecognizer(cfg)
	e.palette = NewPalette(cfg, e.rng)
	e.build(0)
	e.scheduleGrayscale(0)

	e.log.Info("nebula engine ready",
		zap.Int64("seed", e.seed),
		zap.Stringer("mode", start),
		zap.Int("blobs", cfg.NumBlobs),
		zap.Float64("width", cfg.Width),
		zap.Float64("height", cfg.Height))
	return e, nil
}

// build creates the seeded parts of the field: noise, placement, physics and
// a fresh slot table.
func (e *Engine) build(now float64) {
	e.noise = geometry.NewNoise(e.seed)
	e.placer = NewPlacer(e.cfg, e.noise)
	e.physics = NewIntegrator(e.cfg, e.noise)
	e.life = NewLifecycle(e.cfg, e.rng, e.placer, e.palette, now)
}

func (e *Engine) Config() *Config { return e.cfg }

// Now is the clock value of the last frame.
func (e *Engine) Now() float64 { return e.now }

func (e *Engine) Seed() int64 { return e.seed }

func (e *Engine) Mode() Mode { return e.modes.Current() }

// Modes exposes the mode machine for overlays.
func (e *Engine) Modes() *ModeMachine { return e.modes }

func (e *Engine) Blobs() []*Blob { return e.life.Blobs() }

func (e *Engine) Orbital() float64 { return e.physics.Orbital() }

func (e *Engine) Grayscale() bool { return e.colors.Grayscale() }

// Gesture is the sticky classification of the current press.
func (e *Engine) Gesture() (GestureType, int) { return e.gestures.Locked() }

// ErrorActive reports whether a recovered frame error should still be shown.
func (e *Engine) ErrorActive() bool { return e.now < e.errorUntil }

func (e *Engine) BlendPolicy() BlendPolicy { return e.modes.BlendPolicy(e.now) }

// Background is the canvas luminance in [0, 1].
func (e *Engine) Background() float64 { return e.modes.Background(e.now) }

// SafeFrame runs Frame and turns a panic into an error. The error is logged
// at most ErrorLogPerSecond times per second and raises the on-screen
// indicator for ErrorIndicatorMs; the next frame runs normally.
func (e *Engine) SafeFrame(now float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("frame at %.0fms panicked: %v", now, r)
			e.now = now
			e.errorUntil = now + e.cfg.ErrorIndicatorMs
			if e.errLimiter.Allow() {
				e.log.Error("frame failed", zap.Error(err), zap.Stack("stack"))
			}
		}
	}()
	e.Frame(now)
	return nil
}

// Frame advances modes, grayscale timer, lifecycle, physics and colors to now.
func (e *Engine) Frame(now float64) {
	dt := 0.0
	if e.started {
		dt = now - e.now
	}
	e.started = true
	e.now = now

	if e.modes.Update(now) {
		e.log.Info("mode transition",
			zap.Stringer("from", e.modes.Previous()),
			zap.Stringer("to", e.modes.Current()),
			zap.Bool("bridge", e.modes.JustCrossedBridge()),
			zap.Float64("monoHue", e.modes.MonoHue()))
	}
	e.stepGrayscale(now)

	freeze := e.cfg.FreezeLifeDuringTransition && e.modes.Transitioning(now)
	for _, b := range e.life.Update(now, freeze) {
		e.log.Debug("blob born",
			zap.Int("slot", b.Slot),
			zap.Int("cycle", b.Cycle),
			zap.Float64("hue", b.Hue),
			zap.Float64("radius", b.Radius))
	}

	if spawn, gray := e.gestures.Hold(now); spawn || gray {
		if spawn {
			e.spawnAt(e.gestures.PressPoint(), now)
		}
		if gray {
			e.ToggleGrayscale()
		}
	}

	blobs := e.life.Blobs()
	e.physics.Step(blobs, now, dt)
	for _, b := range blobs {
		if b.Alive() {
			e.colors.Update(b, now)
		}
	}
}

// toWorld converts screen coordinates to the center origin world.
func (e *Engine) toWorld(x, y float64) geometry.Vector2D {
	return geometry.Vector2D{X: x - e.cfg.Width/2, Y: y - e.cfg.Height/2}
}

func (e *Engine) toScreen(p geometry.Vector2D) geometry.Vector2D {
	return geometry.Vector2D{X: p.X + e.cfg.Width/2, Y: p.Y + e.cfg.Height/2}
}

// Spawn starts a cloud at the screen position (x, y) right now.
func (e *Engine) Spawn(x, y float64) {
	e.spawnAt(e.toWorld(x, y), e.now)
}

func (e *Engine) spawnAt(p geometry.Vector2D, now float64) {
	b := e.life.Spawn(p, now)
	e.log.Info("manual spawn",
		zap.Int("slot", b.Slot),
		zap.Stringer("id", b.ID),
		zap.Float64("x", p.X),
		zap.Float64("y", p.Y))
}

// PointerDown starts a gesture at screen position (x, y).
func (e *Engine) PointerDown(x, y, t float64) {
	p := e.toWorld(x, y)
	e.gestures.Begin(p, t)
	e.physics.SetPointer(p, true)
	e.lastGesture = GestureNone
}

// PointerMove feeds one pointer sample to the recognizer and applies the
// resulting impulses. Moves without a press are ignored.
func (e *Engine) PointerMove(x, y, t float64) {
	if !e.gestures.Active() {
		return
	}
	p := e.toWorld(x, y)
	e.physics.SetPointer(p, true)
	a, ok := e.gestures.Append(p, t)
	if !ok {
		return
	}
	if a.Type != e.lastGesture {
		e.log.Debug("gesture",
			zap.Stringer("type", a.Type),
			zap.Int("direction", a.Direction),
			zap.Int("flips", a.Flips))
		e.lastGesture = a.Type
	}

	blobs := e.life.Blobs()
	switch a.Type {
	case GestureInfinity:
		if a.InfinityFired {
			e.physics.ApplyInfinity(blobs, t)
			e.log.Info("infinity burst", zap.Int("flips", a.Flips))
		}
	case GestureLoop:
		e.physics.ApplyLoop(blobs, a, t)
	case GestureLinear:
		e.physics.ApplyKick(blobs, a, t)
	}
}

// PointerUp ends the gesture. Momentum already given to blobs decays on its own.
func (e *Engine) PointerUp(x, y, t float64) {
	e.gestures.End()
	e.physics.SetPointer(e.toWorld(x, y), false)
	e.lastGesture = GestureNone
}

// ToggleGrayscale flips the grayscale override. An automatic window in
// progress is cancelled and the next one is rescheduled.
func (e *Engine) ToggleGrayscale() {
	on := !e.colors.Grayscale()
	e.colors.SetGrayscale(on)
	if e.grayAuto {
		e.grayAuto = false
		e.scheduleGrayscale(e.now)
	}
	e.log.Info("grayscale toggled", zap.Bool("on", on))
}

func (e *Engine) scheduleGrayscale(now float64) {
	e.grayNext = now + e.cfg.GrayscaleMinEveryMs +
		e.rng.Float64()*(e.cfg.GrayscaleMaxEveryMs-e.cfg.GrayscaleMinEveryMs)
}

func (e *Engine) stepGrayscale(now float64) {
	if !e.cfg.AutoGrayscale {
		return
	}
	switch {
	case e.grayAuto && now >= e.grayEnd:
		e.grayAuto = false
		e.colors.SetGrayscale(false)
		e.scheduleGrayscale(now)
	case !e.grayAuto && now >= e.grayNext:
		if e.colors.Grayscale() {
			// a manual override is already gray, wait for the next window
			e.scheduleGrayscale(now)
			return
		}
		e.grayAuto = true
		e.grayEnd = now + e.cfg.GrayscaleDurationMs
		e.colors.SetGrayscale(true)
	}
}

// Reseed draws a new seed and restarts the field from an empty canvas with
// no hue history. The current mode is kept.
func (e *Engine) Reseed() {
	e.seed = e.rng.Int64()
	e.palette.Reset()
	e.build(e.now)
	e.gestures.End()
	e.log.Info("reseeded", zap.Int64("seed", e.seed))
}

// Resize adapts the canvas. Blobs keep their world position.
func (e *Engine) Resize(width, height float64) {
	if width <= 0 || height <= 0 || (width == e.cfg.Width && height == e.cfg.Height) {
		return
	}
	e.cfg.Width, e.cfg.Height = width, height
	e.log.Debug("resized", zap.Float64("width", width), zap.Float64("height", height))
}

// Scene returns the drawable blobs of the last frame. The slice is reused by
// the next call.
func (e *Engine) Scene() []BlobView {
	e.views = e.views[:0]
	for _, b := range e.life.Blobs() {
		if !b.Alive() || b.Life.Phase == PhaseUnborn || b.Visible == 0 {
			continue
		}
		visible := min(b.Visible, len(b.Forms))
		e.views = append(e.views, BlobView{
			ID:        b.ID,
			Slot:      b.Slot,
			Center:    e.toScreen(b.Pos),
			Radius:    b.Radius,
			Angle:     b.Angle * degToRad,
			Scale:     geometry.Lerp(0.85, 1, b.Life.Alpha),
			Alpha:     b.Life.Alpha,
			FormAlpha: b.Life.Alpha * e.cfg.FormOpacity,
			Hue:       b.Hue,
			Sat:       b.Sat,
			Bri:       b.Bri,
			Phase:     b.Life.Phase,
			Forms:     b.Forms[:visible],
		})
	}
	return e.views
}

const degToRad = 0.017453292519943295
