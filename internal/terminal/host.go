// Package terminal runs a nebula Engine inside a terminal, drawing blob
// silhouettes with half-block characters through tcell.
package terminal

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lao-tseu-is-alive/go-nebula-clouds/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-nebula-clouds/pkg/nebula"
	"go.uber.org/zap"
)

// FrameInterval is the refresh period of the terminal host.
const FrameInterval = 33 * time.Millisecond

// Host owns a tcell screen and drives an Engine from a single goroutine.
// Events are read by a pump goroutine and drained at the start of each frame.
type Host struct {
	screen tcell.Screen
	engine *nebula.Engine
	log    *zap.Logger
	start  time.Time

	canvas  canvas
	scratch geometry.Polygon

	pointerDown  bool
	lastX, lastY float64
}

func NewHost(screen tcell.Screen, engine *nebula.Engine, log *zap.Logger) *Host {
	if log == nil {
		log = zap.NewNop()
	}
	return &Host{
		screen: screen,
		engine: engine,
		log:    log,
		start:  time.Now(),
	}
}

// Run takes an initialised screen, renders until q, Esc or Ctrl-C is pressed
// or ctx is done, and finalises the screen before returning.
func (h *Host) Run(ctx context.Context) error {
	h.screen.EnableMouse(tcell.MouseButtonEvents | tcell.MouseDragEvents)
	h.screen.HideCursor()
	h.resize()

	events := make(chan tcell.Event, 100)
	stop := make(chan struct{})
	done := make(chan struct{})
	go h.pump(events, stop, done)
	defer func() {
		close(stop)
		h.screen.Fini()
		<-done
	}()

	ticker := time.NewTicker(FrameInterval)
	defer ticker.Stop()

	h.log.Info("terminal host started", zap.Float64("unit", h.canvas.unit))
	for {
		select {
		case <-ctx.Done():
			h.log.Info("terminal host stopped", zap.Error(ctx.Err()))
			return nil
		case <-ticker.C:
			if h.drain(events) {
				h.log.Info("quit requested")
				return nil
			}
			// errors are logged and flagged by the engine
			_ = h.engine.SafeFrame(h.since(time.Now()))
			h.draw()
		}
	}
}

// pump forwards screen events until the screen is finalised.
func (h *Host) pump(events chan<- tcell.Event, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		ev := h.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-stop:
			return
		}
	}
}

// drain handles every pending event and reports whether quit was requested.
func (h *Host) drain(events <-chan tcell.Event) bool {
	for {
		select {
		case ev := <-events:
			if h.handle(ev) {
				return true
			}
		default:
			return false
		}
	}
}

func (h *Host) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return true
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return true
			case 'n':
				h.engine.Reseed()
			case 'g':
				h.engine.ToggleGrayscale()
			case 's':
				h.engine.Spawn(h.lastX, h.lastY)
			}
		}
	case *tcell.EventMouse:
		h.mouse(ev)
	case *tcell.EventResize:
		h.screen.Sync()
		h.resize()
	}
	return false
}

func (h *Host) mouse(ev *tcell.EventMouse) {
	col, row := ev.Position()
	x, y := h.toEngine(col, row)
	t := h.since(ev.When())
	pressed := ev.Buttons()&tcell.Button1 != 0

	switch {
	case pressed && !h.pointerDown:
		h.pointerDown = true
		h.engine.PointerDown(x, y, t)
	case pressed && (x != h.lastX || y != h.lastY):
		h.engine.PointerMove(x, y, t)
	case !pressed && h.pointerDown:
		h.pointerDown = false
		h.engine.PointerUp(x, y, t)
	}
	h.lastX, h.lastY = x, y
}

// toEngine maps a cell to the engine coordinates of its center.
func (h *Host) toEngine(col, row int) (float64, float64) {
	u := h.canvas.unit
	return (float64(col) + 0.5) * u, (float64(row) + 0.5) * 2 * u
}

func (h *Host) since(t time.Time) float64 {
	return float64(t.Sub(h.start).Microseconds()) / 1000
}

// resize fits the configured canvas into the terminal on first use and then
// keeps the pixel unit, so the field grows or shrinks with the window.
func (h *Host) resize() {
	cols, rows := h.screen.Size()
	if cols <= 0 || rows <= 0 {
		return
	}
	unit := h.canvas.unit
	if unit == 0 {
		cfg := h.engine.Config()
		unit = max(cfg.Width/float64(cols), cfg.Height/float64(2*rows))
	}
	h.canvas.resize(cols, rows, unit)
	h.engine.Resize(float64(cols)*unit, float64(2*rows)*unit)
}

func (h *Host) draw() {
	c := &h.canvas
	c.clear(h.engine.Background())
	policy := h.engine.BlendPolicy()
	for _, v := range h.engine.Scene() {
		if v.FormAlpha <= 0 {
			continue
		}
		col := hsb(v.Hue, v.Sat, v.Bri)
		for _, form := range v.Forms {
			h.scratch = form.Transform(h.scratch, v.Center, v.Angle, v.Scale)
			c.fill(h.scratch, col, v.FormAlpha, policy)
		}
	}
	c.show(h.screen)
	if h.engine.ErrorActive() {
		h.status("frame error, see log")
	}
	h.screen.Show()
}

func (h *Host) status(msg string) {
	st := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDarkRed)
	for i, r := range msg {
		h.screen.SetContent(i, 0, r, nil, st)
	}
}
