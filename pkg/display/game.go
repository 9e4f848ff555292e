package display

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lao-tseu-is-alive/go-nebula-clouds/pkg/nebula"
	"github.com/lao-tseu-is-alive/go-nebula-clouds/pkg/ui"
	"go.uber.org/zap"
)

// Game is the ebiten host of a nebula Engine. The engine is only touched
// from Update, Draw and Layout, which ebiten calls on one goroutine.
type Game struct {
	engine *nebula.Engine
	cfg    *nebula.Config
	log    *zap.Logger
	start  time.Time

	panel     *ui.UIPanel
	showPanel bool
	showStats bool

	// pointer state
	pointerDown bool
	panelGrab   bool
	lastX       float64
	lastY       float64
	touchIDs    []ebiten.TouchID

	white   *ebiten.Image
	batcher sceneBatcher

	// Timing instrumentation
	updateAvg float64 // rolling average in ms
	drawAvg   float64
}

func NewGame(engine *nebula.Engine, log *zap.Logger) *Game {
	cfg := engine.Config()
	white := ebiten.NewImage(3, 3)
	white.Fill(color.White)

	g := &Game{
		engine:    engine,
		cfg:       cfg,
		log:       log,
		start:     time.Now(),
		showPanel: cfg.ShowPanel,
		showStats: cfg.ShowStats,
		white:     white,
	}
	g.panel = g.newPanel()
	return g
}

func (g *Game) newPanel() *ui.UIPanel {
	cfg := g.cfg
	panel := ui.NewUIPanel(10, 10, 260, 430, "Nebula tuning")

	panel.AddSection("Spin & drift")
	panel.AddSlider("Max spin", 20, 240, cfg.MaxTargetRotation, func(v float64) { cfg.MaxTargetRotation = v })
	panel.AddSlider("Base spin", 0, 60, cfg.MaxBaseSpinDeg, func(v float64) { cfg.MaxBaseSpinDeg = v })
	panel.AddSlider("Wander", 0, 0.06, cfg.WanderStrength, func(v float64) { cfg.WanderStrength = v })

	panel.AddSection("Orbit & damping")
	panel.AddSlider("Base orbital", 0, 0.01, cfg.BaseOrbitalVelocity, func(v float64) { cfg.BaseOrbitalVelocity = v })
	panel.AddSlider("Damping", 0.98, 1, cfg.Damping, func(v float64) { cfg.Damping = v })
	panel.AddSlider("Form opacity", 0.01, 0.15, cfg.FormOpacity, func(v float64) { cfg.FormOpacity = v })

	panel.AddSection("Display")
	panel.AddCheckbox("Stats", g.showStats, func(v bool) { g.showStats = v })
	panel.AddCheckbox("Auto grayscale", cfg.AutoGrayscale, func(v bool) { cfg.AutoGrayscale = v })
	panel.AddButton("Reseed (N)", g.engine.Reseed)
	panel.AddButton("Grayscale (G)", g.engine.ToggleGrayscale)
	return panel
}

func (g *Game) now() float64 {
	return float64(time.Since(g.start).Microseconds()) / 1000
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.log.Info("quit requested")
		return ebiten.Termination
	}
	now := g.now()
	g.handleKeys()
	g.handlePointer(now)

	// errors are logged and shown by the engine, the next frame runs normally
	_ = g.engine.SafeFrame(now)
	return nil
}

func (g *Game) handleKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.showPanel = !g.showPanel
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.engine.Reseed()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		g.engine.ToggleGrayscale()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		x, y := ebiten.CursorPosition()
		g.engine.Spawn(float64(x), float64(y))
	}
}

// pointer reads the first touch if any, else the mouse.
func (g *Game) pointer() (x, y float64, pressed bool) {
	g.touchIDs = ebiten.AppendTouchIDs(g.touchIDs[:0])
	if len(g.touchIDs) > 0 {
		tx, ty := ebiten.TouchPosition(g.touchIDs[0])
		return float64(tx), float64(ty), true
	}
	mx, my := ebiten.CursorPosition()
	return float64(mx), float64(my), ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
}

// handlePointer routes the pointer to the panel or to the engine gesture
// recognizer. A press that starts on the panel stays with the panel.
func (g *Game) handlePointer(now float64) {
	x, y, pressed := g.pointer()
	_, wheel := ebiten.Wheel()

	if g.showPanel && !g.pointerDown {
		consumed := g.panel.Update(ui.Pointer{X: x, Y: y, Pressed: pressed, WheelY: wheel})
		if consumed && pressed {
			g.panelGrab = true
		}
	}
	if g.panelGrab {
		if !pressed {
			g.panelGrab = false
		}
		return
	}

	switch {
	case pressed && !g.pointerDown:
		g.pointerDown = true
		g.engine.PointerDown(x, y, now)
	case pressed && (x != g.lastX || y != g.lastY):
		g.engine.PointerMove(x, y, now)
	case !pressed && g.pointerDown:
		g.pointerDown = false
		g.engine.PointerUp(x, y, now)
	}
	g.lastX, g.lastY = x, y
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	lum := uint8(g.engine.Background() * 255)
	screen.Fill(color.RGBA{R: lum, G: lum, B: lum, A: 255})

	op := &ebiten.DrawTrianglesOptions{Blend: blendFor(g.engine.BlendPolicy())}
	g.batcher.draw(g.engine.Scene(), func(vs []ebiten.Vertex, is []uint16) {
		screen.DrawTriangles(vs, is, g.white, op)
	})

	if g.engine.ErrorActive() {
		vector.FillRect(screen, 0, 0, float32(g.cfg.Width), 4, color.RGBA{R: 220, G: 40, B: 40, A: 255}, false)
		ebitenutil.DebugPrintAt(screen, "frame error, see log", 10, 8)
	}
	if g.showPanel {
		g.panel.Draw(screen)
	}
	if g.showStats {
		g.drawStats(screen)
	}
}

func (g *Game) drawStats(screen *ebiten.Image) {
	gesture, dir := g.engine.Gesture()
	msg := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\n\nUpdate: %.2fms\nDraw:   %.2fms\n\nMode:   %s\nBlend:  %s\nGray:   %v\nOrbit:  %.4f\nGesture: %s %+d\nClouds: %d",
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		g.updateAvg,
		g.drawAvg,
		g.engine.Mode(),
		g.engine.BlendPolicy(),
		g.engine.Grayscale(),
		g.engine.Orbital(),
		gesture, dir,
		len(g.engine.Scene()))
	ebitenutil.DebugPrintAt(screen, msg, int(g.cfg.Width)-170, 10)
}

// Layout follows the window size so the field always fills the screen.
func (g *Game) Layout(w, h int) (int, int) {
	g.engine.Resize(float64(w), float64(h))
	return w, h
}

// Run opens the window and blocks until it is closed.
func Run(engine *nebula.Engine, log *zap.Logger, fullscreen bool) error {
	cfg := engine.Config()
	ebiten.SetWindowSize(int(cfg.Width), int(cfg.Height))
	ebiten.SetWindowTitle("Nebula clouds")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(fullscreen)

	if err := ebiten.RunGame(NewGame(engine, log)); err != nil {
		return fmt.Errorf("ebiten run failed: %w", err)
	}
	log.Info("window closed")
	return nil
}
