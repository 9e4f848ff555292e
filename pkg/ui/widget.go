package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	strokeGray = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	trackGray  = color.RGBA{R: 80, G: 80, B: 80, A: 255}
)

// Rect is the screen area a widget answers to.
type Rect struct {
	X, Y, W, H float64
}

// Hit reports whether the pointer is over the rectangle, edges included.
func (r Rect) Hit(p Pointer) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

func (r Rect) fill(screen *ebiten.Image, c color.Color) {
	vector.FillRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), c, true)
}

func (r Rect) stroke(screen *ebiten.Image, c color.Color) {
	vector.StrokeRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), 2, c, true)
}

func (r Rect) inset(d float64) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, W: r.W - 2*d, H: r.H - 2*d}
}

// latch turns a held press into a single event.
type latch bool

// press reports true on the first frame of a press only.
func (l *latch) press(down bool) bool {
	first := down && !bool(*l)
	*l = latch(down)
	return first
}
