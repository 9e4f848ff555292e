package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// Button runs OnClick once per press.
type Button struct {
	Rect
	Label   string
	OnClick func()

	Idle, Hover color.RGBA

	hovered bool
	held    latch
}

func NewButton(x, y, width, height float64, label string, onClick func()) *Button {
	return &Button{
		Rect:    Rect{X: x, Y: y, W: width, H: height},
		Label:   label,
		OnClick: onClick,
		Idle:    color.RGBA{R: 80, G: 120, B: 180, A: 255},
		Hover:   color.RGBA{R: 100, G: 150, B: 220, A: 255},
	}
}

func (b *Button) Update(p Pointer) bool {
	b.hovered = b.Hit(p)
	down := b.hovered && p.Pressed
	if b.held.press(down) && b.OnClick != nil {
		b.OnClick()
	}
	return down
}

func (b *Button) Draw(screen *ebiten.Image) {
	bg := b.Idle
	if b.hovered {
		bg = b.Hover
	}
	b.fill(screen, bg)
	b.stroke(screen, strokeGray)
	ebitenutil.DebugPrintAt(screen, b.Label, int(b.X+6), int(b.Y+(b.H-16)/2))
}

// GetHeight includes the gap below the button.
func (b *Button) GetHeight() float64 { return b.H + 6 }

func (b *Button) setY(y float64) { b.Y = y }

func (b *Button) top() float64 { return b.Y }
