package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

const checkboxSize = 16

var checkGreen = color.RGBA{R: 100, G: 200, B: 100, A: 255}

// Checkbox toggles a boolean on each new press.
type Checkbox struct {
	Rect
	Label    string
	Value    bool
	OnChange func(v bool)

	held latch
}

func NewCheckbox(x, y float64, label string, value bool) *Checkbox {
	return &Checkbox{
		Rect:  Rect{X: x, Y: y, W: checkboxSize, H: checkboxSize},
		Label: label,
		Value: value,
	}
}

func (c *Checkbox) Update(p Pointer) bool {
	down := c.Hit(p) && p.Pressed
	if c.held.press(down) {
		c.Value = !c.Value
		if c.OnChange != nil {
			c.OnChange(c.Value)
		}
	}
	return down
}

func (c *Checkbox) Draw(screen *ebiten.Image) {
	c.stroke(screen, strokeGray)
	if c.Value {
		c.inset(2).fill(screen, checkGreen)
	}
	ebitenutil.DebugPrintAt(screen, c.Label, int(c.X+c.W+8), int(c.Y))
}

func (c *Checkbox) GetHeight() float64 { return c.H + 5 }

func (c *Checkbox) setY(y float64) { c.Y = y }

func (c *Checkbox) top() float64 { return c.Y }
