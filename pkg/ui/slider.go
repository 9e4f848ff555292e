package ui

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// Slider edits a float tunable in [Min, Max].
type Slider struct {
	Rect
	Label    string
	Value    float64
	Min, Max float64
	Format   string // fmt verb for the value, "%.3g" by default

	// OnChange is called with the new value while the slider is dragged.
	OnChange func(v float64)
}

func NewSlider(x, y, w float64, label string, min, max, value float64) *Slider {
	return &Slider{
		Label:  label,
		Value:  value,
		Min:    min,
		Max:    max,
		Rect:   Rect{X: x, Y: y, W: w, H: 10},
		Format: "%.3g",
	}
}

// Update sets the value from the horizontal cursor position while pressed.
func (s *Slider) Update(p Pointer) bool {
	if !p.Pressed || !s.Hit(p) || s.W <= 0 {
		return false
	}
	v := s.Min + (p.X-s.X)/s.W*(s.Max-s.Min)
	v = max(s.Min, min(s.Max, v))
	if v != s.Value {
		s.Value = v
		if s.OnChange != nil {
			s.OnChange(v)
		}
	}
	return true
}

// Ratio is the filled fraction of the bar.
func (s *Slider) Ratio() float64 {
	if s.Max == s.Min {
		return 0
	}
	return (s.Value - s.Min) / (s.Max - s.Min)
}

func (s *Slider) Text() string {
	return s.Label + " " + fmt.Sprintf(s.Format, s.Value)
}

func (s *Slider) Draw(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen, s.Text(), int(s.X), int(s.Y-15))
	s.fill(screen, trackGray)
	filled := s.Rect
	filled.W *= s.Ratio()
	filled.fill(screen, strokeGray)
}

func (s *Slider) GetHeight() float64 {
	return s.H + 25 // bar plus label line
}

func (s *Slider) setY(y float64) { s.Y = y + 15 }

// top includes the label line above the bar.
func (s *Slider) top() float64 { return s.Y - 15 }
