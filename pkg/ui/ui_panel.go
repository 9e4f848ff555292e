package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

const (
	titleHeight  = 30.0
	headerHeight = 25.0
	wheelStep    = 20.0
)

// Pointer is the mouse state for one frame, in screen pixels.
type Pointer struct {
	X, Y    float64
	Pressed bool
	WheelY  float64
}

// UIWidget is implemented by Slider, Checkbox and Button.
type UIWidget interface {
	Update(p Pointer) bool
	Draw(screen *ebiten.Image)
	GetHeight() float64
	setY(y float64)
	top() float64
}

// UIPanel stacks widgets in titled sections inside a scrollable box.
type UIPanel struct {
	Rect
	Title        string
	Widgets      []UIWidget
	ScrollOffset float64

	Background, Border color.RGBA

	sections []section
}

// section is a header drawn above the widgets added after it.
type section struct {
	title string
	first int
	y     float64
}

func NewUIPanel(x, y, width, height float64, title string) *UIPanel {
	return &UIPanel{
		Rect:       Rect{X: x, Y: y, W: width, H: height},
		Title:      title,
		Background: color.RGBA{R: 40, G: 40, B: 45, A: 230},
		Border:     color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

func (p *UIPanel) AddSection(title string) {
	p.sections = append(p.sections, section{title: title, first: len(p.Widgets)})
}

func (p *UIPanel) AddSlider(label string, min, max, value float64, onChange func(float64)) *Slider {
	s := NewSlider(p.X+10, 0, p.W-20, label, min, max, value)
	s.OnChange = onChange
	p.add(s)
	return s
}

func (p *UIPanel) AddCheckbox(label string, value bool, onChange func(bool)) *Checkbox {
	c := NewCheckbox(p.X+10, 0, label, value)
	c.OnChange = onChange
	p.add(c)
	return c
}

func (p *UIPanel) AddButton(label string, onClick func()) *Button {
	b := NewButton(p.X+10, 0, p.W-20, 22, label, onClick)
	p.add(b)
	return b
}

func (p *UIPanel) add(w UIWidget) {
	p.Widgets = append(p.Widgets, w)
	p.layout()
}

// layout stacks headers and widgets below the title, shifted by the scroll
// offset. Widgets added before any section sit right under the title.
func (p *UIPanel) layout() {
	y := p.Y + titleHeight - p.ScrollOffset
	i := 0
	stack := func(end int) {
		for ; i < end; i++ {
			p.Widgets[i].setY(y)
			y += p.Widgets[i].GetHeight()
		}
	}
	for k := range p.sections {
		stack(p.sections[k].first)
		p.sections[k].y = y
		y += headerHeight
	}
	stack(len(p.Widgets))
}

func (p *UIPanel) contentHeight() float64 {
	h := titleHeight + headerHeight*float64(len(p.sections))
	for _, w := range p.Widgets {
		h += w.GetHeight()
	}
	return h
}

// Update reports whether the panel took the pointer. A taken pointer is not
// a gesture for the host.
func (p *UIPanel) Update(ptr Pointer) bool {
	if !p.Hit(ptr) {
		away := Pointer{X: -1, Y: -1}
		for _, w := range p.Widgets {
			w.Update(away)
		}
		return false
	}
	if ptr.WheelY != 0 {
		limit := max(p.contentHeight()-p.H+40, 0)
		p.ScrollOffset = min(max(p.ScrollOffset-ptr.WheelY*wheelStep, 0), limit)
		p.layout()
	}
	for _, w := range p.Widgets {
		w.Update(ptr)
	}
	return true
}

func (p *UIPanel) Draw(screen *ebiten.Image) {
	p.fill(screen, p.Background)
	p.stroke(screen, p.Border)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+10), int(p.Y+5))

	shown := func(y, h float64) bool {
		return y >= p.Y+headerHeight && y+h <= p.Y+p.H
	}
	header := color.RGBA{R: 60, G: 60, B: 70, A: 255}
	for _, s := range p.sections {
		if !shown(s.y, 20) {
			continue
		}
		Rect{X: p.X + 5, Y: s.y, W: p.W - 10, H: 20}.fill(screen, header)
		ebitenutil.DebugPrintAt(screen, s.title, int(p.X+10), int(s.y+3))
	}
	for _, w := range p.Widgets {
		if shown(w.top(), w.GetHeight()) {
			w.Draw(screen)
		}
	}
}
