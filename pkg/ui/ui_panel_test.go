package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlider_Update(t *testing.T) {
	s := NewSlider(10, 100, 200, "damping", 0, 2, 1)
	var got []float64
	s.OnChange = func(v float64) { got = append(got, v) }

	tests := []struct {
		name     string
		p        Pointer
		consumed bool
		want     float64
	}{
		{"hover without press", Pointer{X: 60, Y: 105}, false, 1},
		{"press at quarter", Pointer{X: 60, Y: 105, Pressed: true}, true, 0.5},
		{"press at right edge", Pointer{X: 210, Y: 105, Pressed: true}, true, 2},
		{"press outside", Pointer{X: 300, Y: 105, Pressed: true}, false, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.consumed, s.Update(tt.p))
			assert.InDelta(t, tt.want, s.Value, 1e-12)
		})
	}
	assert.Equal(t, []float64{0.5, 2}, got)
	assert.Equal(t, "damping 2", s.Text())
	assert.Equal(t, 1.0, s.Ratio())
}

func TestCheckbox_TogglesOncePerPress(t *testing.T) {
	c := NewCheckbox(0, 0, "stats", false)
	calls := 0
	c.OnChange = func(bool) { calls++ }
	down := Pointer{X: 5, Y: 5, Pressed: true}

	c.Update(down)
	c.Update(down)
	c.Update(down)
	assert.True(t, c.Value)
	c.Update(Pointer{X: 5, Y: 5})
	c.Update(down)
	assert.False(t, c.Value)
	assert.Equal(t, 2, calls)
}

func TestButton_ClicksOncePerPress(t *testing.T) {
	clicks := 0
	b := NewButton(0, 0, 100, 20, "reseed", func() { clicks++ })
	down := Pointer{X: 50, Y: 10, Pressed: true}
	for i := 0; i < 5; i++ {
		b.Update(down)
	}
	b.Update(Pointer{X: 50, Y: 10})
	b.Update(down)
	assert.Equal(t, 2, clicks)
}

func TestUIPanel_LayoutAndConsume(t *testing.T) {
	p := NewUIPanel(0, 0, 200, 120, "Tuning")
	p.AddSection("Motion")
	var damping float64
	s := p.AddSlider("damping", 0.9, 1, 0.95, func(v float64) { damping = v })
	p.AddSection("Overlay")
	c := p.AddCheckbox("stats", true, nil)
	b := p.AddButton("reseed", nil)

	// title 30, header 25, slider label offset 15
	assert.Equal(t, 70.0, s.Y)
	assert.Equal(t, 30+25+s.GetHeight()+25, c.Y)
	assert.Equal(t, c.Y+c.GetHeight(), b.Y)

	assert.False(t, p.Update(Pointer{X: 500, Y: 50, Pressed: true}), "outside the panel")
	assert.True(t, p.Update(Pointer{X: s.X + s.W, Y: s.Y + 1, Pressed: true}))
	assert.InDelta(t, 1.0, damping, 1e-12)

	// scrolling moves every widget up and is clamped to the content
	p.Update(Pointer{X: 10, Y: 10, WheelY: -1})
	require.Equal(t, 20.0, p.ScrollOffset)
	assert.Equal(t, 50.0, s.Y)
	p.Update(Pointer{X: 10, Y: 10, WheelY: -100})
	assert.Equal(t, p.contentHeight()-p.H+40, p.ScrollOffset)
	p.Update(Pointer{X: 10, Y: 10, WheelY: 100})
	assert.Equal(t, 0.0, p.ScrollOffset)
}
