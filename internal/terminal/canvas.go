package terminal

import (
	"math"
	"slices"

	"github.com/gdamore/tcell/v2"
	"github.com/lao-tseu-is-alive/go-nebula-clouds/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-nebula-clouds/pkg/nebula"
	"github.com/lucasb-eyer/go-colorful"
)

// halfBlock paints the upper pixel of a cell with the foreground color and
// the lower one with the background color.
const halfBlock = '▀'

// canvas is a grid of square pixels, two stacked in every terminal cell.
// Polygons are given in engine screen units, unit of them per pixel.
type canvas struct {
	cols, rows int
	w, h       int
	unit       float64
	pix        []colorful.Color
	xs         []float64
}

func (c *canvas) resize(cols, rows int, unit float64) {
	c.cols, c.rows = cols, rows
	c.w, c.h = cols, rows*2
	c.unit = unit
	n := c.w * c.h
	c.pix = slices.Grow(c.pix[:0], n)[:n]
}

func (c *canvas) clear(lum float64) {
	bg := colorful.Color{R: lum, G: lum, B: lum}
	for i := range c.pix {
		c.pix[i] = bg
	}
}

// fill composites a polygon over every pixel whose center lies inside it,
// scanline by scanline with the even-odd rule.
func (c *canvas) fill(poly geometry.Polygon, col colorful.Color, alpha float64, policy nebula.BlendPolicy) {
	n := len(poly)
	if n < 3 || alpha <= 0 || c.unit <= 0 {
		return
	}
	minY, maxY := poly[0].Y, poly[0].Y
	for _, p := range poly[1:] {
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	first := max(int(math.Ceil(minY/c.unit-0.5)), 0)
	last := min(int(math.Ceil(maxY/c.unit-0.5))-1, c.h-1)

	for row := first; row <= last; row++ {
		y := (float64(row) + 0.5) * c.unit
		c.xs = c.xs[:0]
		for i, p1 := range poly {
			p2 := poly[(i+1)%n]
			if (p1.Y <= y) == (p2.Y <= y) {
				continue
			}
			c.xs = append(c.xs, p1.X+(y-p1.Y)*(p2.X-p1.X)/(p2.Y-p1.Y))
		}
		slices.Sort(c.xs)
		for k := 0; k+1 < len(c.xs); k += 2 {
			from := max(int(math.Ceil(c.xs[k]/c.unit-0.5)), 0)
			to := min(int(math.Ceil(c.xs[k+1]/c.unit-0.5)), c.w)
			line := c.pix[row*c.w:]
			for x := from; x < to; x++ {
				line[x] = blend(line[x], col, alpha, policy)
			}
		}
	}
}

// blend mirrors the compositing of the window renderer on one pixel.
func blend(dst, src colorful.Color, a float64, policy nebula.BlendPolicy) colorful.Color {
	switch policy {
	case nebula.BlendAdditive:
		return colorful.Color{R: dst.R + src.R*a, G: dst.G + src.G*a, B: dst.B + src.B*a}
	case nebula.BlendMultiply:
		return colorful.Color{R: dst.R * (1 - a + src.R*a), G: dst.G * (1 - a + src.G*a), B: dst.B * (1 - a + src.B*a)}
	default:
		return dst.BlendRgb(src, a)
	}
}

// hsb converts hue in degrees, saturation and brightness in percent.
func hsb(hue, sat, bri float64) colorful.Color {
	return colorful.Hsv(geometry.NormalizeHue(hue), geometry.Clamp(sat/100, 0, 1), geometry.Clamp(bri/100, 0, 1))
}

func cellColor(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// show writes the pixels to the screen as half-block cells.
func (c *canvas) show(s tcell.Screen) {
	for row := 0; row < c.rows; row++ {
		top := c.pix[2*row*c.w:]
		bottom := c.pix[(2*row+1)*c.w:]
		for col := 0; col < c.cols; col++ {
			st := tcell.StyleDefault.Foreground(cellColor(top[col])).Background(cellColor(bottom[col]))
			s.SetContent(col, row, halfBlock, nil, st)
		}
	}
}
