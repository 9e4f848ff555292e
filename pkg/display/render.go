package display

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lao-tseu-is-alive/go-nebula-clouds/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-nebula-clouds/pkg/nebula"
	"github.com/lucasb-eyer/go-colorful"
)

// maxBatchVertices keeps a DrawTriangles batch addressable by uint16 indices.
const maxBatchVertices = 1<<16 - 1

// blendMultiply darkens the canvas by the form color, weighted by its alpha:
// dst * (src + 1 - srcAlpha) with premultiplied sources.
var blendMultiply = ebiten.Blend{
	BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
	BlendFactorSourceAlpha:      ebiten.BlendFactorZero,
	BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
	BlendFactorDestinationAlpha: ebiten.BlendFactorOne,
	BlendOperationRGB:           ebiten.BlendOperationAdd,
	BlendOperationAlpha:         ebiten.BlendOperationAdd,
}

// blendFor maps the engine compositing policy to an ebiten blend.
func blendFor(p nebula.BlendPolicy) ebiten.Blend {
	switch p {
	case nebula.BlendAdditive:
		return ebiten.BlendLighter
	case nebula.BlendMultiply:
		return blendMultiply
	default:
		return ebiten.BlendSourceOver
	}
}

// formColor converts an HSB color (hue in degrees, saturation and brightness
// in percent) to vertex color scales.
func formColor(hue, sat, bri, alpha float64) (r, g, b, a float32) {
	c := colorful.Hsv(geometry.NormalizeHue(hue), geometry.Clamp(sat/100, 0, 1), geometry.Clamp(bri/100, 0, 1)).Clamped()
	return float32(c.R), float32(c.G), float32(c.B), float32(geometry.Clamp(alpha, 0, 1))
}

// appendFan triangulates a star shaped polygon as a fan around its centroid.
func appendFan(vs []ebiten.Vertex, is []uint16, poly geometry.Polygon, r, g, b, a float32) ([]ebiten.Vertex, []uint16) {
	n := len(poly)
	if n < 3 {
		return vs, is
	}
	base := uint16(len(vs))
	c := geometry.Centroid(poly)
	vs = append(vs, vertex(c, r, g, b, a))
	for _, p := range poly {
		vs = append(vs, vertex(p, r, g, b, a))
	}
	for i := 0; i < n; i++ {
		next := (i + 1) % n
		is = append(is, base, base+1+uint16(i), base+1+uint16(next))
	}
	return vs, is
}

func vertex(p geometry.Vector2D, r, g, b, a float32) ebiten.Vertex {
	return ebiten.Vertex{
		DstX:   float32(p.X),
		DstY:   float32(p.Y),
		SrcX:   1,
		SrcY:   1,
		ColorR: r,
		ColorG: g,
		ColorB: b,
		ColorA: a,
	}
}

// sceneBatcher builds one triangle batch per blob and reuses its buffers
// from frame to frame.
type sceneBatcher struct {
	vertices []ebiten.Vertex
	indices  []uint16
	scratch  geometry.Polygon
}

// draw renders every blob of the scene through flush, which receives each
// filled batch.
func (sb *sceneBatcher) draw(scene []nebula.BlobView, flush func(vs []ebiten.Vertex, is []uint16)) {
	for _, v := range scene {
		r, g, b, a := formColor(v.Hue, v.Sat, v.Bri, v.FormAlpha)
		if a <= 0 {
			continue
		}
		sb.vertices, sb.indices = sb.vertices[:0], sb.indices[:0]
		for _, form := range v.Forms {
			if len(sb.vertices)+len(form)+1 > maxBatchVertices {
				flush(sb.vertices, sb.indices)
				sb.vertices, sb.indices = sb.vertices[:0], sb.indices[:0]
			}
			sb.scratch = form.Transform(sb.scratch, v.Center, v.Angle, v.Scale)
			sb.vertices, sb.indices = appendFan(sb.vertices, sb.indices, sb.scratch, r, g, b, a)
		}
		if len(sb.indices) > 0 {
			flush(sb.vertices, sb.indices)
		}
	}
}
