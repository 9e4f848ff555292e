package nebula

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/lao-tseu-is-alive/go-nebula-clouds/pkg/geometry"
	"github.com/stretchr/testify/assert"
)

func TestHueZone_Contains(t *testing.T) {
	peach := HueZone{"peach", 345, 375}
	tests := []struct {
		hue  float64
		want bool
	}{
		{350, true},
		{0, true},
		{14, true},
		{16, false},
		{344, false},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, peach.Contains(tt.hue), "hue %v", tt.hue)
	}
	assert.True(t, HueZone{"sky", 200, 225}.Contains(210))
	assert.False(t, HueZone{"sky", 200, 225}.Contains(226))
}

func TestPalette_HuesComeFromZones(t *testing.T) {
	cfg := DefaultConfig()
	p := NewPalette(cfg, rand.New(rand.NewPCG(5, 6)))
	for i := 0; i < 500; i++ {
		h := p.Next()
		assert.GreaterOrEqual(t, h, 0.0)
		assert.Less(t, h, 360.0)
		inZone := slices.ContainsFunc(colorZones, func(z HueZone) bool { return z.Contains(h) })
		assert.Truef(t, inZone, "hue %v is outside every zone", h)
	}
	assert.Len(t, p.Recent(), cfg.RecentHueMemory)
}

func TestPalette_SpreadsConsecutiveHues(t *testing.T) {
	cfg := DefaultConfig()
	p := NewPalette(cfg, rand.New(rand.NewPCG(9, 9)))

	// the first few picks land in distinct zones far apart from each other
	var hues []float64
	for i := 0; i < 4; i++ {
		hues = append(hues, p.Next())
	}
	for i := range hues {
		for j := i + 1; j < len(hues); j++ {
			assert.GreaterOrEqualf(t, geometry.HueDistance(hues[i], hues[j]), cfg.MinHueSpacing,
				"%v and %v are too close", hues[i], hues[j])
		}
	}

	p.Reset()
	assert.Empty(t, p.Recent())
}
