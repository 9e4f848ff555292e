package nebula

import (
	"math"
)

type gridKey struct {
	x, y int
}

// spatialGrid buckets blobs by cell so mutual forces only look at the 3x3
// block around a blob.
type spatialGrid struct {
	cellSize float64
	cells    map[gridKey][]*Blob
}

func newSpatialGrid() *spatialGrid {
	return &spatialGrid{cellSize: 10, cells: make(map[gridKey][]*Blob)}
}

// rebuild refills the grid. Cell slices are truncated rather than dropped
// so their backing arrays are reused from frame to frame.
func (g *spatialGrid) rebuild(blobs []*Blob, cellSize float64) {
	for k := range g.cells {
		g.cells[k] = g.cells[k][:0]
	}
	// clamp to avoid tiny cells or a division by zero
	g.cellSize = math.Max(cellSize, 10)

	for _, b := range blobs {
		key := g.cellOf(b.Pos.X, b.Pos.Y)
		g.cells[key] = append(g.cells[key], b)
	}
}

// cellOf floors the indices: world coordinates are centered and go negative.
func (g *spatialGrid) cellOf(x, y float64) gridKey {
	return gridKey{x: int(math.Floor(x / g.cellSize)), y: int(math.Floor(y / g.cellSize))}
}

// near appends to dst every blob in the 3x3 block of cells around (x, y).
func (g *spatialGrid) near(x, y float64, dst []*Blob) []*Blob {
	c := g.cellOf(x, y)
	for i := c.x - 1; i <= c.x+1; i++ {
		for j := c.y - 1; j <= c.y+1; j++ {
			dst = append(dst, g.cells[gridKey{x: i, y: j}]...)
		}
	}
	return dst
}
