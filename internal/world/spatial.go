package world

// SpatialHash is the broad-phase index over enemies. It is rebuilt from
// scratch every tick and never updated incrementally. Query is sound, not
// exact: callers finish with their own distance check.
// Accessed only from the tick goroutine, no locks.

const SpatialCellSize = 200

type cellKey struct {
	cx, cy int
}

type SpatialHash struct {
	cellSize float64
	cells    map[cellKey][]*Enemy
	seen     map[*Enemy]struct{}
}

func NewSpatialHash(cellSize float64) *SpatialHash {
	if cellSize <= 0 {
		cellSize = SpatialCellSize
	}
	return &SpatialHash{
		cellSize: cellSize,
		cells:    make(map[cellKey][]*Enemy),
		seen:     make(map[*Enemy]struct{}),
	}
}

func (h *SpatialHash) coord(v float64) int {
	return floorDiv(v, h.cellSize)
}

// Clear drops every entry but keeps cell slices for reuse. Slots are nilled
// so removed enemies are not kept alive by the backing arrays.
func (h *SpatialHash) Clear() {
	for k, cell := range h.cells {
		clear(cell)
		h.cells[k] = cell[:0]
	}
}

// Insert places e into every cell its bounding circle's box touches.
func (h *SpatialHash) Insert(e *Enemy) {
	x0, x1 := h.coord(e.Pos.X-e.Radius), h.coord(e.Pos.X+e.Radius)
	y0, y1 := h.coord(e.Pos.Y-e.Radius), h.coord(e.Pos.Y+e.Radius)
	for cx := x0; cx <= x1; cx++ {
		for cy := y0; cy <= y1; cy++ {
			k := cellKey{cx, cy}
			h.cells[k] = append(h.cells[k], e)
		}
	}
}

// Rebuild clears the index and inserts every enemy.
func (h *SpatialHash) Rebuild(enemies []*Enemy) {
	h.Clear()
	for _, e := range enemies {
		h.Insert(e)
	}
}

// Query returns the de-duplicated union of all cells the query box touches.
// The returned slice is freshly allocated.
func (h *SpatialHash) Query(center Vec2, radius float64) []*Enemy {
	x0, x1 := h.coord(center.X-radius), h.coord(center.X+radius)
	y0, y1 := h.coord(center.Y-radius), h.coord(center.Y+radius)
	clear(h.seen)
	var out []*Enemy
	for cx := x0; cx <= x1; cx++ {
		for cy := y0; cy <= y1; cy++ {
			for _, e := range h.cells[cellKey{cx, cy}] {
				if _, dup := h.seen[e]; dup {
					continue
				}
				h.seen[e] = struct{}{}
				out = append(out, e)
			}
		}
	}
	return out
}

// Len counts non-empty cells.
func (h *SpatialHash) Len() int {
	n := 0
	for _, cell := range h.cells {
		if len(cell) > 0 {
			n++
		}
	}
	return n
}
