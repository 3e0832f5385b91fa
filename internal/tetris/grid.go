package tetris

// Grid is the W×H occupancy field. Row 0 is the top.
type Grid struct {
	w, h  int
	cells [][]Kind // [row][col]
}

// NewGrid creates an empty grid.
func NewGrid(w, h int) *Grid {
	g := &Grid{w: w, h: h, cells: make([][]Kind, h)}
	for y := range g.cells {
		g.cells[y] = make([]Kind, w)
	}
	return g
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.w }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.h }

// At returns the kind at (col, row). Out-of-range coordinates read as Empty.
func (g *Grid) At(col, row int) Kind {
	if col < 0 || col >= g.w || row < 0 || row >= g.h {
		return Empty
	}
	return g.cells[row][col]
}

// Rows returns a deep copy of the cell matrix.
func (g *Grid) Rows() [][]Kind {
	out := make([][]Kind, g.h)
	for y, row := range g.cells {
		out[y] = append([]Kind(nil), row...)
	}
	return out
}

// Clone returns an independent copy of the grid.
func (g *Grid) Clone() *Grid {
	return &Grid{w: g.w, h: g.h, cells: g.Rows()}
}

// Collides reports whether p overlaps a wall, the floor, or a filled cell.
// Cells above the top edge only collide with the side walls.
func (g *Grid) Collides(p Piece) bool {
	for x, y := range p.Cells() {
		if x < 0 || x >= g.w || y >= g.h {
			return true
		}
		if y >= 0 && g.cells[y][x] != Empty {
			return true
		}
	}
	return false
}

// Merge writes p into the grid. Cells above the top edge are dropped.
func (g *Grid) Merge(p Piece) {
	for x, y := range p.Cells() {
		if y < 0 || y >= g.h || x < 0 || x >= g.w {
			continue
		}
		g.cells[y][x] = p.Kind
	}
}

// RowFull reports whether every cell of row y is occupied.
func (g *Grid) RowFull(y int) bool {
	for _, k := range g.cells[y] {
		if k == Empty {
			return false
		}
	}
	return true
}

// ClearFullRows removes every full row, shifting the rows above it down
// and filling the top with empty rows. Returns the number of rows removed.
func (g *Grid) ClearFullRows() int {
	kept := make([][]Kind, 0, g.h)
	for y := 0; y < g.h; y++ {
		if !g.RowFull(y) {
			kept = append(kept, g.cells[y])
		}
	}

	cleared := g.h - len(kept)
	if cleared == 0 {
		return 0
	}

	rows := make([][]Kind, 0, g.h)
	for i := 0; i < cleared; i++ {
		rows = append(rows, make([]Kind, g.w))
	}
	g.cells = append(rows, kept...)
	return cleared
}
