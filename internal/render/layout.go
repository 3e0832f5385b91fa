package render

// Layout places the framed well and the HUD inside the terminal.
type Layout struct {
	Top, Left int // 0-based screen position of the frame's top-left corner
	FrameW    int // frame width in screen columns, borders included
	FrameH    int // frame height in screen rows, borders included
	HUDTop    int // first HUD row
	Fits      bool
}

// NewLayout centers a cols×rows board horizontally in the terminal and
// stacks hudRows of HUD below it. Fits is false when the terminal is too
// small to show the whole board.
func NewLayout(cols, rows, termW, termH, hudRows int) Layout {
	frameW := cols*TileWidth + 2
	frameH := rows + 2

	l := Layout{
		FrameW: frameW,
		FrameH: frameH,
		Fits:   frameW <= termW && frameH+hudRows <= termH,
	}

	l.Left = (termW - frameW) / 2
	if l.Left < 0 {
		l.Left = 0
	}
	l.Top = (termH - frameH - hudRows) / 2
	if l.Top < 0 {
		l.Top = 0
	}
	l.HUDTop = l.Top + frameH
	return l
}

// CellToScreen converts a board cell to the screen position (0-based) of
// its leftmost column. Returns -1,-1 for cells outside the board.
func (l Layout) CellToScreen(col, row, cols, rows int) (int, int) {
	if col < 0 || col >= cols || row < 0 || row >= rows {
		return -1, -1
	}
	return l.Left + 1 + col*TileWidth, l.Top + 1 + row
}
