package render

import (
	"fmt"
	"strings"

	"happy-tetris/internal/tetris"
)

const HUDRows = 4

// Cell represents a single terminal cell with full RGB color.
type Cell struct {
	Ch            rune
	FgR, FgG, FgB uint8
	BgR, BgG, BgB uint8
	Bold          bool
}

var sentinel = Cell{Ch: '\x00', FgR: 255, BgB: 255, Bold: true}

// BoardInfo is the minimal board data the renderer needs.
type BoardInfo struct {
	Name     string
	Grid     [][]tetris.Kind // [row][col]
	Piece    tetris.Piece
	HasPiece bool
	Over     bool
	Lines    int
	Best     int
}

// Engine is a per-session double-buffer diff renderer.
type Engine struct {
	width, height int
	current       [][]Cell
	next          [][]Cell
	firstFrame    bool
	lastOver      bool
}

// NewEngine creates a renderer for the given terminal dimensions.
func NewEngine(width, height int) *Engine {
	e := &Engine{
		width:      width,
		height:     height,
		firstFrame: true,
	}
	e.current = e.makeBuffer(sentinel)
	e.next = e.makeBuffer(Cell{})
	return e
}

// Resize adjusts the renderer for a new terminal size.
func (e *Engine) Resize(width, height int) {
	e.width = width
	e.height = height
	e.current = e.makeBuffer(sentinel)
	e.next = e.makeBuffer(Cell{})
	e.firstFrame = true
}

func (e *Engine) makeBuffer(fill Cell) [][]Cell {
	buf := make([][]Cell, e.height)
	for y := 0; y < e.height; y++ {
		buf[y] = make([]Cell, e.width)
		for x := 0; x < e.width; x++ {
			buf[y][x] = fill
		}
	}
	return buf
}

// Render produces the ANSI byte output for the current frame.
func (e *Engine) Render(board BoardInfo, playerCount, termW, termH int) string {
	if termW != e.width || termH != e.height {
		e.Resize(termW, termH)
	}
	if board.Over != e.lastOver {
		e.firstFrame = true
		e.lastOver = board.Over
	}

	bg := Cell{Ch: ' ', BgR: screenBG.R, BgG: screenBG.G, BgB: screenBG.B}
	for y := 0; y < e.height; y++ {
		for x := 0; x < e.width; x++ {
			e.next[y][x] = bg
		}
	}

	rows := len(board.Grid)
	cols := 0
	if rows > 0 {
		cols = len(board.Grid[0])
	}
	layout := NewLayout(cols, rows, e.width, e.height, HUDRows)
	if !layout.Fits {
		e.drawCenteredText(e.height/2, "Terminal too small", 255, 200, 100, screenBG.R, screenBG.G, screenBG.B, true)
		e.drawCenteredText(e.height/2+1, fmt.Sprintf("need %dx%d", layout.FrameW, layout.FrameH+HUDRows),
			160, 160, 175, screenBG.R, screenBG.G, screenBG.B, false)
		return e.emitDiff()
	}

	e.drawFrame(layout)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			e.drawSquare(layout, x, y, cols, rows, board.Grid[y][x])
		}
	}
	if board.HasPiece {
		for x, y := range board.Piece.Cells() {
			e.drawSquare(layout, x, y, cols, rows, board.Piece.Kind)
		}
	}

	e.drawHUD(layout, board, playerCount)
	if board.Over {
		e.drawGameOver(layout, board)
	}

	return e.emitDiff()
}

// drawSquare paints one board cell. Cells outside the board are skipped,
// which hides the part of a piece still above the top edge.
func (e *Engine) drawSquare(l Layout, col, row, cols, rows int, k tetris.Kind) {
	sx, sy := l.CellToScreen(col, row, cols, rows)
	if sx < 0 {
		return
	}
	for i := 0; i < TileWidth; i++ {
		e.set(sy, sx+i, KindCell(k, i))
	}
}

func (e *Engine) drawFrame(l Layout) {
	edge := func(ch rune) Cell {
		return Cell{Ch: ch, FgR: frameFG.R, FgG: frameFG.G, FgB: frameFG.B, BgR: screenBG.R, BgG: screenBG.G, BgB: screenBG.B}
	}
	right := l.Left + l.FrameW - 1
	bottom := l.Top + l.FrameH - 1

	for x := l.Left + 1; x < right; x++ {
		e.set(l.Top, x, edge('─'))
		e.set(bottom, x, edge('─'))
	}
	for y := l.Top + 1; y < bottom; y++ {
		e.set(y, l.Left, edge('│'))
		e.set(y, right, edge('│'))
	}
	e.set(l.Top, l.Left, edge('┌'))
	e.set(l.Top, right, edge('┐'))
	e.set(bottom, l.Left, edge('└'))
	e.set(bottom, right, edge('┘'))
}

// --- HUD ---

func (e *Engine) drawHUD(l Layout, board BoardInfo, playerCount int) {
	bg := hudBG
	for row := 0; row < HUDRows; row++ {
		y := l.HUDTop + row
		for x := l.Left; x < l.Left+l.FrameW; x++ {
			e.set(y, x, Cell{Ch: ' ', BgR: bg.R, BgG: bg.G, BgB: bg.B})
		}
	}

	maxCol := l.Left + l.FrameW
	col := e.writeText(l.HUDTop, l.Left+1, maxCol, board.Name, 255, 220, 100, bg.R, bg.G, bg.B, true)
	e.writeText(l.HUDTop, col, maxCol, fmt.Sprintf("  %d online", playerCount), 160, 160, 175, bg.R, bg.G, bg.B, false)

	col = e.writeText(l.HUDTop+1, l.Left+1, maxCol, "Lines ", 130, 130, 145, bg.R, bg.G, bg.B, false)
	col = e.writeText(l.HUDTop+1, col, maxCol, fmt.Sprintf("%d", board.Lines), 100, 220, 220, bg.R, bg.G, bg.B, true)
	col = e.writeText(l.HUDTop+1, col, maxCol, "  Best ", 130, 130, 145, bg.R, bg.G, bg.B, false)
	e.writeText(l.HUDTop+1, col, maxCol, fmt.Sprintf("%d", board.Best), 240, 190, 60, bg.R, bg.G, bg.B, true)

	e.writeText(l.HUDTop+2, l.Left+1, maxCol, "←→/AD Move  ↓/S Drop", 130, 130, 145, bg.R, bg.G, bg.B, false)
	e.writeText(l.HUDTop+3, l.Left+1, maxCol, "Q Quit", 130, 130, 145, bg.R, bg.G, bg.B, false)
}

// drawGameOver overlays a box in the middle of the well with the final
// line count.
func (e *Engine) drawGameOver(l Layout, board BoardInfo) {
	lines := []string{
		"GAME OVER",
		fmt.Sprintf("Lines: %d", board.Lines),
		"R restart",
	}
	bgR, bgG, bgB := uint8(60), uint8(15), uint8(20)

	boxTop := l.Top + l.FrameH/2 - len(lines)/2 - 1
	for i := -1; i <= len(lines); i++ {
		y := boxTop + 1 + i
		for x := l.Left + 1; x < l.Left+l.FrameW-1; x++ {
			e.set(y, x, Cell{Ch: ' ', BgR: bgR, BgG: bgG, BgB: bgB})
		}
	}
	for i, text := range lines {
		runes := []rune(text)
		x := l.Left + (l.FrameW-len(runes))/2
		if i == 0 {
			e.writeText(boxTop+1+i, x, l.Left+l.FrameW-1, text, 255, 90, 90, bgR, bgG, bgB, true)
		} else {
			e.writeText(boxTop+1+i, x, l.Left+l.FrameW-1, text, 230, 230, 240, bgR, bgG, bgB, false)
		}
	}
}

func (e *Engine) set(row, col int, c Cell) {
	if row < 0 || row >= e.height || col < 0 || col >= e.width {
		return
	}
	e.next[row][col] = c
}

// writeText writes colored text into a bounded region [col, maxCol). Returns the next column position.
func (e *Engine) writeText(row, col, maxCol int, text string, fgR, fgG, fgB, bgR, bgG, bgB uint8, bold bool) int {
	for _, r := range text {
		if col >= maxCol || col >= e.width {
			break
		}
		if row >= 0 && row < e.height && col >= 0 {
			e.next[row][col] = Cell{Ch: r, FgR: fgR, FgG: fgG, FgB: fgB, BgR: bgR, BgG: bgG, BgB: bgB, Bold: bold}
		}
		col++
	}
	return col
}

// drawCenteredText draws text centered on the given row.
func (e *Engine) drawCenteredText(row int, text string, fgR, fgG, fgB, bgR, bgG, bgB uint8, bold bool) {
	if row < 0 || row >= e.height {
		return
	}
	runes := []rune(text)
	cx := (e.width - len(runes)) / 2
	for i, r := range runes {
		x := cx + i
		if x >= 0 && x < e.width {
			e.next[row][x] = Cell{Ch: r, FgR: fgR, FgG: fgG, FgB: fgB, BgR: bgR, BgG: bgG, BgB: bgB, Bold: bold}
		}
	}
}

// emitDiff performs the buffer diff and produces ANSI output.
func (e *Engine) emitDiff() string {
	var sb strings.Builder
	sb.Grow(4096)

	lastRow, lastCol := -1, -1
	for y := 0; y < e.height; y++ {
		for x := 0; x < e.width; x++ {
			nc := e.next[y][x]
			if e.firstFrame || nc != e.current[y][x] {
				if y != lastRow || x != lastCol {
					sb.WriteString(MoveTo(y+1, x+1))
				}
				WriteCellSGR(&sb, nc)
				lastRow = y
				lastCol = x + 1
			}
		}
	}

	if sb.Len() > 0 {
		sb.WriteString(Reset)
	}

	e.current, e.next = e.next, e.current
	e.firstFrame = false

	return sb.String()
}
