package render

import (
	"fmt"
	"strconv"
	"strings"

	"happy-tetris/internal/tetris"
)

const (
	ESC   = "\x1b"
	CSI   = ESC + "["
	Reset = CSI + "0m"

	// TileWidth is how many screen columns each board cell occupies.
	// 2 makes cells appear roughly square since terminal chars are ~2:1.
	TileWidth = 2
)

// MoveTo positions the cursor at row, col (1-based).
func MoveTo(row, col int) string {
	return fmt.Sprintf("%s%d;%dH", CSI, row, col)
}

// ClearScreen clears the entire screen.
func ClearScreen() string {
	return CSI + "2J"
}

// HideCursor hides the terminal cursor.
func HideCursor() string {
	return CSI + "?25l"
}

// ShowCursor shows the terminal cursor.
func ShowCursor() string {
	return CSI + "?25h"
}

// EnableAltScreen switches to the alternate screen buffer.
func EnableAltScreen() string {
	return CSI + "?1049h"
}

// DisableAltScreen switches back from the alternate screen buffer.
func DisableAltScreen() string {
	return CSI + "?1049l"
}

// Background fills.
var (
	screenBG = tetris.RGB{R: 12, G: 12, B: 18}
	wellBG   = tetris.RGB{R: 40, G: 40, B: 48}
	frameFG  = tetris.RGB{R: 110, G: 110, B: 130}
	hudBG    = tetris.RGB{R: 15, G: 18, B: 30}
)

// KindCell returns the cell used to draw one column of a board square.
// Empty squares get the well background; occupied ones a solid block in
// the kind's color with a darker edge on the right column.
func KindCell(k tetris.Kind, half int) Cell {
	if k == tetris.Empty {
		ch := ' '
		if half == 1 {
			ch = '·'
		}
		return Cell{Ch: ch, FgR: 70, FgG: 70, FgB: 80, BgR: wellBG.R, BgG: wellBG.G, BgB: wellBG.B}
	}
	c := k.Color()
	ch := ' '
	if half == TileWidth-1 {
		ch = '▕'
	}
	return Cell{
		Ch:  ch,
		FgR: c.R / 2, FgG: c.G / 2, FgB: c.B / 2,
		BgR: c.R, BgG: c.G, BgB: c.B,
	}
}

// WriteCellSGR writes a single cell's full SGR + character to the builder.
// Uses combined SGR to avoid state leakage between cells.
func WriteCellSGR(sb *strings.Builder, c Cell) {
	if c.Bold {
		sb.WriteString("\x1b[0;1;38;2;")
	} else {
		sb.WriteString("\x1b[0;38;2;")
	}
	sb.WriteString(strconv.Itoa(int(c.FgR)))
	sb.WriteByte(';')
	sb.WriteString(strconv.Itoa(int(c.FgG)))
	sb.WriteByte(';')
	sb.WriteString(strconv.Itoa(int(c.FgB)))
	sb.WriteString(";48;2;")
	sb.WriteString(strconv.Itoa(int(c.BgR)))
	sb.WriteByte(';')
	sb.WriteString(strconv.Itoa(int(c.BgG)))
	sb.WriteByte(';')
	sb.WriteString(strconv.Itoa(int(c.BgB)))
	sb.WriteByte('m')
	sb.WriteRune(c.Ch)
}
