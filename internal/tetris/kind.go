package tetris

// Kind identifies a piece type. The zero value is an empty cell, so a
// Kind doubles as the occupancy flag and color key of a grid cell.
type Kind uint8

const (
	Empty Kind = iota
	I
	J
	L
	O
	S
	T
	Z
)

// NumKinds is the number of playable piece kinds.
const NumKinds = 7

// Kinds lists every playable kind in catalog order.
var Kinds = [NumKinds]Kind{I, J, L, O, S, T, Z}

// MaxShapeSize bounds both dimensions of every shape matrix.
const MaxShapeSize = 4

// Shape is a fixed-size occupancy matrix. Only the top-left W×H region
// is meaningful.
type Shape struct {
	W, H  int
	Cells [MaxShapeSize][MaxShapeSize]bool
}

// Occupied reports whether the local cell (col, row) is filled.
func (s Shape) Occupied(col, row int) bool {
	return s.Cells[row][col]
}

// RGB is a display color.
type RGB struct {
	R, G, B uint8
}

type kindDef struct {
	letter byte
	shape  Shape
	color  RGB
}

func shape(rows ...string) Shape {
	s := Shape{H: len(rows), W: len(rows[0])}
	for y, row := range rows {
		for x := 0; x < len(row); x++ {
			s.Cells[y][x] = row[x] == 'X'
		}
	}
	return s
}

var catalog = [NumKinds + 1]kindDef{
	Empty: {letter: '.'},
	I:     {'I', shape("X", "X", "X", "X"), RGB{0, 220, 220}},
	J:     {'J', shape(".X", ".X", "XX"), RGB{40, 80, 230}},
	L:     {'L', shape("X.", "X.", "XX"), RGB{240, 150, 30}},
	O:     {'O', shape("XX", "XX"), RGB{240, 220, 40}},
	S:     {'S', shape(".XX", "XX."), RGB{60, 200, 70}},
	T:     {'T', shape(".X.", "XXX"), RGB{160, 60, 200}},
	Z:     {'Z', shape("XX.", ".XX"), RGB{220, 50, 50}},
}

// Shape returns the canonical occupancy matrix for k.
func (k Kind) Shape() Shape {
	return catalog[k].shape
}

// Color returns the display color for k. Empty has the zero color.
func (k Kind) Color() RGB {
	return catalog[k].color
}

// String returns the single-letter label, or "." for Empty.
func (k Kind) String() string {
	if int(k) >= len(catalog) {
		return "?"
	}
	return string(catalog[k].letter)
}

// MarshalText encodes the kind as its letter.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
