package tetris

import (
	"iter"
	"math/rand/v2"
)

// Piece is the falling piece. Col and Row locate the top-left corner of
// the kind's shape in grid coordinates and may lie outside the grid.
type Piece struct {
	Kind     Kind
	Col, Row int
}

// Cells yields the absolute (col, row) of every occupied cell.
func (p Piece) Cells() iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		s := p.Kind.Shape()
		for y := 0; y < s.H; y++ {
			for x := 0; x < s.W; x++ {
				if !s.Occupied(x, y) {
					continue
				}
				if !yield(p.Col+x, p.Row+y) {
					return
				}
			}
		}
	}
}

// Spawner produces new pieces for a grid of the given width.
type Spawner interface {
	Spawn(width int) Piece
}

// SpawnAt places kind k at the top row, horizontally centered. The column
// is floor((width-W)/2), so a shape wider than the board starts left of
// column 0.
func SpawnAt(k Kind, width int) Piece {
	d := width - k.Shape().W
	col := d / 2
	if d < 0 && d%2 != 0 {
		col--
	}
	return Piece{Kind: k, Col: col, Row: 0}
}

// RandomSpawner picks kinds uniformly at random.
type RandomSpawner struct {
	rng *rand.Rand
}

// NewRandomSpawner creates a spawner drawing from src. A nil src uses a
// randomly seeded PCG.
func NewRandomSpawner(src rand.Source) *RandomSpawner {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &RandomSpawner{rng: rand.New(src)}
}

// Spawn returns a random centered piece.
func (s *RandomSpawner) Spawn(width int) Piece {
	return SpawnAt(Kinds[s.rng.IntN(NumKinds)], width)
}

// SequenceSpawner cycles through a fixed list of kinds.
type SequenceSpawner struct {
	kinds []Kind
	next  int
}

// NewSequenceSpawner returns a spawner that repeats kinds in order.
func NewSequenceSpawner(kinds ...Kind) *SequenceSpawner {
	if len(kinds) == 0 {
		kinds = Kinds[:]
	}
	return &SequenceSpawner{kinds: kinds}
}

// Spawn returns the next kind in the sequence, centered.
func (s *SequenceSpawner) Spawn(width int) Piece {
	k := s.kinds[s.next%len(s.kinds)]
	s.next++
	return SpawnAt(k, width)
}
