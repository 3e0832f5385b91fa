// Package tetris is the falling-block engine: the shape catalog, the
// occupancy grid with its collision, merge and line-clear rules, and the
// move controller that drives a single game from spawn to game over.
//
// Nothing here blocks, allocates goroutines or reads the clock; callers
// feed Inputs one at a time and own all synchronization.
package tetris

import "fmt"

// State is the controller's lifecycle state.
type State int

const (
	Running State = iota
	GameOver
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case GameOver:
		return "game_over"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Input is a transition request for the move controller.
type Input int

const (
	MoveLeft Input = iota
	MoveRight
	SoftDrop
	TimerTick
)

func (in Input) String() string {
	switch in {
	case MoveLeft:
		return "left"
	case MoveRight:
		return "right"
	case SoftDrop:
		return "soft_drop"
	case TimerTick:
		return "tick"
	default:
		return fmt.Sprintf("input(%d)", int(in))
	}
}

// Outcome describes what a single Apply did.
type Outcome struct {
	Moved    bool // piece position changed
	Locked   bool // piece merged into the grid
	Cleared  int  // rows removed by the lock
	Spawned  bool // a replacement piece was drawn
	GameOver bool // this input ended the game
}

// Game is one player's game: the grid, the active piece and the line
// counter.
type Game struct {
	grid    *Grid
	piece   Piece
	spawner Spawner
	state   State
	lines   int
}

// NewGame starts a game on an empty w×h grid. If the first piece cannot
// be placed the game starts over.
func NewGame(w, h int, spawner Spawner) *Game {
	g := &Game{
		grid:    NewGrid(w, h),
		spawner: spawner,
	}
	g.piece = spawner.Spawn(w)
	if g.grid.Collides(g.piece) {
		g.state = GameOver
	}
	return g
}

// State returns the lifecycle state.
func (g *Game) State() State { return g.state }

// Lines returns the number of rows cleared so far.
func (g *Game) Lines() int { return g.lines }

// Grid returns the live grid. Callers must not mutate it.
func (g *Game) Grid() *Grid { return g.grid }

// Piece returns the active piece and whether one is in play.
func (g *Game) Piece() (Piece, bool) {
	return g.piece, g.state == Running
}

// Apply performs one transition. Inputs after game over are ignored.
func (g *Game) Apply(in Input) Outcome {
	if g.state == GameOver {
		return Outcome{}
	}

	switch in {
	case MoveLeft:
		return g.shift(-1)
	case MoveRight:
		return g.shift(1)
	case SoftDrop, TimerTick:
		return g.drop()
	default:
		return Outcome{}
	}
}

func (g *Game) shift(dx int) Outcome {
	g.piece.Col += dx
	if g.grid.Collides(g.piece) {
		g.piece.Col -= dx
		return Outcome{}
	}
	return Outcome{Moved: true}
}

func (g *Game) drop() Outcome {
	g.piece.Row++
	if !g.grid.Collides(g.piece) {
		return Outcome{Moved: true}
	}
	g.piece.Row--

	out := Outcome{Locked: true, Spawned: true}
	g.grid.Merge(g.piece)
	out.Cleared = g.grid.ClearFullRows()
	g.lines += out.Cleared

	g.piece = g.spawner.Spawn(g.grid.Width())
	if g.grid.Collides(g.piece) {
		g.state = GameOver
		out.GameOver = true
	}
	return out
}
