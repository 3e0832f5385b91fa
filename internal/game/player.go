package game

import "happy-tetris/internal/tetris"

// Action represents a player input action.
type Action int

const (
	ActionNone Action = iota
	ActionLeft
	ActionRight
	ActionDown
	ActionRestart
	ActionQuit
)

func (a Action) String() string {
	switch a {
	case ActionLeft:
		return "left"
	case ActionRight:
		return "right"
	case ActionDown:
		return "down"
	case ActionRestart:
		return "restart"
	case ActionQuit:
		return "quit"
	default:
		return "none"
	}
}

// InputEvent carries a player action into the game loop.
type InputEvent struct {
	PlayerID string
	Action   Action
}

// Player holds the game state for a connected player.
type Player struct {
	ID   string
	Name string

	Game      *tetris.Game
	FallTimer int // ticks since the last automatic drop
	Best      int // most lines cleared in one game this process
}

// PlayerSnapshot is a read-only copy of player state for rendering.
type PlayerSnapshot struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Width    int             `json:"width"`
	Height   int             `json:"height"`
	Grid     [][]tetris.Kind `json:"grid"`
	Piece    tetris.Piece    `json:"piece"`
	HasPiece bool            `json:"has_piece"`
	Over     bool            `json:"game_over"`
	Lines    int             `json:"lines"`
	Best     int             `json:"best"`
}

// Snapshot returns a read-only copy of the player. The grid is copied so
// the snapshot stays consistent while the loop keeps mutating the game.
func (p *Player) Snapshot() PlayerSnapshot {
	grid := p.Game.Grid()
	piece, ok := p.Game.Piece()
	return PlayerSnapshot{
		ID:       p.ID,
		Name:     p.Name,
		Width:    grid.Width(),
		Height:   grid.Height(),
		Grid:     grid.Rows(),
		Piece:    piece,
		HasPiece: ok,
		Over:     p.Game.State() == tetris.GameOver,
		Lines:    p.Game.Lines(),
		Best:     p.Best,
	}
}

// inputFor maps a movement action onto the controller's input set.
func inputFor(a Action) (tetris.Input, bool) {
	switch a {
	case ActionLeft:
		return tetris.MoveLeft, true
	case ActionRight:
		return tetris.MoveRight, true
	case ActionDown:
		return tetris.SoftDrop, true
	default:
		return 0, false
	}
}
