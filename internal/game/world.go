package game

import (
	"time"

	"happy-tetris/internal/tetris"
)

// World holds the board settings every new game is created with.
type World struct {
	Width, Height int
	FallTicks     int // ticks between automatic drops

	// NewSpawner returns the piece source for a fresh game.
	NewSpawner func() tetris.Spawner
}

// NewWorld creates board settings with random piece selection.
func NewWorld(width, height int, fall time.Duration) *World {
	return &World{
		Width:     width,
		Height:    height,
		FallTicks: DurationToTicks(fall),
		NewSpawner: func() tetris.Spawner {
			return tetris.NewRandomSpawner(nil)
		},
	}
}

// NewGame starts a game on an empty board.
func (w *World) NewGame() *tetris.Game {
	return tetris.NewGame(w.Width, w.Height, w.NewSpawner())
}
