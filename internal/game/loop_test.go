package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"happy-tetris/internal/tetris"
)

func testWorld(w, h, fallTicks int, kinds ...tetris.Kind) *World {
	return &World{
		Width:     w,
		Height:    h,
		FallTicks: fallTicks,
		NewSpawner: func() tetris.Spawner {
			return tetris.NewSequenceSpawner(kinds...)
		},
	}
}

// latest drains ch and returns the newest snapshot.
func latest(t *testing.T, ch RenderChan) GameState {
	t.Helper()
	var (
		state GameState
		got   bool
	)
	for {
		select {
		case s := <-ch:
			state, got = s, true
		default:
			require.True(t, got, "no snapshot received")
			return state
		}
	}
}

func TestTimingConversions(t *testing.T) {
	assert.Equal(t, 10, DurationToTicks(500*time.Millisecond))
	assert.Equal(t, 1, DurationToTicks(time.Millisecond))
	assert.Equal(t, 20, SecsToTicks(1))
	assert.Equal(t, 1, SecsToTicks(0))
}

func TestAddPlayerStartsGame(t *testing.T) {
	gl := NewGameLoop(testWorld(10, 6, 5, tetris.O))
	id, ch := gl.AddPlayer("alice")
	assert.Equal(t, "alice", id)
	assert.Equal(t, 1, gl.PlayerCount())

	gl.tick()
	state := latest(t, ch)
	me, ok := state.Player(id)
	require.True(t, ok)
	assert.Equal(t, uint64(1), state.Tick)
	assert.Equal(t, 10, me.Width)
	assert.Equal(t, 6, me.Height)
	assert.True(t, me.HasPiece)
	assert.Equal(t, tetris.Piece{Kind: tetris.O, Col: 4, Row: 0}, me.Piece)
}

func TestDuplicateNamesGetDistinctIDs(t *testing.T) {
	gl := NewGameLoop(testWorld(10, 6, 5, tetris.O))
	a, _ := gl.AddPlayer("bob")
	b, _ := gl.AddPlayer("bob")
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, gl.PlayerCount())

	gl.RemovePlayer(a)
	assert.Equal(t, 1, gl.PlayerCount())
}

func TestRemovePlayerClosesRenderChan(t *testing.T) {
	gl := NewGameLoop(testWorld(10, 6, 5, tetris.O))
	id, ch := gl.AddPlayer("carol")
	gl.RemovePlayer(id)

	_, open := <-ch
	assert.False(t, open)
	gl.RemovePlayer(id)
}

func TestFallTimerDropsPiece(t *testing.T) {
	gl := NewGameLoop(testWorld(10, 6, 3, tetris.O))
	id, ch := gl.AddPlayer("dave")

	gl.tick()
	gl.tick()
	me, _ := latest(t, ch).Player(id)
	assert.Equal(t, 0, me.Piece.Row)

	gl.tick()
	me, _ = latest(t, ch).Player(id)
	assert.Equal(t, 1, me.Piece.Row)
}

func TestInputMovesPiece(t *testing.T) {
	gl := NewGameLoop(testWorld(10, 6, 100, tetris.O))
	id, ch := gl.AddPlayer("erin")

	gl.InputChan() <- InputEvent{PlayerID: id, Action: ActionLeft}
	gl.InputChan() <- InputEvent{PlayerID: id, Action: ActionLeft}
	gl.InputChan() <- InputEvent{PlayerID: id, Action: ActionDown}
	gl.InputChan() <- InputEvent{PlayerID: "nobody", Action: ActionRight}
	gl.tick()

	me, _ := latest(t, ch).Player(id)
	assert.Equal(t, tetris.Piece{Kind: tetris.O, Col: 2, Row: 1}, me.Piece)
}

// Restart is only honoured once the game is over.
func TestGameOverAndRestart(t *testing.T) {
	gl := NewGameLoop(testWorld(2, 2, 100, tetris.O))
	id, ch := gl.AddPlayer("frank")

	// Each lock in a 2×2 well clears two rows.
	gl.InputChan() <- InputEvent{PlayerID: id, Action: ActionDown}
	gl.InputChan() <- InputEvent{PlayerID: id, Action: ActionRestart}
	gl.tick()
	me, _ := latest(t, ch).Player(id)
	assert.Equal(t, 2, me.Lines)
	assert.False(t, me.Over)

	gl.world = testWorld(3, 2, 100, tetris.O)
	gl.InputChan() <- InputEvent{PlayerID: id, Action: ActionRestart}
	gl.tick()
	me, _ = latest(t, ch).Player(id)
	assert.Equal(t, 2, me.Lines, "restart ignored while running")

	gl.mu.Lock()
	gl.players[id].Game = gl.world.NewGame()
	gl.mu.Unlock()

	gl.InputChan() <- InputEvent{PlayerID: id, Action: ActionDown}
	gl.tick()
	me, _ = latest(t, ch).Player(id)
	assert.True(t, me.Over)
	assert.False(t, me.HasPiece)
	assert.Equal(t, 0, me.Lines)

	gl.InputChan() <- InputEvent{PlayerID: id, Action: ActionRestart}
	gl.tick()
	me, _ = latest(t, ch).Player(id)
	assert.False(t, me.Over)
	assert.True(t, me.HasPiece)
	assert.Equal(t, tetris.Empty, me.Grid[0][0])
}

func TestBestSurvivesReconnect(t *testing.T) {
	gl := NewGameLoop(testWorld(2, 4, 100, tetris.O, tetris.I))
	id, ch := gl.AddPlayer("gina")

	// The O clears two rows, the I locks in column 0 and the next O
	// cannot spawn.
	for i := 0; i < 40; i++ {
		gl.InputChan() <- InputEvent{PlayerID: id, Action: ActionDown}
		gl.tick()
		if me, _ := latest(t, ch).Player(id); me.Over {
			break
		}
	}
	me, _ := latest(t, ch).Player(id)
	require.True(t, me.Over)
	require.Positive(t, me.Lines)
	assert.Equal(t, me.Lines, me.Best)

	gl.RemovePlayer(id)
	id, ch = gl.AddPlayer("gina")
	gl.tick()
	again, _ := latest(t, ch).Player(id)
	assert.Equal(t, me.Lines, again.Best)
	assert.Equal(t, 0, again.Lines)
}

func TestBestSavedWhenQuittingMidGame(t *testing.T) {
	gl := NewGameLoop(testWorld(2, 4, 100, tetris.O))
	id, ch := gl.AddPlayer("zed")

	// Three drops lock the O on the floor and clear both rows.
	for i := 0; i < 3; i++ {
		gl.InputChan() <- InputEvent{PlayerID: id, Action: ActionDown}
	}
	gl.tick()
	me, _ := latest(t, ch).Player(id)
	require.False(t, me.Over)
	require.Equal(t, 2, me.Lines)
	assert.Equal(t, 2, me.Best, "HUD best follows the running game")

	gl.RemovePlayer(id)
	id, ch = gl.AddPlayer("zed")
	gl.tick()
	again, _ := latest(t, ch).Player(id)
	assert.Equal(t, 2, again.Best)
	assert.Equal(t, 0, again.Lines)
}

func TestSpectatorReceivesAllBoards(t *testing.T) {
	gl := NewGameLoop(testWorld(10, 6, 5, tetris.T))
	gl.AddPlayer("hank")
	gl.AddPlayer("iris")
	sid, ch := gl.AddSpectator()

	gl.tick()
	state := latest(t, ch)
	assert.Len(t, state.Players, 2)

	gl.RemoveSpectator(sid)
	_, open := <-ch
	assert.False(t, open)
}

func TestStopIsIdempotent(t *testing.T) {
	gl := NewGameLoop(testWorld(10, 6, 5, tetris.T))
	done := make(chan struct{})
	go func() {
		gl.Run()
		close(done)
	}()

	gl.Stop()
	gl.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestStopClosesSubscribers(t *testing.T) {
	gl := NewGameLoop(testWorld(10, 6, 5, tetris.T))
	id, pch := gl.AddPlayer("jack")
	sid, sch := gl.AddSpectator()

	gl.Stop()
	_, open := <-pch
	assert.False(t, open)
	_, open = <-sch
	assert.False(t, open)

	// Late removals and subscriptions must not panic or block.
	gl.RemovePlayer(id)
	gl.RemoveSpectator(sid)
	_, late := gl.AddPlayer("kim")
	_, open = <-late
	assert.False(t, open)
	_, lateSpec := gl.AddSpectator()
	_, open = <-lateSpec
	assert.False(t, open)
	gl.tick()
}
