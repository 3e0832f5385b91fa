package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/kamstrup/intmap"
	"github.com/rs/zerolog/log"

	"happy-tetris/internal/tetris"
)

const InputChanSize = 256

// GameState is a snapshot sent to each session for rendering.
type GameState struct {
	Players []PlayerSnapshot `json:"players"`
	Tick    uint64           `json:"tick"`
}

// Player returns the snapshot for the given player ID.
func (s GameState) Player(id string) (PlayerSnapshot, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return PlayerSnapshot{}, false
}

// RenderChan is the per-session channel that receives game state snapshots.
type RenderChan chan GameState

// savedState holds per-username data kept across reconnects.
type savedState struct {
	Best int
}

// GameLoop is the central game loop. It is the only goroutine that
// mutates a tetris.Game, so every transition is atomic to the renderers.
type GameLoop struct {
	world     *World
	inputCh   chan InputEvent
	tickCount uint64

	mu            sync.RWMutex
	players       map[string]*Player
	renderChans   map[string]RenderChan
	saved         map[string]savedState // keyed by username
	spectators    *intmap.Map[uint64, RenderChan]
	nextSpectator uint64

	stopCh   chan struct{}
	stopOnce sync.Once
	stopped  bool // guarded by mu; subscribers are closed
}

// NewGameLoop creates and returns a new game loop.
func NewGameLoop(world *World) *GameLoop {
	return &GameLoop{
		world:       world,
		inputCh:     make(chan InputEvent, InputChanSize),
		players:     make(map[string]*Player),
		renderChans: make(map[string]RenderChan),
		saved:       make(map[string]savedState),
		spectators:  intmap.New[uint64, RenderChan](8),
		stopCh:      make(chan struct{}),
	}
}

// InputChan returns the shared input channel for sessions to send events.
func (gl *GameLoop) InputChan() chan<- InputEvent {
	return gl.inputCh
}

// AddPlayer registers a player using their username as identity and
// starts a fresh game for them. Returns the effective player ID and the
// render channel. Once the loop is stopped the channel comes back closed.
func (gl *GameLoop) AddPlayer(name string) (string, RenderChan) {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	if gl.stopped {
		ch := make(RenderChan)
		close(ch)
		return name, ch
	}

	// If this username is already online, add a suffix
	id := name
	if _, online := gl.players[id]; online {
		id = fmt.Sprintf("%s_%04d", name, time.Now().UnixNano()%10000)
	}

	gl.players[id] = &Player{
		ID:   id,
		Name: name,
		Game: gl.world.NewGame(),
		Best: gl.saved[name].Best,
	}
	ch := make(RenderChan, 2)
	gl.renderChans[id] = ch
	return id, ch
}

// RemovePlayer unregisters a player and closes their render channel.
func (gl *GameLoop) RemovePlayer(id string) {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	delete(gl.players, id)
	if ch, ok := gl.renderChans[id]; ok {
		close(ch)
		delete(gl.renderChans, id)
	}
}

// PlayerCount returns the number of connected players.
func (gl *GameLoop) PlayerCount() int {
	gl.mu.RLock()
	defer gl.mu.RUnlock()
	return len(gl.players)
}

// AddSpectator subscribes to every broadcast without playing.
func (gl *GameLoop) AddSpectator() (uint64, RenderChan) {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	gl.nextSpectator++
	id := gl.nextSpectator
	ch := make(RenderChan, 2)
	if gl.stopped {
		close(ch)
		return id, ch
	}
	gl.spectators.Put(id, ch)
	return id, ch
}

// RemoveSpectator unsubscribes a spectator and closes its channel.
func (gl *GameLoop) RemoveSpectator(id uint64) {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	if ch, ok := gl.spectators.Get(id); ok {
		close(ch)
		gl.spectators.Del(id)
	}
}

// Run starts the game loop. Blocks until Stop is called.
func (gl *GameLoop) Run() {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	log.Info().Int("tick_rate", TickRate).Int("fall_ticks", gl.world.FallTicks).Msg("game loop started")
	for {
		select {
		case <-gl.stopCh:
			log.Info().Uint64("ticks", gl.tickCount).Msg("game loop stopped")
			return
		case <-ticker.C:
			gl.tick()
		}
	}
}

// Stop shuts down the game loop and closes every render and spectator
// channel so sessions see the loop is gone.
func (gl *GameLoop) Stop() {
	gl.stopOnce.Do(func() {
		close(gl.stopCh)

		gl.mu.Lock()
		defer gl.mu.Unlock()
		gl.stopped = true
		for id, ch := range gl.renderChans {
			close(ch)
			delete(gl.renderChans, id)
		}
		gl.spectators.ForEach(func(_ uint64, ch RenderChan) bool {
			close(ch)
			return true
		})
		gl.spectators.Clear()
	})
}

func (gl *GameLoop) tick() {
	// Drain all pending input events
	for {
		select {
		case ev := <-gl.inputCh:
			gl.processInput(ev)
		default:
			goto drained
		}
	}
drained:

	gl.tickCount++

	gl.mu.RLock()
	falling := make([]*Player, 0, len(gl.players))
	for _, p := range gl.players {
		if p.Game.State() == tetris.Running {
			falling = append(falling, p)
		}
	}
	gl.mu.RUnlock()

	for _, p := range falling {
		p.FallTimer++
		if p.FallTimer >= gl.world.FallTicks {
			p.FallTimer = 0
			gl.apply(p, tetris.TimerTick)
		}
	}

	gl.broadcast()
}

// broadcast builds a snapshot and offers it to every session and spectator.
func (gl *GameLoop) broadcast() {
	gl.mu.RLock()
	defer gl.mu.RUnlock()

	state := GameState{
		Players: make([]PlayerSnapshot, 0, len(gl.players)),
		Tick:    gl.tickCount,
	}
	for _, p := range gl.players {
		state.Players = append(state.Players, p.Snapshot())
	}

	// Non-blocking send to each render channel
	for _, ch := range gl.renderChans {
		select {
		case ch <- state:
		default:
			// Drop frame for slow client
		}
	}
	gl.spectators.ForEach(func(_ uint64, ch RenderChan) bool {
		select {
		case ch <- state:
		default:
		}
		return true
	})
}

func (gl *GameLoop) processInput(ev InputEvent) {
	gl.mu.RLock()
	player, ok := gl.players[ev.PlayerID]
	gl.mu.RUnlock()
	if !ok {
		return
	}

	if ev.Action == ActionRestart {
		if player.Game.State() == tetris.GameOver {
			player.Game = gl.world.NewGame()
			player.FallTimer = 0
			log.Info().Str("player", player.ID).Msg("game restarted")
		}
		return
	}

	in, ok := inputFor(ev.Action)
	if !ok {
		return
	}
	gl.apply(player, in)
}

// apply feeds one input to the player's game and records the result.
func (gl *GameLoop) apply(p *Player, in tetris.Input) {
	out := p.Game.Apply(in)
	if out.Cleared > 0 {
		gl.recordBest(p)
		log.Debug().
			Str("player", p.ID).
			Int("rows", out.Cleared).
			Int("lines", p.Game.Lines()).
			Msg("rows cleared")
	}
	if !out.GameOver {
		return
	}

	lines := p.Game.Lines()
	gl.recordBest(p)

	log.Info().
		Str("player", p.ID).
		Int("lines", lines).
		Int("best", p.Best).
		Stringer("input", in).
		Msg("game over")
}

// recordBest folds the current game's line count into the per-username
// best. Runs on the loop goroutine after every clear, not only at game
// over.
func (gl *GameLoop) recordBest(p *Player) {
	lines := p.Game.Lines()
	gl.mu.Lock()
	defer gl.mu.Unlock()
	if lines > gl.saved[p.Name].Best {
		gl.saved[p.Name] = savedState{Best: lines}
	}
	p.Best = gl.saved[p.Name].Best
}
