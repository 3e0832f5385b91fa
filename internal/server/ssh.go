package server

import (
	"fmt"
	"io"
	"sync"
	"unicode/utf8"

	"github.com/gliderlabs/ssh"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"happy-tetris/internal/game"
	"happy-tetris/internal/render"
)

// SSHServer accepts terminal sessions and gives each one its own board.
type SSHServer struct {
	gameLoop *game.GameLoop
	addr     string
	hostKey  string
	srv      *ssh.Server
}

// NewSSHServer returns a server that will listen on addr using the PEM
// host key at hostKey.
func NewSSHServer(addr string, hostKey string, gl *game.GameLoop) *SSHServer {
	return &SSHServer{gameLoop: gl, addr: addr, hostKey: hostKey}
}

// Start listens and serves until Close. It returns ssh.ErrServerClosed
// after a clean shutdown.
func (s *SSHServer) Start() error {
	s.srv = &ssh.Server{Addr: s.addr, Handler: s.handleSession}
	if err := s.srv.SetOption(ssh.HostKeyFile(s.hostKey)); err != nil {
		return fmt.Errorf("load host key %s: %w", s.hostKey, err)
	}

	log.Info().Str("addr", s.addr).Msg("SSH server listening")
	return s.srv.ListenAndServe()
}

// Close stops accepting connections and drops open sessions.
func (s *SSHServer) Close() error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Close()
}

// termSize is the session's window, updated from resize events.
type termSize struct {
	mu   sync.Mutex
	w, h int
}

func (t *termSize) set(w, h int) {
	t.mu.Lock()
	t.w, t.h = w, h
	t.mu.Unlock()
}

func (t *termSize) get() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.w, t.h
}

// handleSession plays one board for the lifetime of the connection. The
// SSH username names the board.
func (s *SSHServer) handleSession(sess ssh.Session) {
	ptyReq, winCh, ok := sess.Pty()
	if !ok {
		fmt.Fprintln(sess, "A terminal is required: connect with ssh -t")
		return
	}

	name := sess.User()
	if name == "" {
		name = "Anonymous"
	}
	playerID, boards := s.gameLoop.AddPlayer(name)

	logger := log.With().Str("player", playerID).Str("remote", sess.RemoteAddr().String()).Logger()
	logger.Info().Msg("player connected")
	defer func() {
		s.gameLoop.RemovePlayer(playerID)
		logger.Info().Msg("player disconnected")
	}()

	io.WriteString(sess, render.EnableAltScreen()+render.HideCursor()+render.ClearScreen())
	defer io.WriteString(sess, render.ShowCursor()+render.DisableAltScreen())

	size := &termSize{w: ptyReq.Window.Width, h: ptyReq.Window.Height}
	go func() {
		for win := range winCh {
			size.set(win.Width, win.Height)
		}
	}()

	quit := make(chan struct{})
	go func() {
		defer close(quit)
		s.forwardKeys(sess, playerID, logger)
	}()

	engine := render.NewEngine(size.get())
	for {
		select {
		case <-quit:
			return
		case state, ok := <-boards:
			if !ok {
				return
			}
			me, found := state.Player(playerID)
			if !found {
				continue
			}
			w, h := size.get()
			frame := engine.Render(boardInfo(me), len(state.Players), w, h)
			if frame == "" {
				continue
			}
			if _, err := io.WriteString(sess, frame); err != nil {
				logger.Debug().Err(err).Msg("write failed")
				return
			}
		}
	}
}

// forwardKeys turns keystrokes into loop input until the client quits or
// the connection drops. Keys arriving faster than the loop drains them are
// dropped.
func (s *SSHServer) forwardKeys(r io.Reader, playerID string, logger zerolog.Logger) {
	inputCh := s.gameLoop.InputChan()
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		if err != nil {
			return
		}
		for _, action := range parseInput(buf[:n]) {
			if action == game.ActionQuit {
				return
			}
			select {
			case inputCh <- game.InputEvent{PlayerID: playerID, Action: action}:
			default:
				logger.Warn().Stringer("action", action).Msg("input queue full, key dropped")
			}
		}
	}
}

// boardInfo converts a game snapshot to the renderer's view of a board.
func boardInfo(p game.PlayerSnapshot) render.BoardInfo {
	return render.BoardInfo{
		Name:     p.Name,
		Grid:     p.Grid,
		Piece:    p.Piece,
		HasPiece: p.HasPiece,
		Over:     p.Over,
		Lines:    p.Lines,
		Best:     p.Best,
	}
}

// parseInput decodes one read from the terminal. Arrow keys arrive as
// ESC [ x or, in application cursor mode, ESC O x. Up is ignored since
// pieces do not rotate.
func parseInput(data []byte) []game.Action {
	var actions []game.Action
	i := 0
	for i < len(data) {
		if i+2 < len(data) && data[i] == 0x1b && (data[i+1] == '[' || data[i+1] == 'O') {
			switch data[i+2] {
			case 'B':
				actions = append(actions, game.ActionDown)
			case 'C':
				actions = append(actions, game.ActionRight)
			case 'D':
				actions = append(actions, game.ActionLeft)
			}
			i += 3
			continue
		}

		r, size := utf8.DecodeRune(data[i:])
		switch r {
		case 's', 'S':
			actions = append(actions, game.ActionDown)
		case 'a', 'A':
			actions = append(actions, game.ActionLeft)
		case 'd', 'D':
			actions = append(actions, game.ActionRight)
		case 'r', 'R':
			actions = append(actions, game.ActionRestart)
		case 'q', 'Q', 0x03: // 0x03 is Ctrl-C
			actions = append(actions, game.ActionQuit)
		}
		i += size
	}
	return actions
}
