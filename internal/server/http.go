package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"happy-tetris/internal/game"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// HTTPServer exposes health, board stats and a websocket spectator feed.
type HTTPServer struct {
	r        *chi.Mux
	gameLoop *game.GameLoop
	upgrader websocket.Upgrader
	srv      *http.Server
}

// BoardSummary is the /stats view of one player's board.
type BoardSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Lines int    `json:"lines"`
	Best  int    `json:"best"`
	Over  bool   `json:"game_over"`
}

// NewHTTPServer installs middleware and registers routes.
func NewHTTPServer(gl *game.GameLoop) *HTTPServer {
	s := &HTTPServer{
		r:        chi.NewRouter(),
		gameLoop: gl,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)

	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "players": gl.PlayerCount()})
	})
	s.r.Get("/stats", s.handleStats)
	s.r.Get("/spectate", s.handleSpectate)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Router exposes the internal router (useful for tests).
func (s *HTTPServer) Router() chi.Router { return s.r }

// Start begins serving HTTP on addr.
func (s *HTTPServer) Start(addr string) error {
	s.srv = &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 10 * time.Second}
	log.Info().Str("addr", addr).Msg("HTTP server listening")
	return s.srv.ListenAndServe()
}

// Close stops the listener and drops open connections.
func (s *HTTPServer) Close() error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Close()
}

// handleStats waits for the next broadcast and summarizes every board.
func (s *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	id, ch := s.gameLoop.AddSpectator()
	defer s.gameLoop.RemoveSpectator(id)

	select {
	case state, ok := <-ch:
		if !ok {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "stopped"})
			return
		}
		boards := make([]BoardSummary, 0, len(state.Players))
		for _, p := range state.Players {
			boards = append(boards, BoardSummary{ID: p.ID, Name: p.Name, Lines: p.Lines, Best: p.Best, Over: p.Over})
		}
		writeJSON(w, http.StatusOK, map[string]any{"tick": state.Tick, "boards": boards})
	case <-r.Context().Done():
	case <-time.After(2 * time.Second):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "game loop not ticking"})
	}
}

// handleSpectate upgrades to a websocket and streams every snapshot as
// JSON until the client goes away.
func (s *HTTPServer) handleSpectate(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	id, ch := s.gameLoop.AddSpectator()
	defer s.gameLoop.RemoveSpectator(id)

	logger := log.With().Uint64("spectator", id).Str("remote", r.RemoteAddr).Logger()
	logger.Info().Msg("spectator connected")
	defer logger.Info().Msg("spectator disconnected")

	// Reader: only control frames are expected; a read error means the
	// peer closed.
	closed := make(chan struct{})
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case state, ok := <-ch:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "game loop stopped"),
					time.Now().Add(writeWait))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(state); err != nil {
				logger.Debug().Err(err).Msg("write failed")
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("encode response")
	}
}
