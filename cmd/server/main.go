package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gliderlabs/ssh"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"happy-tetris/internal/config"
	"happy-tetris/internal/game"
	"happy-tetris/internal/server"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	// Generate host key if it doesn't exist
	if err := ensureHostKey(cfg.HostKeyPath); err != nil {
		log.Fatal().Err(err).Str("path", cfg.HostKeyPath).Msg("host key error")
	}

	// Create board settings and game loop
	world := game.NewWorld(cfg.BoardWidth, cfg.BoardHeight, cfg.FallInterval)
	gameLoop := game.NewGameLoop(world)
	log.Info().
		Int("width", world.Width).
		Int("height", world.Height).
		Dur("fall_interval", cfg.FallInterval).
		Msg("board configured")

	// Start game loop in background
	go gameLoop.Run()
	defer gameLoop.Stop()

	var httpServer *server.HTTPServer
	if cfg.HTTPAddr != "" {
		httpServer = server.NewHTTPServer(gameLoop)
		go func() {
			if err := httpServer.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("HTTP server error")
			}
		}()
	}

	sshServer := server.NewSSHServer(cfg.SSHAddr, cfg.HostKeyPath, gameLoop)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info().Stringer("signal", sig).Msg("shutting down")
		if httpServer != nil {
			httpServer.Close()
		}
		sshServer.Close()
	}()

	// Start SSH server (blocks)
	log.Info().Msgf("Starting Happy Tetris, connect with: ssh -t -p %s YourName@localhost", portOf(cfg.SSHAddr))
	if err := sshServer.Start(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		log.Fatal().Err(err).Msg("SSH server error")
	}
}

// portOf returns the port part of a listen address like ":2222".
func portOf(addr string) string {
	if _, port, err := net.SplitHostPort(addr); err == nil {
		return port
	}
	return addr
}

func ensureHostKey(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil // key already exists
	}

	log.Info().Str("path", path).Msg("generating new host key")
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return err
	}

	keyBytes, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return err
	}

	pemBlock := &pem.Block{
		Type:  "PRIVATE KEY",
		Bytes: keyBytes,
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	return pem.Encode(f, pemBlock)
}
