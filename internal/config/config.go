// Package config loads server settings from the environment, after
// merging an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"happy-tetris/internal/game"
)

const (
	defaultSSHAddr  = ":2222"
	defaultHostKey  = "host_key"
	defaultHTTPAddr = ":8080"
	defaultWidth    = 10
	defaultHeight   = 17
	defaultFallMS   = 500

	// Every connected player allocates a full board.
	maxBoardWidth  = 64
	maxBoardHeight = 64
)

// Config holds everything main needs to start the servers.
type Config struct {
	SSHAddr      string
	HostKeyPath  string
	HTTPAddr     string // empty disables the HTTP side-channel
	BoardWidth   int
	BoardHeight  int
	FallInterval time.Duration
	LogLevel     zerolog.Level
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an arbitrary variable source.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	get := func(k, def string) string {
		if v, ok := lookup(k); ok {
			return v
		}
		return def
	}

	cfg := Config{
		SSHAddr:     get("SSH_ADDR", defaultSSHAddr),
		HostKeyPath: get("HOST_KEY", defaultHostKey),
		HTTPAddr:    get("HTTP_ADDR", defaultHTTPAddr),
	}
	if _, ok := lookup("SSH_ADDR"); !ok {
		if port, ok := lookup("PORT"); ok && port != "" {
			cfg.SSHAddr = ":" + port
		}
	}

	var err error
	if cfg.BoardWidth, err = boundedInt(get, "BOARD_WIDTH", defaultWidth, maxBoardWidth); err != nil {
		return Config{}, err
	}
	if cfg.BoardHeight, err = boundedInt(get, "BOARD_HEIGHT", defaultHeight, maxBoardHeight); err != nil {
		return Config{}, err
	}
	fallMS, err := positiveInt(get, "FALL_INTERVAL_MS", defaultFallMS)
	if err != nil {
		return Config{}, err
	}
	cfg.FallInterval = time.Duration(fallMS) * time.Millisecond
	if cfg.FallInterval%game.TickInterval != 0 {
		return Config{}, fmt.Errorf("FALL_INTERVAL_MS: must be a multiple of %d, got %d",
			game.TickInterval.Milliseconds(), fallMS)
	}

	cfg.LogLevel, err = zerolog.ParseLevel(get("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return cfg, nil
}

func boundedInt(get func(string, string) string, key string, def, limit int) (int, error) {
	n, err := positiveInt(get, key, def)
	if err != nil {
		return 0, err
	}
	if n > limit {
		return 0, fmt.Errorf("%s: must be at most %d, got %d", key, limit, n)
	}
	return n, nil
}

func positiveInt(get func(string, string) string, key string, def int) (int, error) {
	raw := get(key, strconv.Itoa(def))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %d", key, n)
	}
	return n, nil
}
