package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"happy-tetris/internal/game"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, ":2222", cfg.SSHAddr)
	assert.Equal(t, "host_key", cfg.HostKeyPath)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 10, cfg.BoardWidth)
	assert.Equal(t, 17, cfg.BoardHeight)
	assert.Equal(t, 500*time.Millisecond, cfg.FallInterval)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
}

func TestOverrides(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"PORT":             "3000",
		"HOST_KEY":         "/tmp/key",
		"HTTP_ADDR":        "",
		"BOARD_WIDTH":      "12",
		"BOARD_HEIGHT":     "20",
		"FALL_INTERVAL_MS": "250",
		"LOG_LEVEL":        "debug",
	}))
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.SSHAddr)
	assert.Equal(t, "/tmp/key", cfg.HostKeyPath)
	assert.Empty(t, cfg.HTTPAddr)
	assert.Equal(t, 12, cfg.BoardWidth)
	assert.Equal(t, 20, cfg.BoardHeight)
	assert.Equal(t, 250*time.Millisecond, cfg.FallInterval)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
}

func TestSSHAddrWinsOverPort(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"PORT":     "3000",
		"SSH_ADDR": "127.0.0.1:2200",
	}))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:2200", cfg.SSHAddr)
}

func TestInvalidValues(t *testing.T) {
	tests := []struct {
		key, val string
	}{
		{"BOARD_WIDTH", "wide"},
		{"BOARD_WIDTH", "0"},
		{"BOARD_HEIGHT", "-3"},
		{"BOARD_WIDTH", "100000"},
		{"BOARD_HEIGHT", "65"},
		{"FALL_INTERVAL_MS", "soon"},
		{"FALL_INTERVAL_MS", "75"},
		{"FALL_INTERVAL_MS", "20"},
		{"LOG_LEVEL", "loud"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.val, func(t *testing.T) {
			_, err := FromLookup(lookupFrom(map[string]string{tt.key: tt.val}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestBoundaryValues(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"BOARD_WIDTH":      "64",
		"BOARD_HEIGHT":     "64",
		"FALL_INTERVAL_MS": "50",
	}))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.BoardWidth)
	assert.Equal(t, 64, cfg.BoardHeight)
	assert.Equal(t, game.TickInterval, cfg.FallInterval)
}
