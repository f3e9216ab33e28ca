package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:5555", cfg.Addr())
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, []string{"general", "tech", "random"}, cfg.DefaultRooms)
	require.Equal(t, int64(2048), cfg.MaxMessageSize)
	require.Equal(t, 10, cfg.RateLimit.Burst)
	require.Equal(t, time.Second, cfg.RateLimit.RefillInterval)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("CHAT_HOST", "0.0.0.0")
	t.Setenv("CHAT_PORT", "6000")
	t.Setenv("CHAT_DEFAULT_ROOMS", "Lobby,Dev")
	t.Setenv("CHAT_RATE_LIMIT_BURST", "3")
	t.Setenv("CHAT_RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("CHAT_SHUTDOWN_TIMEOUT", "10s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:6000", cfg.Addr())
	// Room names are lower-cased and the default room is always present.
	require.Equal(t, []string{DefaultRoom, "lobby", "dev"}, cfg.DefaultRooms)
	require.Equal(t, 3, cfg.RateLimit.Burst)
	require.Equal(t, 2*time.Second, cfg.RateLimit.RefillInterval)
	require.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestConfig_SanitizeRejectsInvalidValues(t *testing.T) {
	cfg := &Config{Port: -1, MaxMessageSize: -5}
	cfg.sanitize()

	defaults := defaultConfig()
	require.Equal(t, defaults.Port, cfg.Port)
	require.Equal(t, defaults.MaxMessageSize, cfg.MaxMessageSize)
	require.Equal(t, defaults.DefaultRooms, cfg.DefaultRooms)
}

func TestSanitizeRooms(t *testing.T) {
	cases := []struct {
		name  string
		in    []string
		wants []string
	}{
		{"empty list falls back", nil, []string{"general", "tech", "random"}},
		{"default room prepended", []string{"lobby"}, []string{"general", "lobby"}},
		{"normalized and deduplicated", []string{" General ", "TECH", "tech", ""}, []string{"general", "tech"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.wants, sanitizeRooms(tc.in))
		})
	}
}
