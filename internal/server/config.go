// Package server provides configuration helpers that define runtime
// defaults, validation, and rate-limiting parameters for the chat service.
package server

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/samber/lo"
)

// RateLimitConfig defines the parameters for per-connection message rate limiting.
type RateLimitConfig struct {
	Burst          int           `env:"CHAT_RATE_LIMIT_BURST"`
	RefillInterval time.Duration `env:"CHAT_RATE_LIMIT_REFILL_INTERVAL"`
}

// Config holds the server configuration settings. Values come from the
// environment; zero or invalid values fall back to defaults.
type Config struct {
	Host            string        `env:"CHAT_HOST"`
	Port            int           `env:"CHAT_PORT"`
	HTTPAddr        string        `env:"CHAT_HTTP_ADDR"`
	AllowedOrigins  []string      `env:"CHAT_ALLOWED_ORIGINS"`
	DefaultRooms    []string      `env:"CHAT_DEFAULT_ROOMS"`
	MaxMessageSize  int64         `env:"CHAT_MAX_MESSAGE_SIZE"`
	ShutdownTimeout time.Duration `env:"CHAT_SHUTDOWN_TIMEOUT"`
	LogLevel        string        `env:"LOG_LEVEL"`
	RateLimit       RateLimitConfig
}

func defaultConfig() Config {
	return Config{
		Host:            "127.0.0.1",
		Port:            5555,
		HTTPAddr:        ":8080",
		AllowedOrigins:  []string{"http://localhost:8080"},
		DefaultRooms:    []string{DefaultRoom, "tech", "random"},
		MaxMessageSize:  2048,
		ShutdownTimeout: 5 * time.Second,
		LogLevel:        "info",
		RateLimit: RateLimitConfig{
			Burst:          10,
			RefillInterval: time.Second,
		},
	}
}

// LoadConfig reads the configuration from the environment and applies
// defaults to anything left unset.
func LoadConfig() (*Config, error) {
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.sanitize()
	return &cfg, nil
}

// NewConfig creates a Config populated with default values for all settings.
func NewConfig() *Config {
	cfg := defaultConfig()
	return &cfg
}

func (c *Config) sanitize() {
	defaults := defaultConfig()

	if c.Host == "" {
		c.Host = defaults.Host
	}
	if c.Port <= 0 || c.Port > 65535 {
		c.Port = defaults.Port
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = defaults.HTTPAddr
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = defaults.AllowedOrigins
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = defaults.MaxMessageSize
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = defaults.RateLimit.Burst
	}
	if c.RateLimit.RefillInterval <= 0 {
		c.RateLimit.RefillInterval = defaults.RateLimit.RefillInterval
	}

	c.DefaultRooms = sanitizeRooms(c.DefaultRooms)
}

// sanitizeRooms normalizes the seed room list. Room names are lower case on
// the wire, and the default room is always part of the set.
func sanitizeRooms(rooms []string) []string {
	normalized := lo.FilterMap(rooms, func(room string, _ int) (string, bool) {
		trimmed := strings.ToLower(strings.TrimSpace(room))
		return trimmed, trimmed != ""
	})
	normalized = lo.Uniq(normalized)
	if len(normalized) == 0 {
		return defaultConfig().DefaultRooms
	}
	if !lo.Contains(normalized, DefaultRoom) {
		normalized = append([]string{DefaultRoom}, normalized...)
	}
	return normalized
}

// Addr returns the TCP listen address in host:port form.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
