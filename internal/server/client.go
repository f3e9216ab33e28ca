// Package server manages individual chat clients, driving each connection
// through username negotiation, the active read loop, and cleanup.
package server

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Client represents one connected chat participant. The handler goroutine
// owns the connection exclusively; the registry and broadcaster only ever
// reference it as a lookup key and send target.
type Client struct {
	id   uuid.UUID
	conn Conn
	addr string

	registry    *Registry
	broadcaster *Broadcaster
	commands    *CommandProcessor
	limiter     *tokenBucket
	log         *slog.Logger
}

// NewClient creates a client for conn. The client is not registered until
// username negotiation succeeds inside Handle.
func NewClient(conn Conn, registry *Registry, broadcaster *Broadcaster, commands *CommandProcessor, cfg *Config, log *slog.Logger) *Client {
	id := uuid.New()
	return &Client{
		id:          id,
		conn:        conn,
		addr:        conn.RemoteAddr(),
		registry:    registry,
		broadcaster: broadcaster,
		commands:    commands,
		limiter:     newTokenBucket(cfg.RateLimit.Burst, cfg.RateLimit.RefillInterval),
		log:         log.With("conn", id.String(), "addr", conn.RemoteAddr()),
	}
}

// ID returns the connection identity.
func (c *Client) ID() uuid.UUID { return c.id }

// Addr returns the remote address the client connected from.
func (c *Client) Addr() string { return c.addr }

// Handle drives the connection through its full lifecycle: username
// negotiation, the active read loop, then teardown. The connection is
// closed and the registry entry removed on every exit path, including
// handler panics.
func (c *Client) Handle() {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("handler panic", "panic", r)
		}
		c.teardown()
	}()

	username, ok := c.awaitUsername()
	if !ok {
		return
	}
	c.active(username)
}

// awaitUsername prompts for and registers a username. Any failure —
// read error, empty name, taken name — ends the connection attempt.
func (c *Client) awaitUsername() (string, bool) {
	c.broadcaster.SendTo(c, RecordSystem, "Enter your username: ", ServerSender)

	line, err := c.conn.ReadLine()
	if err != nil {
		c.log.Debug("connection closed during username negotiation", "err", err)
		return "", false
	}
	username := strings.TrimSpace(line)

	if err := c.registry.Register(c, username); err != nil {
		switch {
		case errors.Is(err, ErrUsernameTaken):
			c.broadcaster.SendTo(c, RecordError, fmt.Sprintf("Username '%s' is taken. Disconnecting.", username), ServerSender)
		case errors.Is(err, ErrEmptyUsername):
			c.broadcaster.SendTo(c, RecordError, "Username must not be empty. Disconnecting.", ServerSender)
		default:
			c.log.Error("registration failed", "err", err)
		}
		return "", false
	}

	c.broadcaster.SendTo(c, RecordSystem, fmt.Sprintf(
		"Welcome, %s! You're in #%s\nCommands: /join <room> | /leave | /list | /users | /dm <user> <msg> | /rooms | /quit",
		username, DefaultRoom), ServerSender)
	c.broadcaster.Broadcast(DefaultRoom, username+" joined the chat!", nil, RecordSystem)
	c.log.Info("client registered", "username", username)
	return username, true
}

// active reads one line at a time until the peer quits or disappears.
func (c *Client) active(username string) {
	for {
		line, err := c.conn.ReadLine()
		if err != nil {
			if !isExpectedCloseError(err) {
				c.log.Warn("read failed", "username", username, "err", err)
			}
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if isQuitCommand(input) {
			return
		}
		if !c.limiter.allow() {
			c.broadcaster.SendTo(c, RecordError, "Rate limit exceeded. Message discarded.", ServerSender)
			continue
		}
		c.commands.Process(c, username, input)
	}
}

// teardown removes the client from the registry exactly once, closes the
// connection unconditionally, and tells the room the user is gone.
func (c *Client) teardown() {
	username, room, registered := c.registry.Unregister(c)

	if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
		c.log.Debug("close failed", "err", err)
	}

	if registered {
		c.broadcaster.Broadcast(room, username+" left the chat.", nil, RecordSystem)
		c.log.Info("client disconnected", "username", username)
	}
}

// isQuitCommand matches /quit as the first token, case-insensitive, so
// trailing garbage still quits — same as every other command lookup.
func isQuitCommand(input string) bool {
	return strings.ToLower(strings.Fields(input)[0]) == "/quit"
}
