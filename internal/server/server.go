// Package server runs the top-level acceptor: bind the TCP listener, spawn
// one handler goroutine per connection, and coordinate graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"
)

// Server owns the chat core: registry, broadcaster, command processor, and
// the TCP accept loop. WebSocket connections enter through ServeConn and
// share everything below the transport.
type Server struct {
	cfg *Config
	log *slog.Logger

	registry    *Registry
	broadcaster *Broadcaster
	commands    *CommandProcessor

	listener net.Listener
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	connMu sync.Mutex
	conns  map[Conn]struct{}
}

// NewServer assembles a chat server from the given configuration. Call
// Start to begin accepting connections.
func NewServer(cfg *Config, log *slog.Logger) *Server {
	registry := NewRegistry(cfg.DefaultRooms...)
	broadcaster := NewBroadcaster(registry, log)
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:         cfg,
		log:         log,
		registry:    registry,
		broadcaster: broadcaster,
		commands:    NewCommandProcessor(registry, broadcaster),
		ctx:         ctx,
		cancel:      cancel,
		conns:       make(map[Conn]struct{}),
	}
}

// Registry exposes the server's registry for read-mostly collaborators such
// as handlers and tests.
func (s *Server) Registry() *Registry { return s.registry }

// Start binds the configured TCP address and launches the accept loop. The
// accept loop itself never blocks on client I/O; each accepted connection
// gets its own handler goroutine.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.cfg.Addr(), err)
	}
	s.listener = listener
	s.log.Info("chat server listening", "addr", listener.Addr().String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.acceptLoop()
	}()
	return nil
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
			}
			if isExpectedCloseError(err) {
				return
			}
			s.log.Error("accept failed", "err", err)
			continue
		}
		s.ServeConn(newTCPConn(conn, s.cfg.MaxMessageSize))
	}
}

// ServeConn runs the standard connection lifecycle for any transport. The
// connection is tracked so Shutdown can close it out from under a blocked
// read.
func (s *Server) ServeConn(conn Conn) {
	s.connMu.Lock()
	s.conns[conn] = struct{}{}
	s.connMu.Unlock()

	client := NewClient(conn, s.registry, s.broadcaster, s.commands, s.cfg, s.log)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.connMu.Lock()
			delete(s.conns, conn)
			s.connMu.Unlock()
		}()
		client.Handle()
	}()
}

// Shutdown stops accepting connections, closes every live client socket,
// and waits for handler goroutines to drain or the timeout to pass.
func (s *Server) Shutdown(timeout time.Duration) error {
	s.log.Info("shutting down chat server")
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}

	s.connMu.Lock()
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.connMu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info("chat server shutdown complete")
		return nil
	case <-time.After(timeout):
		s.log.Warn("chat server shutdown timed out; some handlers may still be running")
		return context.DeadlineExceeded
	}
}
