// Package server constructs the HTTP side of the service: the WebSocket
// endpoint and health check, with production timeout defaults.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// NewHTTPServer builds the HTTP server hosting /ws and /healthz. The
// timeouts apply to plain HTTP exchanges; upgraded WebSocket connections
// are hijacked and live under the chat server's control instead.
func NewHTTPServer(cfg *Config, chat *Server, log *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthHandler)
	mux.Handle("/ws", newWSHandler(chat, cfg, log))

	return &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// ShutdownHTTPServer gracefully shuts down the HTTP server, waiting for
// in-flight requests up to the timeout.
func ShutdownHTTPServer(server *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return server.Shutdown(ctx)
}
