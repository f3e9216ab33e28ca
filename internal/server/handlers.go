// Package server exposes the HTTP handlers: WebSocket upgrades into the
// chat core and a health check.
package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

// wsHandler upgrades HTTP requests to WebSocket connections and hands them
// to the chat server, which treats them exactly like TCP clients.
type wsHandler struct {
	chat     *Server
	upgrader websocket.Upgrader
	log      *slog.Logger
}

func newWSHandler(chat *Server, cfg *Config, log *slog.Logger) *wsHandler {
	policy := newOriginPolicy(cfg.AllowedOrigins, log)
	return &wsHandler{
		chat: chat,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     policy.check,
		},
		log: log,
	}
}

func (h *wsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	h.chat.ServeConn(newWSConn(conn))
}

// healthHandler reports that the process is up; it says nothing about
// individual client connections.
func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprint(w, "chat server is running")
}
