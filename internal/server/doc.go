// Package server implements the multi-room chat relay: the TCP acceptor
// loop, the lock-guarded user/room registry, the per-connection state
// machine that parses commands and routes messages, and the best-effort
// broadcast fan-out.
//
// The implementation is organized into specialized files for configuration,
// the registry, broadcasting, command processing, client lifecycle, and
// transports. A WebSocket endpoint bridges browser clients into the same
// registry and handler machinery used for raw TCP connections.
package server
