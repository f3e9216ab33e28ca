// Package server abstracts the client transport behind the Conn interface
// so TCP and WebSocket connections share one handler pipeline.
package server

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"net"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// Conn is an opaque handle to one client's stream connection. Inbound
// traffic is line-oriented text; outbound traffic is one JSON record per
// write. WriteRecord is safe for concurrent use — broadcasts from other
// clients' handlers and the owner's own replies may interleave.
type Conn interface {
	ReadLine() (string, error)
	WriteRecord(rec Record) error
	Close() error
	RemoteAddr() string
}

// tcpConn adapts a raw TCP connection: newline-delimited text in,
// newline-delimited JSON records out.
type tcpConn struct {
	conn    net.Conn
	scanner *bufio.Scanner

	writeMu sync.Mutex
	enc     *json.Encoder
}

func newTCPConn(conn net.Conn, maxLineBytes int64) *tcpConn {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), int(maxLineBytes))
	return &tcpConn{
		conn:    conn,
		scanner: scanner,
		enc:     json.NewEncoder(conn),
	}
}

func (c *tcpConn) ReadLine() (string, error) {
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return c.scanner.Text(), nil
}

func (c *tcpConn) WriteRecord(rec Record) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	// Encode appends the newline that frames the record.
	return c.enc.Encode(rec)
}

func (c *tcpConn) Close() error { return c.conn.Close() }

func (c *tcpConn) RemoteAddr() string { return c.conn.RemoteAddr().String() }

// wsConn adapts a WebSocket connection into the same line/record shape:
// each text frame is one inbound line, each outbound record one JSON frame.
type wsConn struct {
	conn *websocket.Conn

	writeMu sync.Mutex
}

func newWSConn(conn *websocket.Conn) *wsConn {
	return &wsConn{conn: conn}
}

func (c *wsConn) ReadLine() (string, error) {
	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			return "", err
		}
		if messageType != websocket.TextMessage {
			continue
		}
		return string(data), nil
	}
}

func (c *wsConn) WriteRecord(rec Record) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(rec)
}

func (c *wsConn) Close() error { return c.conn.Close() }

func (c *wsConn) RemoteAddr() string { return c.conn.RemoteAddr().String() }

// isExpectedCloseError reports whether err is part of a normal connection
// teardown rather than a defect worth surfacing.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "use of closed network connection") ||
		strings.Contains(msg, "connection reset by peer") ||
		strings.Contains(msg, "broken pipe")
}
