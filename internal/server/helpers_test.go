package server

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeConn is an in-memory Conn: tests push inbound lines through a channel
// and inspect the records written back.
type fakeConn struct {
	mu         sync.Mutex
	records    []Record
	failWrites bool
	closed     bool

	lines     chan string
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{lines: make(chan string, 16)}
}

func (f *fakeConn) ReadLine() (string, error) {
	line, ok := <-f.lines
	if !ok {
		return "", io.EOF
	}
	return line, nil
}

func (f *fakeConn) WriteRecord(rec Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites || f.closed {
		return errors.New("peer unreachable")
	}
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	f.closeOnce.Do(func() { close(f.lines) })
	return nil
}

func (f *fakeConn) RemoteAddr() string { return "fake:0" }

func (f *fakeConn) send(line string) { f.lines <- line }

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeConn) allRecords() []Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Record(nil), f.records...)
}

func (f *fakeConn) recordsOfType(t RecordType) []Record {
	var out []Record
	for _, rec := range f.allRecords() {
		if rec.Type == t {
			out = append(out, rec)
		}
	}
	return out
}

// testEnv wires a registry, broadcaster, and command processor the way
// NewServer does, minus the listener.
type testEnv struct {
	cfg         *Config
	log         *slog.Logger
	registry    *Registry
	broadcaster *Broadcaster
	commands    *CommandProcessor
}

func newTestEnv() *testEnv {
	cfg := NewConfig()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := NewRegistry(cfg.DefaultRooms...)
	broadcaster := NewBroadcaster(registry, log)
	return &testEnv{
		cfg:         cfg,
		log:         log,
		registry:    registry,
		broadcaster: broadcaster,
		commands:    NewCommandProcessor(registry, broadcaster),
	}
}

func (e *testEnv) client(conn Conn) *Client {
	return NewClient(conn, e.registry, e.broadcaster, e.commands, e.cfg, e.log)
}

// registered creates a client and registers it, placing it in the default
// room.
func (e *testEnv) registered(t *testing.T, username string) (*Client, *fakeConn) {
	t.Helper()
	conn := newFakeConn()
	c := e.client(conn)
	require.NoError(t, e.registry.Register(c, username))
	return c, conn
}
