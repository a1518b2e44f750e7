package tejproto

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tejproto/tejproto/frame"
)

// collector is a Handler that records everything it sees and signals
// arrivals on channels so tests can wait without sleeping.
type collector struct {
	mu          sync.Mutex
	connections int
	disconnects []error

	frames     chan *frame.Frame
	heartbeats chan struct{}
	gone       chan struct{}
}

func newCollector() *collector {
	return &collector{
		frames:     make(chan *frame.Frame, 64),
		heartbeats: make(chan struct{}, 64),
		gone:       make(chan struct{}, 16),
	}
}

func (h *collector) Connected(c *Connection) {
	h.mu.Lock()
	h.connections++
	h.mu.Unlock()
}

func (h *collector) Received(c *Connection, f *frame.Frame) {
	h.frames <- f
}

func (h *collector) Heartbeat(c *Connection) {
	h.heartbeats <- struct{}{}
}

func (h *collector) Disconnected(c *Connection, err error) {
	h.mu.Lock()
	h.disconnects = append(h.disconnects, err)
	h.mu.Unlock()
	h.gone <- struct{}{}
}

func (h *collector) connectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.connections
}

func (h *collector) waitFrame(t testing.TB) *frame.Frame {
	t.Helper()
	select {
	case f := <-h.frames:
		return f
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a frame")
		return nil
	}
}

func (h *collector) waitHeartbeat(t testing.TB) {
	t.Helper()
	select {
	case <-h.heartbeats:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a heartbeat")
	}
}

func (h *collector) waitDisconnect(t testing.TB) {
	t.Helper()
	select {
	case <-h.gone:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a disconnect")
	}
}

// startTestServer runs a server on a loopback port and tears it down with
// the test.
func startTestServer(t testing.TB, handler Handler, cfg ServerConfig) (*Server, string) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := NewServer(handler, cfg)
	go server.Serve(listener)

	t.Cleanup(func() { server.Close() })
	return server, listener.Addr().String()
}

// buildWire serializes a frame with the given status and message.
func buildWire(t testing.TB, status int, message string) []byte {
	t.Helper()

	b, err := frame.NewBuilder(status)
	require.NoError(t, err)
	if message != "" {
		b.SetMessage([]byte(message))
	}
	wire, err := b.Bytes()
	require.NoError(t, err)
	return wire
}
