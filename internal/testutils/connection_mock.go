// Package testutils provides a scriptable net.Conn for framing tests.
package testutils

import (
	"bytes"
	"net"
	"sync"
	"time"
)

// ConnMock is a net.Conn whose reads are served from a pre-loaded buffer
// and whose writes are captured for inspection.
type ConnMock struct {
	mu       sync.Mutex
	readBuf  *bytes.Buffer
	writeBuf *bytes.Buffer
	closed   bool

	// ReadChunk, when positive, caps how many bytes a single Read
	// returns, simulating fragmented deliveries.
	ReadChunk int

	// Deadlines records every SetReadDeadline call.
	Deadlines []time.Time
}

// NewConnMock creates a mock whose reads will yield the given byte
// sequences in order.
func NewConnMock(incoming ...[]byte) *ConnMock {
	readBuf := &bytes.Buffer{}
	for _, p := range incoming {
		readBuf.Write(p)
	}
	return &ConnMock{
		readBuf:  readBuf,
		writeBuf: &bytes.Buffer{},
	}
}

func (m *ConnMock) Read(b []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ReadChunk > 0 && len(b) > m.ReadChunk {
		b = b[:m.ReadChunk]
	}
	return m.readBuf.Read(b)
}

func (m *ConnMock) Write(b []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeBuf.Write(b)
}

func (m *ConnMock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *ConnMock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Written returns everything written to the mock so far.
func (m *ConnMock) Written() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.writeBuf.Bytes()...)
}

func (m *ConnMock) LocalAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0}
}

func (m *ConnMock) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 8000}
}

func (m *ConnMock) SetDeadline(t time.Time) error      { return nil }
func (m *ConnMock) SetWriteDeadline(t time.Time) error { return nil }

func (m *ConnMock) SetReadDeadline(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deadlines = append(m.Deadlines, t)
	return nil
}
