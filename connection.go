package tejproto

import (
	"net"
	"sync"
	"time"

	"github.com/tejproto/tejproto/frame"
)

// ConnectionConfig configures the framing behavior of a single connection.
// The zero value is usable: default chunk size, no idle deadline.
type ConnectionConfig struct {
	// ChunkSize bounds a single read from the socket. Zero selects
	// frame.DefaultChunkSize.
	ChunkSize int

	// IdleTimeout bounds mid-frame stalls while receiving. Zero disables
	// it. There is never a deadline between frames.
	IdleTimeout time.Duration
}

// Connection wraps a net.Conn with TEJ framing.
//
// Receive must not be called concurrently: one frame at a time per stream.
// Send is safe for concurrent use; the connection serializes writers so a
// heartbeat sender can share the socket with application writes.
type Connection struct {
	conn net.Conn
	dec  *frame.Decoder

	writeMu sync.Mutex

	mu       sync.Mutex
	closed   bool
	lastUsed time.Time
}

// NewConnection wraps an established net.Conn.
func NewConnection(conn net.Conn, cfg ConnectionConfig) *Connection {
	return &Connection{
		conn: conn,
		dec: frame.NewDecoder(frame.DecoderConfig{
			ChunkSize:   cfg.ChunkSize,
			IdleTimeout: cfg.IdleTimeout,
		}),
		lastUsed: time.Now(),
	}
}

// Send writes one serialized frame to the socket. A failed or short write
// leaves the stream desynced, so the connection is marked closed and the
// error surfaces as frame.ErrConnectionClosed.
func (c *Connection) Send(p []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.IsClosed() {
		return frame.ErrConnectionClosed
	}

	n, err := c.conn.Write(p)
	if err != nil || n < len(p) {
		c.markClosed()
		return frame.ErrConnectionClosed
	}

	c.touch()
	return nil
}

// SendFrame serializes the builder and sends the result. Serialization
// errors (bad file name) surface as-is and leave the connection usable.
func (c *Connection) SendFrame(b *frame.Builder) error {
	p, err := b.Bytes()
	if err != nil {
		return err
	}
	return c.Send(p)
}

// Ping sends a heartbeat frame.
func (c *Connection) Ping() error {
	return c.Send(frame.Heartbeat())
}

// Receive blocks until one complete frame arrives. Any decode failure
// closes the connection: the stream cannot be resynced after a partial
// frame or a foreign byte.
func (c *Connection) Receive() (*frame.Frame, error) {
	f, err := c.dec.Decode(c.conn)
	if err != nil {
		c.markClosed()
		return nil, err
	}

	c.touch()
	return f, nil
}

// IsClosed reports whether the connection has been closed locally or
// failed a send/receive.
func (c *Connection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// LastUsed returns when a frame last crossed the connection.
func (c *Connection) LastUsed() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUsed
}

// RemoteAddr returns the peer address.
func (c *Connection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Close closes the underlying socket. Any in-flight Receive unblocks with
// frame.ErrConnectionClosed.
func (c *Connection) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	return c.conn.Close()
}

func (c *Connection) markClosed() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *Connection) touch() {
	c.mu.Lock()
	c.lastUsed = time.Now()
	c.mu.Unlock()
}
