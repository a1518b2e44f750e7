package tejproto

import (
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/tejproto/tejproto/frame"
)

// ClientConfig configures a Client. The zero value is usable.
type ClientConfig struct {
	// ChunkSize and IdleTimeout apply to the connection, see
	// ConnectionConfig.
	ChunkSize   int
	IdleTimeout time.Duration

	// DialTimeout bounds the TCP connect. Zero means no bound.
	DialTimeout time.Duration

	// HeartbeatInterval, when positive, starts a Pinger on the connection
	// so the server can detect a dead client.
	HeartbeatInterval time.Duration

	// Dialer overrides the default net.Dialer.
	Dialer *net.Dialer

	// Logger receives lifecycle events. Nil disables logging.
	Logger *zerolog.Logger
}

// Client is one outbound TEJ connection with a handler-driven receive loop.
type Client struct {
	conn    *Connection
	handler Handler
	pinger  *Pinger
	log     zerolog.Logger
}

// Dial connects to addr and invokes handler.Connected. The receive loop
// does not run until Listen is called.
func Dial(addr string, handler Handler, cfg ClientConfig) (*Client, error) {
	dialer := cfg.Dialer
	if dialer == nil {
		dialer = &net.Dialer{Timeout: cfg.DialTimeout}
	}

	netConn, err := dialer.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}

	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = cfg.Logger.With().Str("server", addr).Logger()
	}

	c := &Client{
		conn: NewConnection(netConn, ConnectionConfig{
			ChunkSize:   cfg.ChunkSize,
			IdleTimeout: cfg.IdleTimeout,
		}),
		handler: handler,
		log:     log,
	}

	if cfg.HeartbeatInterval > 0 {
		c.pinger = NewPinger(c.conn, cfg.HeartbeatInterval, &log)
		c.pinger.Start()
	}

	log.Debug().Msg("connected")
	handler.Connected(c.conn)
	return c, nil
}

// Listen runs the receive loop, blocking until the connection terminates.
// It returns the terminal error: frame.ErrConnectionClosed after a peer
// close or Close, a *frame.ProtocolError for a desynced stream.
func (c *Client) Listen() error {
	err := receiveLoop(c.conn, c.handler)

	if c.pinger != nil {
		c.pinger.Stop()
	}
	c.conn.Close()

	c.log.Debug().Msg("disconnected")
	return err
}

// Send writes one serialized frame.
func (c *Client) Send(p []byte) error {
	return c.conn.Send(p)
}

// SendFrame serializes the builder and sends the result.
func (c *Client) SendFrame(b *frame.Builder) error {
	return c.conn.SendFrame(b)
}

// Connection exposes the underlying connection.
func (c *Client) Connection() *Connection {
	return c.conn
}

// Close closes the connection, unblocking Listen.
func (c *Client) Close() error {
	if c.pinger != nil {
		c.pinger.Stop()
	}
	return c.conn.Close()
}
