package tejproto

import "github.com/tejproto/tejproto/frame"

// Handler receives connection lifecycle events and decoded frames.
//
// Received is called once per complete frame; a frame that failed to decode
// never reaches it. For a server, handlers run concurrently across
// connections but sequentially within one connection.
type Handler interface {
	// Connected is called once the connection is established, before any
	// frame is read.
	Connected(c *Connection)

	// Received is called with each fully decoded non-heartbeat frame.
	Received(c *Connection, f *frame.Frame)

	// Disconnected is called once when the connection terminates. err is
	// the terminal receive error: frame.ErrConnectionClosed for a plain
	// close, a *frame.ProtocolError for a desynced or foreign stream.
	Disconnected(c *Connection, err error)
}

// HeartbeatHandler is optionally implemented by handlers that want to
// observe heartbeat frames. Without it, heartbeats are consumed silently.
type HeartbeatHandler interface {
	Heartbeat(c *Connection)
}

// BaseHandler is a no-op Handler to embed when only some callbacks matter.
type BaseHandler struct{}

func (BaseHandler) Connected(*Connection)              {}
func (BaseHandler) Received(*Connection, *frame.Frame) {}
func (BaseHandler) Disconnected(*Connection, error)    {}

// receiveLoop drives a connection until it fails, dispatching frames to the
// handler. Heartbeats are routed separately so application handlers only
// see payload frames. Returns the terminal error.
func receiveLoop(c *Connection, handler Handler) error {
	for {
		f, err := c.Receive()
		if err != nil {
			handler.Disconnected(c, err)
			return err
		}

		if f.IsHeartbeat() {
			if hh, ok := handler.(HeartbeatHandler); ok {
				hh.Heartbeat(c)
			}
			continue
		}

		handler.Received(c, f)
	}
}
