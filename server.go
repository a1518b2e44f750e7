package tejproto

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tejproto/tejproto/frame"
)

// ErrServerClosed is returned by Serve after Close.
var ErrServerClosed = errors.New("tejproto: server closed")

// ServerConfig configures a Server. The zero value is usable.
type ServerConfig struct {
	// ChunkSize and IdleTimeout apply to every accepted connection.
	ChunkSize   int
	IdleTimeout time.Duration

	// HeartbeatInterval, when positive, starts a Pinger on each accepted
	// connection so idle clients can detect a dead server.
	HeartbeatInterval time.Duration

	// Logger receives connection lifecycle events. Nil disables logging.
	Logger *zerolog.Logger
}

// Server accepts TEJ connections and runs one receive loop per connection.
type Server struct {
	handler Handler
	cfg     ServerConfig
	log     zerolog.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    map[*Connection]struct{}
	closed   bool

	wg sync.WaitGroup
}

// NewServer creates a server dispatching to the given handler.
func NewServer(handler Handler, cfg ServerConfig) *Server {
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	return &Server{
		handler: handler,
		cfg:     cfg,
		log:     log,
		conns:   make(map[*Connection]struct{}),
	}
}

// Listen binds addr and serves until Close. It blocks.
func (s *Server) Listen(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(l)
}

// Serve accepts connections from l until Close. It blocks.
func (s *Server) Serve(l net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		l.Close()
		return ErrServerClosed
	}
	s.listener = l
	s.mu.Unlock()

	s.log.Info().Str("addr", l.Addr().String()).Msg("server listening")

	for {
		conn, err := l.Accept()
		if err != nil {
			if s.isClosed() {
				return ErrServerClosed
			}
			return err
		}

		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

// Addr returns the listening address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close stops accepting, closes every open connection, and waits for the
// per-connection loops to drain.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	listener := s.listener
	conns := make([]*Connection, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	var err error
	if listener != nil {
		err = listener.Close()
	}
	for _, c := range conns {
		c.Close()
	}

	s.wg.Wait()
	return err
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Server) handleConn(netConn net.Conn) {
	defer s.wg.Done()

	c := NewConnection(netConn, ConnectionConfig{
		ChunkSize:   s.cfg.ChunkSize,
		IdleTimeout: s.cfg.IdleTimeout,
	})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		c.Close()
		return
	}
	s.conns[c] = struct{}{}
	s.mu.Unlock()

	log := s.log.With().Str("remote", netConn.RemoteAddr().String()).Logger()
	log.Debug().Msg("client connected")

	var pinger *Pinger
	if s.cfg.HeartbeatInterval > 0 {
		pinger = NewPinger(c, s.cfg.HeartbeatInterval, &log)
		pinger.Start()
	}

	s.handler.Connected(c)
	err := receiveLoop(c, s.handler)

	if pinger != nil {
		pinger.Stop()
	}
	c.Close()

	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()

	var protoErr *frame.ProtocolError
	switch {
	case errors.As(err, &protoErr):
		log.Warn().Err(err).Msg("client sent a malformed frame")
	default:
		log.Debug().Msg("client disconnected")
	}
}
