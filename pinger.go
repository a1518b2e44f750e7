package tejproto

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Pinger periodically sends heartbeat frames on a connection from its own
// goroutine. It shares the connection's write lock with other senders, so
// heartbeats never interleave with application frames.
//
// The pinger stops itself when a send fails; the failure also marks the
// connection closed, which the receive loop observes.
type Pinger struct {
	conn     *Connection
	interval time.Duration
	log      zerolog.Logger

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewPinger creates a pinger for the connection. Logger may be nil.
func NewPinger(conn *Connection, interval time.Duration, logger *zerolog.Logger) *Pinger {
	log := zerolog.Nop()
	if logger != nil {
		log = *logger
	}

	return &Pinger{
		conn:     conn,
		interval: interval,
		log:      log,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the heartbeat goroutine.
func (p *Pinger) Start() {
	go p.run()
}

// Stop halts the heartbeat goroutine and waits for it to exit. Safe to
// call more than once, but only after Start.
func (p *Pinger) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
	<-p.done
}

func (p *Pinger) run() {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			if err := p.conn.Ping(); err != nil {
				p.log.Debug().Err(err).Msg("heartbeat failed, stopping pinger")
				return
			}
		}
	}
}
