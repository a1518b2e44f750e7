package tejproto

import (
	"context"
	"sync"
	"time"
)

// NewChannelPool creates the default channel-based connection pool.
func NewChannelPool(constructor func(ctx context.Context) (*Connection, error), maxSize int32) (Pool, error) {
	return &channelPool{
		constructor: constructor,
		maxSize:     maxSize,
		resources:   make(chan *channelResource, maxSize),
	}, nil
}

// channelResource implements Resource for channelPool.
type channelResource struct {
	conn         *Connection
	pool         *channelPool
	creationTime time.Time
	lastUsedTime time.Time
}

func (r *channelResource) Value() *Connection {
	return r.conn
}

func (r *channelResource) Release() {
	r.lastUsedTime = time.Now()
	r.pool.put(r)
}

func (r *channelResource) ReleaseUnused() {
	// Health checks return connections without refreshing the idle clock.
	r.pool.put(r)
}

func (r *channelResource) Destroy() {
	r.conn.Close()
	r.pool.removeResource()
}

func (r *channelResource) CreationTime() time.Time {
	return r.creationTime
}

func (r *channelResource) IdleDuration() time.Duration {
	return time.Since(r.lastUsedTime)
}

// channelPool is a simple connection pool built on a buffered channel of
// idle resources.
type channelPool struct {
	constructor func(ctx context.Context) (*Connection, error)
	maxSize     int32

	mu        sync.Mutex
	resources chan *channelResource
	size      int32
	closed    bool

	stats poolStatsCollector
}

func (p *channelPool) Acquire(ctx context.Context) (Resource, error) {
	p.stats.recordAcquire()

	// Idle connection first. A nil receive means the channel was closed.
	select {
	case res := <-p.resources:
		if res == nil {
			p.stats.recordAcquireError()
			return nil, ErrPoolClosed
		}
		p.stats.recordAcquireFromIdle()
		return res, nil
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.stats.recordAcquireError()
		return nil, ErrPoolClosed
	}

	if p.size < p.maxSize {
		p.size++
		p.mu.Unlock()

		conn, err := p.constructor(ctx)
		if err != nil {
			p.mu.Lock()
			p.size--
			p.mu.Unlock()
			p.stats.recordAcquireError()
			return nil, err
		}

		p.stats.recordCreate()
		p.stats.recordActivate()

		now := time.Now()
		return &channelResource{
			conn:         conn,
			pool:         p,
			creationTime: now,
			lastUsedTime: now,
		}, nil
	}
	p.mu.Unlock()

	// Pool is full: wait for a release.
	waitStart := time.Now()
	select {
	case res := <-p.resources:
		if res == nil {
			p.stats.recordAcquireError()
			return nil, ErrPoolClosed
		}
		p.stats.recordAcquireWait(time.Since(waitStart))
		p.stats.recordAcquireFromIdle()
		return res, nil
	case <-ctx.Done():
		p.stats.recordAcquireError()
		return nil, ctx.Err()
	}
}

// put returns a resource to the idle channel. The send happens under the
// mutex so it cannot race Close closing the channel.
func (p *channelPool) put(res *channelResource) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		res.conn.Close()
		p.removeResource()
		return
	}

	select {
	case p.resources <- res:
		p.stats.recordRelease()
		p.mu.Unlock()
	default:
		// Channel full, drop the connection.
		p.mu.Unlock()
		res.conn.Close()
		p.removeResource()
	}
}

func (p *channelPool) removeResource() {
	p.mu.Lock()
	p.size--
	p.mu.Unlock()
	p.stats.recordDestroy()
}

func (p *channelPool) AcquireAllIdle() []Resource {
	var idle []Resource

	for {
		select {
		case res := <-p.resources:
			if res == nil {
				// Closed channel.
				return idle
			}
			idle = append(idle, res)
		default:
			return idle
		}
	}
}

func (p *channelPool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.resources)
	p.mu.Unlock()

	for res := range p.resources {
		res.conn.Close()
	}
}

func (p *channelPool) Stats() PoolStats {
	return p.stats.snapshot()
}
