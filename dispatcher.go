package tejproto

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tejproto/tejproto/frame"
)

// DispatcherConfig configures a Dispatcher.
type DispatcherConfig struct {
	// MaxPoolSize is the maximum number of connections per endpoint.
	// Required: must be > 0.
	MaxPoolSize int32

	// MaxConnLifetime is the maximum age of a pooled connection. Zero
	// means no limit.
	MaxConnLifetime time.Duration

	// MaxConnIdleTime is the maximum idle duration before a pooled
	// connection is closed. Zero means no limit.
	MaxConnIdleTime time.Duration

	// HealthCheckInterval is how often idle connections are checked with
	// a heartbeat frame. Zero disables health checks.
	HealthCheckInterval time.Duration

	// Connection applies to every pooled connection.
	Connection ConnectionConfig

	// Dialer overrides the default net.Dialer.
	Dialer *net.Dialer

	// Pool overrides the pool implementation. Default: NewChannelPool.
	// NewPuddlePool is the alternative.
	Pool PoolFactory

	// SelectEndpoint picks the endpoint for a routing key. Default:
	// DefaultSelectEndpoint.
	SelectEndpoint SelectEndpointFunc

	// NewCircuitBreaker, when set, creates one breaker per endpoint and
	// wraps every dispatch to it.
	NewCircuitBreaker func(endpoint string) CircuitBreaker

	// Logger receives dispatch failures and health check events. Nil
	// disables logging.
	Logger *zerolog.Logger

	// for testing purposes only
	constructor func(ctx context.Context) (*Connection, error)
}

// endpointPool binds a pool and its optional breaker to one endpoint.
type endpointPool struct {
	addr    string
	pool    Pool
	breaker CircuitBreaker // nil if not configured
}

// Dispatcher delivers outbound frames to a set of endpoints over pooled
// connections. A routing key keeps related frames on the same endpoint.
//
// Dispatch is fire-and-forget at the protocol level: TEJ has no
// acknowledgment frame, so success means the bytes were written to a
// healthy connection.
type Dispatcher struct {
	endpoints      []string
	selectEndpoint SelectEndpointFunc
	cfg            DispatcherConfig
	log            zerolog.Logger

	mu    sync.RWMutex
	pools map[string]*endpointPool

	stopHealthCheck chan struct{}
	closeOnce       sync.Once
	stats           dispatcherStatsCollector
}

// NewDispatcher creates a dispatcher over the given endpoints.
func NewDispatcher(endpoints []string, cfg DispatcherConfig) (*Dispatcher, error) {
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("no endpoints provided")
	}
	if cfg.MaxPoolSize <= 0 {
		return nil, fmt.Errorf("MaxPoolSize must be > 0")
	}

	if cfg.SelectEndpoint == nil {
		cfg.SelectEndpoint = DefaultSelectEndpoint
	}
	if cfg.Dialer == nil {
		cfg.Dialer = &net.Dialer{}
	}
	if cfg.Pool == nil {
		cfg.Pool = NewChannelPool
	}

	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	d := &Dispatcher{
		endpoints:       endpoints,
		selectEndpoint:  cfg.SelectEndpoint,
		cfg:             cfg,
		log:             log,
		pools:           make(map[string]*endpointPool),
		stopHealthCheck: make(chan struct{}),
	}

	if cfg.HealthCheckInterval > 0 {
		go d.healthCheckLoop()
	}

	return d, nil
}

// Dispatch sends one serialized frame to the endpoint selected for the
// routing key.
func (d *Dispatcher) Dispatch(ctx context.Context, routingKey string, p []byte) error {
	ep, err := d.poolForKey(routingKey)
	if err != nil {
		d.stats.recordError()
		return err
	}

	if err := d.send(ctx, ep, p); err != nil {
		d.stats.recordError()
		return err
	}

	d.stats.recordDispatch()
	return nil
}

// DispatchFrame serializes the builder and dispatches the result.
func (d *Dispatcher) DispatchFrame(ctx context.Context, routingKey string, b *frame.Builder) error {
	p, err := b.Bytes()
	if err != nil {
		d.stats.recordError()
		return err
	}
	return d.Dispatch(ctx, routingKey, p)
}

// Broadcast sends one serialized frame to every endpoint. Failures do not
// stop delivery to the remaining endpoints; the joined error reports every
// endpoint that failed.
func (d *Dispatcher) Broadcast(ctx context.Context, p []byte) error {
	var errs []error
	delivered := 0

	for _, addr := range d.endpoints {
		ep, err := d.getOrCreatePool(addr)
		if err == nil {
			err = d.send(ctx, ep, p)
		}
		if err != nil {
			d.stats.recordError()
			errs = append(errs, fmt.Errorf("%s: %w", addr, err))
			continue
		}
		delivered++
	}

	d.stats.recordBroadcast(delivered)
	return errors.Join(errs...)
}

// Stats returns a snapshot of dispatcher counters.
func (d *Dispatcher) Stats() DispatcherStats {
	return d.stats.snapshot()
}

// EndpointPoolStats describes one endpoint's pool.
type EndpointPoolStats struct {
	Endpoint     string
	PoolStats    PoolStats
	BreakerState string // empty if no breaker is configured
}

// AllPoolStats returns stats for every endpoint pool created so far.
func (d *Dispatcher) AllPoolStats() []EndpointPoolStats {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stats := make([]EndpointPoolStats, 0, len(d.pools))
	for _, ep := range d.pools {
		s := EndpointPoolStats{
			Endpoint:  ep.addr,
			PoolStats: ep.pool.Stats(),
		}
		if ep.breaker != nil {
			s.BreakerState = ep.breaker.State()
		}
		stats = append(stats, s)
	}
	return stats
}

// Close stops the health check loop and destroys every pool. Safe to call
// more than once.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		if d.cfg.HealthCheckInterval > 0 {
			close(d.stopHealthCheck)
		}

		d.mu.Lock()
		defer d.mu.Unlock()

		for _, ep := range d.pools {
			ep.pool.Close()
		}
	})
}

// send delivers the frame over a pooled connection, wrapped by the
// endpoint's breaker when one is configured.
func (d *Dispatcher) send(ctx context.Context, ep *endpointPool, p []byte) error {
	if ep.breaker != nil {
		return ep.breaker.Execute(func() error {
			return d.sendDirect(ctx, ep.pool, p)
		})
	}
	return d.sendDirect(ctx, ep.pool, p)
}

func (d *Dispatcher) sendDirect(ctx context.Context, pool Pool, p []byte) error {
	resource, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}

	if err := resource.Value().Send(p); err != nil {
		// A failed send desyncs the stream; drop the connection.
		resource.Destroy()
		return err
	}

	resource.Release()
	return nil
}

func (d *Dispatcher) poolForKey(routingKey string) (*endpointPool, error) {
	idx := d.selectEndpoint(routingKey, len(d.endpoints))
	if idx < 0 || idx >= len(d.endpoints) {
		return nil, fmt.Errorf("endpoint selector returned index %d for %d endpoints", idx, len(d.endpoints))
	}
	return d.getOrCreatePool(d.endpoints[idx])
}

func (d *Dispatcher) getOrCreatePool(addr string) (*endpointPool, error) {
	d.mu.RLock()
	ep, exists := d.pools[addr]
	d.mu.RUnlock()
	if exists {
		return ep, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if ep, exists := d.pools[addr]; exists {
		return ep, nil
	}

	constructor := d.cfg.constructor
	if constructor == nil {
		constructor = func(ctx context.Context) (*Connection, error) {
			netConn, err := d.cfg.Dialer.DialContext(ctx, "tcp", addr)
			if err != nil {
				return nil, err
			}
			return NewConnection(netConn, d.cfg.Connection), nil
		}
	}

	pool, err := d.cfg.Pool(constructor, d.cfg.MaxPoolSize)
	if err != nil {
		return nil, err
	}

	ep = &endpointPool{addr: addr, pool: pool}
	if d.cfg.NewCircuitBreaker != nil {
		ep.breaker = d.cfg.NewCircuitBreaker(addr)
	}

	d.pools[addr] = ep
	return ep, nil
}

// healthCheckLoop periodically checks idle connections for staleness and
// liveness.
func (d *Dispatcher) healthCheckLoop() {
	ticker := time.NewTicker(d.cfg.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.stopHealthCheck:
			return
		case <-ticker.C:
			d.checkAllPools()
		}
	}
}

func (d *Dispatcher) checkAllPools() {
	d.mu.RLock()
	pools := make([]*endpointPool, 0, len(d.pools))
	for _, ep := range d.pools {
		pools = append(pools, ep)
	}
	d.mu.RUnlock()

	for _, ep := range pools {
		d.checkPoolConnections(ep)
	}
}

// checkPoolConnections destroys idle connections that are stale, past
// their lifetime, or fail a heartbeat.
func (d *Dispatcher) checkPoolConnections(ep *endpointPool) {
	now := time.Now()

	for _, res := range ep.pool.AcquireAllIdle() {
		if d.cfg.MaxConnLifetime > 0 && now.Sub(res.CreationTime()) > d.cfg.MaxConnLifetime {
			res.Destroy()
			continue
		}

		if d.cfg.MaxConnIdleTime > 0 && res.IdleDuration() > d.cfg.MaxConnIdleTime {
			res.Destroy()
			continue
		}

		if err := res.Value().Ping(); err != nil {
			d.log.Debug().Str("endpoint", ep.addr).Err(err).Msg("health check heartbeat failed")
			res.Destroy()
			continue
		}

		d.stats.recordHeartbeat()
		res.ReleaseUnused()
	}
}
