package tejproto

import (
	"context"
	"errors"
	"time"
)

var ErrPoolClosed = errors.New("tejproto: pool closed")

// Pool manages reusable outbound connections to one endpoint.
type Pool interface {
	// Acquire returns a connection resource, creating one if the pool has
	// capacity, or waiting for a release otherwise.
	Acquire(ctx context.Context) (Resource, error)

	// AcquireAllIdle returns every idle resource, for health checking.
	AcquireAllIdle() []Resource

	// Stats returns a snapshot of pool statistics.
	Stats() PoolStats

	// Close destroys all connections. Pending acquires fail.
	Close()
}

// Resource is one pooled connection.
type Resource interface {
	Value() *Connection

	// Release returns the connection to the pool for reuse.
	Release()

	// ReleaseUnused returns the connection without refreshing its idle
	// clock. Used by health checks.
	ReleaseUnused()

	// Destroy closes the connection and removes it from the pool.
	Destroy()

	CreationTime() time.Time
	IdleDuration() time.Duration
}

// PoolFactory builds a Pool from a connection constructor and a size bound.
type PoolFactory func(constructor func(ctx context.Context) (*Connection, error), maxSize int32) (Pool, error)

// PoolStats is a snapshot of pool counters. Gauges describe the current
// state; counters accumulate over the pool's lifetime.
type PoolStats struct {
	AcquireCount      uint64
	AcquireWaitCount  uint64
	CreatedConns      uint64
	DestroyedConns    uint64
	AcquireErrors     uint64
	AcquireWaitTimeNs uint64

	TotalConns  int32
	IdleConns   int32
	ActiveConns int32
}
