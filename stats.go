package tejproto

import (
	"sync/atomic"
	"time"
)

// DispatcherStats counts dispatcher operations. All fields are cumulative.
type DispatcherStats struct {
	Dispatched uint64 // frames delivered via Dispatch
	Broadcast  uint64 // frames delivered via Broadcast, one per endpoint
	Heartbeats uint64 // health-check heartbeats sent
	Errors     uint64 // failed operations across the dispatcher
}

// poolStatsCollector updates pool counters; pools update their own stats.
type poolStatsCollector struct {
	stats PoolStats
}

func (c *poolStatsCollector) recordAcquire() {
	atomic.AddUint64(&c.stats.AcquireCount, 1)
}

func (c *poolStatsCollector) recordAcquireWait(d time.Duration) {
	atomic.AddUint64(&c.stats.AcquireWaitCount, 1)
	atomic.AddUint64(&c.stats.AcquireWaitTimeNs, uint64(d.Nanoseconds()))
}

func (c *poolStatsCollector) recordCreate() {
	atomic.AddUint64(&c.stats.CreatedConns, 1)
	atomic.AddInt32(&c.stats.TotalConns, 1)
}

func (c *poolStatsCollector) recordDestroy() {
	atomic.AddUint64(&c.stats.DestroyedConns, 1)
	atomic.AddInt32(&c.stats.TotalConns, -1)
}

func (c *poolStatsCollector) recordAcquireError() {
	atomic.AddUint64(&c.stats.AcquireErrors, 1)
}

func (c *poolStatsCollector) recordAcquireFromIdle() {
	atomic.AddInt32(&c.stats.IdleConns, -1)
	atomic.AddInt32(&c.stats.ActiveConns, 1)
}

func (c *poolStatsCollector) recordActivate() {
	atomic.AddInt32(&c.stats.ActiveConns, 1)
}

func (c *poolStatsCollector) recordRelease() {
	atomic.AddInt32(&c.stats.IdleConns, 1)
	atomic.AddInt32(&c.stats.ActiveConns, -1)
}

func (c *poolStatsCollector) snapshot() PoolStats {
	return PoolStats{
		AcquireCount:      atomic.LoadUint64(&c.stats.AcquireCount),
		AcquireWaitCount:  atomic.LoadUint64(&c.stats.AcquireWaitCount),
		CreatedConns:      atomic.LoadUint64(&c.stats.CreatedConns),
		DestroyedConns:    atomic.LoadUint64(&c.stats.DestroyedConns),
		AcquireErrors:     atomic.LoadUint64(&c.stats.AcquireErrors),
		AcquireWaitTimeNs: atomic.LoadUint64(&c.stats.AcquireWaitTimeNs),
		TotalConns:        atomic.LoadInt32(&c.stats.TotalConns),
		IdleConns:         atomic.LoadInt32(&c.stats.IdleConns),
		ActiveConns:       atomic.LoadInt32(&c.stats.ActiveConns),
	}
}

// dispatcherStatsCollector updates dispatcher counters.
type dispatcherStatsCollector struct {
	stats DispatcherStats
}

func (c *dispatcherStatsCollector) recordDispatch() {
	atomic.AddUint64(&c.stats.Dispatched, 1)
}

func (c *dispatcherStatsCollector) recordBroadcast(n int) {
	atomic.AddUint64(&c.stats.Broadcast, uint64(n))
}

func (c *dispatcherStatsCollector) recordHeartbeat() {
	atomic.AddUint64(&c.stats.Heartbeats, 1)
}

func (c *dispatcherStatsCollector) recordError() {
	atomic.AddUint64(&c.stats.Errors, 1)
}

func (c *dispatcherStatsCollector) snapshot() DispatcherStats {
	return DispatcherStats{
		Dispatched: atomic.LoadUint64(&c.stats.Dispatched),
		Broadcast:  atomic.LoadUint64(&c.stats.Broadcast),
		Heartbeats: atomic.LoadUint64(&c.stats.Heartbeats),
		Errors:     atomic.LoadUint64(&c.stats.Errors),
	}
}
