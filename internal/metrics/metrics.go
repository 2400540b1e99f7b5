// Package metrics collects lightweight process counters with atomics. They
// surface in debug logs; wiring them to an external collector is a separate
// concern.
package metrics

import (
	"sync/atomic"
	"time"
)

// Metrics holds the engine's counters. All methods are safe for concurrent
// use.
type Metrics struct {
	rpcCalls        atomic.Int64
	rpcErrors       atomic.Int64
	rpcLatencyNanos atomic.Int64

	indexerCalls  atomic.Int64
	indexerErrors atomic.Int64

	cacheHits   atomic.Int64
	cacheMisses atomic.Int64

	txSent atomic.Int64
}

// Global is the process-wide metrics instance.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = &Metrics{}

// RecordRPCCall records one JSON-RPC round trip.
func (m *Metrics) RecordRPCCall(duration time.Duration, err error) {
	m.rpcCalls.Add(1)
	m.rpcLatencyNanos.Add(duration.Nanoseconds())
	if err != nil {
		m.rpcErrors.Add(1)
	}
}

// RecordIndexerCall records one indexer HTTP request.
func (m *Metrics) RecordIndexerCall(err error) {
	m.indexerCalls.Add(1)
	if err != nil {
		m.indexerErrors.Add(1)
	}
}

// RecordCacheHit records a metadata cache hit.
func (m *Metrics) RecordCacheHit() {
	m.cacheHits.Add(1)
}

// RecordCacheMiss records a metadata cache miss.
func (m *Metrics) RecordCacheMiss() {
	m.cacheMisses.Add(1)
}

// RecordTxSent records a broadcast transaction.
func (m *Metrics) RecordTxSent() {
	m.txSent.Add(1)
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	RPCCalls        int64
	RPCErrors       int64
	RPCLatencyNanos int64
	IndexerCalls    int64
	IndexerErrors   int64
	CacheHits       int64
	CacheMisses     int64
	TxSent          int64
}

// Snapshot returns a point-in-time copy of all counters.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		RPCCalls:        m.rpcCalls.Load(),
		RPCErrors:       m.rpcErrors.Load(),
		RPCLatencyNanos: m.rpcLatencyNanos.Load(),
		IndexerCalls:    m.indexerCalls.Load(),
		IndexerErrors:   m.indexerErrors.Load(),
		CacheHits:       m.cacheHits.Load(),
		CacheMisses:     m.cacheMisses.Load(),
		TxSent:          m.txSent.Load(),
	}
}

// AverageRPCLatency returns the mean round-trip time, zero when no calls
// were made.
func (m *Metrics) AverageRPCLatency() time.Duration {
	calls := m.rpcCalls.Load()
	if calls == 0 {
		return 0
	}
	return time.Duration(m.rpcLatencyNanos.Load() / calls)
}

// Reset zeroes every counter.
func (m *Metrics) Reset() {
	m.rpcCalls.Store(0)
	m.rpcErrors.Store(0)
	m.rpcLatencyNanos.Store(0)
	m.indexerCalls.Store(0)
	m.indexerErrors.Store(0)
	m.cacheHits.Store(0)
	m.cacheMisses.Store(0)
	m.txSent.Store(0)
}
