package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordRPCCall(t *testing.T) {
	t.Parallel()

	m := &Metrics{}
	m.RecordRPCCall(10*time.Millisecond, nil)
	m.RecordRPCCall(30*time.Millisecond, errors.New("timeout"))

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.RPCCalls)
	assert.Equal(t, int64(1), snap.RPCErrors)
	assert.Equal(t, 20*time.Millisecond, m.AverageRPCLatency())
}

func TestAverageLatencyWithoutCalls(t *testing.T) {
	t.Parallel()

	m := &Metrics{}
	assert.Equal(t, time.Duration(0), m.AverageRPCLatency())
}

func TestCacheAndIndexerCounters(t *testing.T) {
	t.Parallel()

	m := &Metrics{}
	m.RecordCacheHit()
	m.RecordCacheHit()
	m.RecordCacheMiss()
	m.RecordIndexerCall(nil)
	m.RecordIndexerCall(errors.New("rate limited"))
	m.RecordTxSent()

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.CacheHits)
	assert.Equal(t, int64(1), snap.CacheMisses)
	assert.Equal(t, int64(2), snap.IndexerCalls)
	assert.Equal(t, int64(1), snap.IndexerErrors)
	assert.Equal(t, int64(1), snap.TxSent)
}

func TestReset(t *testing.T) {
	t.Parallel()

	m := &Metrics{}
	m.RecordRPCCall(time.Millisecond, nil)
	m.RecordCacheHit()
	m.Reset()

	assert.Equal(t, Snapshot{}, m.Snapshot())
}

func TestConcurrentRecording(t *testing.T) {
	t.Parallel()

	m := &Metrics{}
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordRPCCall(time.Millisecond, nil)
			m.RecordCacheMiss()
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	assert.Equal(t, int64(50), snap.RPCCalls)
	assert.Equal(t, int64(50), snap.CacheMisses)
}
