// Package cache stores token contract metadata looked up over RPC so repeat
// lookups of the same contract skip the round trip.
package cache

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// Entry is one cached token contract.
type Entry struct {
	ChainID   int64     `json:"chain_id"`
	Address   string    `json:"address"`
	Name      string    `json:"name"`
	Symbol    string    `json:"symbol"`
	Decimals  uint8     `json:"decimals"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Metadata is an in-memory token metadata cache safe for concurrent use.
// Contract metadata never changes, so entries have no expiry.
type Metadata struct {
	mu      sync.RWMutex
	Entries map[string]Entry `json:"entries"`
}

// NewMetadata creates an empty metadata cache.
func NewMetadata() *Metadata {
	return &Metadata{Entries: make(map[string]Entry)}
}

// Key builds the cache key for a contract on a chain. Addresses are
// lowercased so checksum casing never splits an entry.
func Key(chainID int64, address string) string {
	return strconv.FormatInt(chainID, 10) + ":" + strings.ToLower(address)
}

// Get returns the cached entry for a contract, if present.
func (m *Metadata) Get(chainID int64, address string) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.Entries[Key(chainID, address)]
	return entry, ok
}

// Put stores an entry, stamping the fetch time.
func (m *Metadata) Put(entry Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry.FetchedAt = time.Now().UTC()
	m.Entries[Key(entry.ChainID, entry.Address)] = entry
}

// Size returns the number of cached contracts.
func (m *Metadata) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.Entries)
}

// Clear drops every entry.
func (m *Metadata) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Entries = make(map[string]Entry)
}
