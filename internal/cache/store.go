package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/web3twenty/3twenty-wallet/internal/fileutil"
)

const (
	cacheFilePermissions = 0o640
	cacheDirPermissions  = 0o750
)

// ErrCorruptCache indicates the cache file is malformed JSON.
var ErrCorruptCache = errors.New("cache file is corrupted")

// Store persists a metadata cache as JSON on disk.
type Store struct {
	path string
}

// NewStore creates a store for the given cache file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the cache file path.
func (s *Store) Path() string {
	return s.path
}

// Save writes the cache to disk.
func (s *Store) Save(metadata *Metadata) error {
	if err := fileutil.EnsureDir(s.path, cacheDirPermissions); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	metadata.mu.RLock()
	data, err := json.MarshalIndent(metadata, "", "  ")
	metadata.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}

	if err := fileutil.WriteAtomic(s.path, data, cacheFilePermissions); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}

	return nil
}

// Load reads the cache from disk. A missing file yields an empty cache. A
// corrupt file is moved aside so the next save starts clean, and an empty
// cache is returned alongside the error.
func (s *Store) Load() (*Metadata, error) {
	data, err := os.ReadFile(s.path) // #nosec G304 -- cache path comes from validated config
	if os.IsNotExist(err) {
		return NewMetadata(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache file: %w", err)
	}

	var metadata Metadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		corruptPath := fmt.Sprintf("%s.corrupt.%d", s.path, time.Now().UTC().UnixNano())
		if renameErr := os.Rename(s.path, corruptPath); renameErr != nil {
			return NewMetadata(), fmt.Errorf("%w: %w (also failed to move file: %w)", ErrCorruptCache, err, renameErr)
		}
		return NewMetadata(), fmt.Errorf("%w: %w (moved to %s)", ErrCorruptCache, err, corruptPath)
	}

	if metadata.Entries == nil {
		metadata.Entries = make(map[string]Entry)
	}

	return &metadata, nil
}

// Delete removes the cache file if present.
func (s *Store) Delete() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing cache file: %w", err)
	}
	return nil
}
