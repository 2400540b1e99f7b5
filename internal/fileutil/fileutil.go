// Package fileutil provides crash-safe filesystem helpers shared by the
// vault store and the config writer.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrEmptyPath indicates an empty destination path.
var ErrEmptyPath = errors.New("path is empty")

// EnsureDir creates the directory for path with the given permissions if it
// does not already exist.
func EnsureDir(path string, perm os.FileMode) error {
	if path == "" {
		return ErrEmptyPath
	}
	return os.MkdirAll(filepath.Dir(path), perm)
}

// WriteAtomic replaces the file at path with data. The bytes land in a temp
// file in the same directory first, get synced, then rename over the target
// so a crash mid-write never leaves a half-written file behind.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	if path == "" {
		return ErrEmptyPath
	}

	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if err = tmp.Chmod(perm); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}

	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err = os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing target file: %w", err)
	}
	committed = true

	// Directory sync is best effort; rename durability varies by filesystem.
	if dirFile, dirErr := os.Open(dir); dirErr == nil { // #nosec G304 -- dir derives from the caller's path
		_ = dirFile.Sync()
		_ = dirFile.Close()
	}

	return nil
}
