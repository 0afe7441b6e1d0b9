// Package util provides small shared helpers: atomic file persistence for
// JSON snapshots and environment variable parsing.
package util

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Default permissions for snapshot files and their directories.
const (
	DirPermissions  = 0o755
	FilePermissions = 0o644
)

// WriteJSONAtomic marshals v and writes it to path via a temp file followed
// by a rename, so readers never observe a half-written snapshot. The parent
// directory is created if missing.
func WriteJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON for %s: %w", path, err)
	}
	return WriteFileAtomic(path, data)
}

// WriteFileAtomic writes data to path using the temp-file-then-rename
// strategy. Intended for small state files, not large blobs.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, FilePermissions); err != nil {
		return fmt.Errorf("failed to write temp file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// ReadJSONSafely reads and unmarshals JSON from path into v. A missing file
// or invalid content is logged and reported as false, never as an error;
// callers fall back to their zero state. Only unexpected read failures are
// logged at warning level.
func ReadJSONSafely(path string, v any) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("ReadJSONSafely: failed to read file", "path", path, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		slog.Warn("ReadJSONSafely: invalid JSON", "path", path, "error", err)
		return false
	}
	return true
}
