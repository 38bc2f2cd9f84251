// Package diskcache maps resource identifiers to files under a dedicated
// cache directory.
//
// The directory is eventually-consistent shared storage: a file's existence
// is a hint, not a guarantee, and any read failure is reported as a miss.
package diskcache

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
)

// File permissions for the disk cache.
const (
	dirPerm  = 0750
	filePerm = 0600
)

// Cache resolves identifiers to stable file paths in a cache directory.
// An empty directory disables disk caching entirely.
type Cache struct {
	dir string
}

// New creates a resolver rooted at dir. If dir is empty, all operations are
// no-ops and Has always reports false.
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Enabled reports whether disk caching is configured.
func (c *Cache) Enabled() bool {
	return c.dir != ""
}

// Path returns the filesystem path for an identifier's cached bytes.
// The mapping is a pure function of the identifier, stable across restarts.
// Returns empty string if disk caching is disabled or id is empty.
func (c *Cache) Path(id string) string {
	if c.dir == "" || id == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(id))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:]))
}

// Has reports whether a cached file currently exists for the identifier.
func (c *Cache) Has(id string) bool {
	path := c.Path(id)
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// Store atomically writes raw fetched bytes for an identifier.
func (c *Cache) Store(id string, data []byte) error {
	if c.dir == "" || id == "" || len(data) == 0 {
		return nil
	}

	if err := os.MkdirAll(c.dir, dirPerm); err != nil {
		return err
	}

	finalPath := c.Path(id)
	tempPath := finalPath + ".tmp"

	if err := os.WriteFile(tempPath, data, filePerm); err != nil {
		return err
	}

	if err := os.Rename(tempPath, finalPath); err != nil {
		_ = os.Remove(tempPath)
		return err
	}
	return nil
}

// Write atomically streams raw fetched bytes for an identifier from r.
// On any failure the temp file is removed and no cache entry appears.
func (c *Cache) Write(id string, r io.Reader) error {
	if c.dir == "" || id == "" {
		return nil
	}

	if err := os.MkdirAll(c.dir, dirPerm); err != nil {
		return err
	}

	finalPath := c.Path(id)
	tempPath := finalPath + ".tmp"

	f, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(tempPath)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return err
	}

	if err := os.Rename(tempPath, finalPath); err != nil {
		_ = os.Remove(tempPath)
		return err
	}
	return nil
}

// Read returns the cached bytes for an identifier.
// Any failure, including a zero-length file, is reported as a miss.
func (c *Cache) Read(id string) ([]byte, bool) {
	path := c.Path(id)
	if path == "" {
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

// Remove deletes the cached file for an identifier, if any.
// Used to purge corrupted entries so a future request re-fetches.
func (c *Cache) Remove(id string) {
	path := c.Path(id)
	if path == "" {
		return
	}
	_ = os.Remove(path)
}

// Clear removes every file in the cache directory. Best-effort: individual
// delete failures do not abort the sweep.
func (c *Cache) Clear() {
	if c.dir == "" {
		return
	}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		_ = os.Remove(filepath.Join(c.dir, e.Name()))
	}
}
