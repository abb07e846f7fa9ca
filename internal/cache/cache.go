// Package cache remembers package archives that already passed verification,
// so repeated runs over a large cache directory only decompress new files.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cache provides local file-based markers for verified archives
type Cache struct {
	Dir string
	TTL time.Duration
}

// DefaultTTL is the default marker time-to-live
const DefaultTTL = 30 * 24 * time.Hour

// DefaultDir returns the per-user cache directory for the given app name
func DefaultDir(appName string) (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appName, "verified"), nil
}

// New creates a cache rooted at dir, creating it if needed
func New(dir string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	if ttl == 0 {
		ttl = DefaultTTL
	}

	return &Cache{
		Dir: dir,
		TTL: ttl,
	}, nil
}

// Key identifies one state of an archive. Replacing or touching the file
// changes its key.
func Key(path string, size int64, modTime time.Time) string {
	return fmt.Sprintf("%s\x00%d\x00%d", path, size, modTime.UnixNano())
}

// keyToFilename converts a key to a safe filename
func (c *Cache) keyToFilename(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:16])
}

// Path returns the full path to the marker file for a key
func (c *Cache) Path(key string) string {
	return filepath.Join(c.Dir, c.keyToFilename(key))
}

// Verified reports whether key was marked and the marker has not expired
func (c *Cache) Verified(key string) bool {
	info, err := os.Stat(c.Path(key))
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) <= c.TTL
}

// MarkVerified records that the archive identified by key is readable
func (c *Cache) MarkVerified(key string) error {
	return os.WriteFile(c.Path(key), nil, 0644)
}

// Clear removes all markers
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			if err := os.Remove(filepath.Join(c.Dir, entry.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}
