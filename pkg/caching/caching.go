// Package caching remembers asset probe outcomes on disk so repeated imports
// do not hit the archive host for the same image twice.
package caching

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	present = "1"
	absent  = "0"
)

// Cache is a directory of small files keyed by URL hash. An entry older than
// the TTL counts as missing.
type Cache struct {
	path string
	ttl  time.Duration
}

// NewCache creates the cache directory if needed.
func NewCache(path string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{path: path, ttl: ttl}, nil
}

func (c *Cache) file(url string) string {
	return filepath.Join(c.path, fmt.Sprintf("%x", sha256.Sum256([]byte(url))))
}

// Lookup returns the stored probe result for url. ok is false on a miss,
// an expired entry or an unreadable file.
func (c *Cache) Lookup(url string) (exists bool, ok bool) {
	name := c.file(url)
	info, err := os.Stat(name)
	if err != nil {
		return false, false
	}
	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		return false, false
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return false, false
	}
	switch string(data) {
	case present:
		return true, true
	case absent:
		return false, true
	default:
		return false, false
	}
}

// Store records the probe result for url.
func (c *Cache) Store(url string, exists bool) error {
	v := absent
	if exists {
		v = present
	}
	if err := os.WriteFile(c.file(url), []byte(v), 0644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}

// Purge deletes expired entries and returns how many were removed.
func (c *Cache) Purge() (int, error) {
	if c.ttl <= 0 {
		return 0, nil
	}
	entries, err := os.ReadDir(c.path)
	if err != nil {
		return 0, fmt.Errorf("failed to list cache: %w", err)
	}
	removed := 0
	for _, e := range entries {
		info, err := e.Info()
		if err != nil || e.IsDir() {
			continue
		}
		if time.Since(info.ModTime()) > c.ttl {
			if err := os.Remove(filepath.Join(c.path, e.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}
