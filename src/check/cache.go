package check

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultCacheDir is the cache location relative to the checked root.
const DefaultCacheDir = ".buildcheck/cache"

// cacheVersion is mixed into every key so a change in finding layout
// invalidates old entries.
const cacheVersion = "1"

// Cache stores rule findings keyed by file content, rule id and the rule's
// custom configuration.
type Cache struct {
	Dir     string
	Enabled bool
}

type cacheEntry struct {
	Findings []Finding `json:"findings"`
}

// NewCache returns a cache rooted at dir. A relative dir is resolved
// against root.
func NewCache(root, dir string, enabled bool) *Cache {
	return &Cache{Dir: ResolveCacheDir(root, dir), Enabled: enabled}
}

// ResolveCacheDir returns the absolute cache directory.
func ResolveCacheDir(root, dir string) string {
	if dir == "" {
		dir = DefaultCacheDir
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(root, dir)
}

// Key computes the cache key for one rule over one file.
func (c *Cache) Key(content []byte, ruleID, fingerprint string) string {
	h := sha256.New()
	h.Write(content)
	h.Write([]byte{0})
	h.Write([]byte(ruleID))
	h.Write([]byte{0})
	h.Write([]byte(fingerprint))
	h.Write([]byte{0})
	h.Write([]byte(cacheVersion))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached findings for key.
func (c *Cache) Get(key string) ([]Finding, bool) {
	if !c.Enabled {
		return nil, false
	}
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	return entry.Findings, true
}

// Put stores findings under key. Empty results are stored too.
func (c *Cache) Put(key string, findings []Finding) error {
	if !c.Enabled {
		return nil
	}
	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}
	data, err := json.Marshal(cacheEntry{Findings: findings})
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), key+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Clear removes the cache directory.
func (c *Cache) Clear() error {
	return os.RemoveAll(c.Dir)
}

// path shards entries by the first two key characters.
func (c *Cache) path(key string) string {
	return filepath.Join(c.Dir, key[:2], key+".json")
}
