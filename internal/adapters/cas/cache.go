// Package cas implements the content-addressed build cache.
package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/polybuild/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.BuildCache = (*Cache)(nil)

// Cache implements ports.BuildCache with a metadata.json index and one
// marker file per key.
type Cache struct {
	dir    string
	logger ports.Logger
	keys   *Keyer

	// writeMu serializes index mutation plus persistence.
	writeMu sync.Mutex
	mu      sync.RWMutex
	index   map[string]domain.CacheEntry
}

// NewCache opens the cache rooted at dir, creating the directory if needed.
// A corrupt index is logged and replaced by an empty one.
func NewCache(dir string, keys *Keyer, logger ports.Logger) (*Cache, error) {
	c := &Cache{
		dir:    filepath.Clean(dir),
		logger: logger,
		keys:   keys,
		index:  make(map[string]domain.CacheEntry),
	}

	if err := os.MkdirAll(c.dir, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheCreateFailed.Error()), "dir", c.dir)
	}

	if err := c.load(); err != nil {
		c.logger.Error(err)
		c.index = make(map[string]domain.CacheEntry)
	}

	return c, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

func (c *Cache) indexPath() string {
	return filepath.Join(c.dir, domain.CacheIndexFile)
}

func (c *Cache) markerPath(key string) string {
	return filepath.Join(c.dir, key)
}

func (c *Cache) load() error {
	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(c.indexPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.With(zerr.Wrap(err, domain.ErrCacheReadFailed.Error()), "path", c.indexPath())
	}

	if len(data) == 0 {
		return nil
	}

	index := make(map[string]domain.CacheEntry)
	if err := json.Unmarshal(data, &index); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheReadFailed.Error()), "path", c.indexPath())
	}

	c.mu.Lock()
	c.index = index
	c.mu.Unlock()
	return nil
}

// persist writes the index through a temporary file so readers never see a
// partial document. Callers hold writeMu.
func (c *Cache) persist() error {
	c.mu.RLock()
	data, err := json.MarshalIndent(c.index, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}

	tmp, err := os.CreateTemp(c.dir, domain.CacheIndexFile+".*")
	if err != nil {
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // Best effort cleanup after rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}
	if err := tmp.Close(); err != nil {
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}
	if err := os.Chmod(tmp.Name(), domain.FilePerm); err != nil {
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}
	if err := os.Rename(tmp.Name(), c.indexPath()); err != nil {
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}
	return nil
}

// Key computes the cache key of target relative to root.
func (c *Cache) Key(target *domain.BuildTarget, root string) (string, error) {
	return c.keys.Key(target, root)
}

// IsCached reports whether both the index entry and its marker file exist.
func (c *Cache) IsCached(key string) bool {
	c.mu.RLock()
	_, ok := c.index[key]
	c.mu.RUnlock()
	if !ok {
		return false
	}

	_, err := os.Stat(c.markerPath(key))
	return err == nil
}

// Get returns the cached result for key.
func (c *Cache) Get(key string) (*domain.BuildResult, bool) {
	if !c.IsCached(key) {
		return nil, false
	}

	c.mu.RLock()
	entry := c.index[key]
	c.mu.RUnlock()

	return &domain.BuildResult{
		Target:    entry.Target,
		Success:   true,
		CacheHit:  true,
		Artifacts: entry.Artifacts,
	}, true
}

// Store records a successful result under key and persists the index.
// Unsuccessful results are not cached.
func (c *Cache) Store(key string, result *domain.BuildResult) error {
	if result == nil || !result.Success {
		return nil
	}

	marker, err := json.Marshal(domain.CacheMarker{
		Target:   result.Target,
		Success:  true,
		Duration: result.Duration.Seconds(),
	})
	if err != nil {
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	//nolint:gosec // Path is built from the cache dir and a hex digest
	if err := os.WriteFile(c.markerPath(key), marker, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "key", key)
	}

	c.mu.Lock()
	c.index[key] = domain.CacheEntry{
		Target:    result.Target,
		Success:   true,
		Timestamp: time.Now(),
		Duration:  result.Duration,
		Artifacts: result.Artifacts,
	}
	c.mu.Unlock()

	return c.persist()
}

// Stats reports the number of indexed entries and the bytes on disk.
func (c *Cache) Stats() (domain.CacheStats, error) {
	c.mu.RLock()
	entries := len(c.index)
	c.mu.RUnlock()

	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		return domain.CacheStats{}, zerr.Wrap(err, domain.ErrCacheReadFailed.Error())
	}

	var total int64
	for _, e := range dirEntries {
		info, err := e.Info()
		if err != nil || info.IsDir() {
			continue
		}
		total += info.Size()
	}

	return domain.CacheStats{Entries: entries, TotalBytes: total}, nil
}

// Clear removes every marker and the index.
func (c *Cache) Clear() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	c.index = make(map[string]domain.CacheEntry)
	c.mu.Unlock()

	if err := os.RemoveAll(c.dir); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "dir", c.dir)
	}
	if err := os.MkdirAll(c.dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheCreateFailed.Error()), "dir", c.dir)
	}
	return nil
}
