// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package doc2md

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// jsonAPI serializes cache entries and hashes configurations. ConfigStd
// sorts map keys, which makes the configuration hash canonical: the same
// options in any insertion order hash identically.
var jsonAPI = sonic.ConfigStd

// hashChunkSize is the read size used when hashing file content.
const hashChunkSize = 64 * 1024

// Cache is a file-based store of conversion results, keyed by the content
// hash of the input file combined with a hash of the configuration. One
// JSON file per entry; the directory listing is the index.
//
// Every fault degrades to a miss, never to a caller-visible error. There is
// no cross-process locking: two concurrent writers for the same key race
// benignly (last write wins).
type Cache struct {
	dir     string
	maxAge  time.Duration
	enabled bool
	logger  *zap.Logger
}

// NewCache creates a cache rooted at dir. A disabled cache never touches
// the filesystem and every method returns the miss/zero case.
func NewCache(dir string, maxAge time.Duration, enabled bool, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cache{dir: dir, maxAge: maxAge, enabled: enabled, logger: logger}
	if enabled {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Warn("cache directory unavailable, caching disabled",
				zap.String("dir", dir), zap.Error(err))
			c.enabled = false
		}
	}
	return c
}

// Enabled reports whether the cache is active.
func (c *Cache) Enabled() bool { return c.enabled }

// Get returns the cached result for (file content, configuration), or nil
// on a miss. Expired entries are treated as absent but are not removed;
// reclamation is CleanupExpired's job.
func (c *Cache) Get(path string, cfg Config) *Result {
	if !c.enabled {
		return nil
	}

	key, err := c.key(path, cfg)
	if err != nil {
		c.logger.Debug("cache key derivation failed", zap.Error(err))
		return nil
	}

	entryPath := filepath.Join(c.dir, key+".json")
	info, err := os.Stat(entryPath)
	if err != nil {
		return nil
	}
	if c.expired(info.ModTime()) {
		c.logger.Debug("cache entry expired", zap.String("key", key))
		return nil
	}

	data, err := os.ReadFile(entryPath)
	if err != nil {
		c.logger.Debug("cache read failed", zap.String("key", key), zap.Error(err))
		return nil
	}

	var result Result
	if err := jsonAPI.Unmarshal(data, &result); err != nil {
		c.logger.Debug("cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil
	}

	c.logger.Debug("cache hit", zap.String("path", path), zap.String("key", key))
	return &result
}

// Set stores a result. Best-effort: failures are logged, never returned.
func (c *Cache) Set(path string, cfg Config, result *Result) {
	if !c.enabled || result == nil {
		return
	}

	key, err := c.key(path, cfg)
	if err != nil {
		c.logger.Debug("cache key derivation failed", zap.Error(err))
		return
	}

	data, err := jsonAPI.MarshalIndent(result, "", "  ")
	if err != nil {
		c.logger.Warn("cache serialization failed", zap.String("key", key), zap.Error(err))
		return
	}

	entryPath := filepath.Join(c.dir, key+".json")
	if err := os.WriteFile(entryPath, data, 0o644); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		return
	}

	c.logger.Debug("cached result", zap.String("path", path), zap.String("key", key))
}

// Clear removes every entry unconditionally and returns the count removed.
func (c *Cache) Clear() int {
	if !c.enabled {
		return 0
	}

	count := 0
	for _, entry := range c.entries() {
		if err := os.Remove(entry); err != nil {
			c.logger.Warn("cache entry removal failed", zap.String("entry", entry), zap.Error(err))
			continue
		}
		count++
	}
	return count
}

// CleanupExpired physically removes entries past their maximum age and
// returns the count removed.
func (c *Cache) CleanupExpired() int {
	if !c.enabled {
		return 0
	}

	count := 0
	for _, entry := range c.entries() {
		info, err := os.Stat(entry)
		if err != nil {
			continue
		}
		if !c.expired(info.ModTime()) {
			continue
		}
		if err := os.Remove(entry); err != nil {
			c.logger.Warn("cache entry removal failed", zap.String("entry", entry), zap.Error(err))
			continue
		}
		count++
	}
	return count
}

// CacheStats summarizes the cache contents.
type CacheStats struct {
	Enabled    bool
	Dir        string
	NumEntries int
	TotalBytes int64
	MaxAge     time.Duration
}

// Stats returns cache statistics.
func (c *Cache) Stats() CacheStats {
	stats := CacheStats{Enabled: c.enabled, Dir: c.dir, MaxAge: c.maxAge}
	if !c.enabled {
		return stats
	}
	for _, entry := range c.entries() {
		info, err := os.Stat(entry)
		if err != nil {
			continue
		}
		stats.NumEntries++
		stats.TotalBytes += info.Size()
	}
	return stats
}

func (c *Cache) entries() []string {
	matches, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return nil
	}
	return matches
}

func (c *Cache) expired(mtime time.Time) bool {
	return time.Since(mtime) > c.maxAge
}

// key derives the cache key: the content hash of the file joined with a
// truncated hash of the canonical configuration serialization. The file is
// hashed in full, streamed in fixed-size chunks; size or mtime shortcuts
// would admit false hits on files that merely look alike.
func (c *Cache) key(path string, cfg Config) (string, error) {
	fileHash, err := hashFile(path)
	if err != nil {
		return "", err
	}
	cfgHash, err := hashConfig(cfg)
	if err != nil {
		return "", err
	}
	return fileHash + "_" + cfgHash, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for hashing: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.CopyBuffer(h, f, make([]byte, hashChunkSize)); err != nil {
		return "", fmt.Errorf("hash content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func hashConfig(cfg Config) (string, error) {
	data, err := jsonAPI.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("serialize config: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16], nil
}
