// Package disk implements the per-(area, category) result cache as one JSON
// artifact per pair under a cache directory.
package disk

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/kpavlov42/placeradar/internal/catalog"
	"github.com/kpavlov42/placeradar/internal/domain"
)

const DefaultTTL = 24 * time.Hour

// Entry is one cached result set with its write timestamp. Entries are
// overwritten on every successful fetch and never deleted.
type Entry struct {
	WrittenAt  time.Time         `json:"written_at"`
	Businesses []domain.Business `json:"businesses"`
}

type Cache struct {
	dir    string
	ttl    time.Duration
	logger *zap.Logger

	now func() time.Time
}

type Config struct {
	Dir string
	TTL time.Duration
}

func New(cfg Config, logger *zap.Logger) (*Cache, error) {
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	return &Cache{
		dir:    cfg.Dir,
		ttl:    cfg.TTL,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Get returns the entry for the pair, or a miss. A missing, unreadable or
// corrupt artifact is a miss, never an error.
func (c *Cache) Get(areaKey string, category catalog.Category) (*Entry, bool) {
	path := c.path(areaKey, category)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("cache read failed, treating as miss",
				zap.Error(err),
				zap.String("category", string(category)),
			)
		}
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Warn("corrupt cache entry, treating as miss",
			zap.Error(err),
			zap.String("path", path),
		)
		return nil, false
	}

	return &entry, true
}

// Put overwrites the entry for the pair. The write goes through a temp file
// and rename so readers never observe a partial artifact.
func (c *Cache) Put(areaKey string, category catalog.Category, businesses []domain.Business) error {
	entry := Entry{
		WrittenAt:  c.now(),
		Businesses: businesses,
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	path := c.path(areaKey, category)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename cache entry: %w", err)
	}

	return nil
}

// Fresh reports whether the entry is inside the freshness window. A stale
// entry is treated identically to a miss by callers.
func (c *Cache) Fresh(entry *Entry) bool {
	if entry == nil {
		return false
	}
	return c.now().Sub(entry.WrittenAt) < c.ttl
}

func (c *Cache) path(areaKey string, category catalog.Category) string {
	// Area keys are provider identifiers and not filename-safe; hash them.
	sum := sha256.Sum256([]byte(areaKey))
	name := fmt.Sprintf("%x_%s.json", sum[:8], category)
	return filepath.Join(c.dir, name)
}
