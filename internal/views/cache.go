package views

import (
	"log/slog"
	"sync"

	"stagehand/internal/logging"
)

// Kind names one of the cached per-song views.
type Kind string

const (
	KindDetail    Kind = "detail"
	KindChecklist Kind = "checklist"
	KindHistory   Kind = "history"
)

// Kinds returns every cached view kind.
func Kinds() []Kind {
	return []Kind{KindDetail, KindChecklist, KindHistory}
}

type cacheKey struct {
	songID int64
	kind   Kind
}

// Cache provides thread-safe storage for rendered song views.
type Cache struct {
	logger  *slog.Logger
	mu      sync.RWMutex
	entries map[cacheKey]any
}

// NewCache creates an empty view cache.
func NewCache(logger *slog.Logger) *Cache {
	return &Cache{
		logger:  logging.NewComponentLogger(logger, "views"),
		entries: make(map[cacheKey]any),
	}
}

// Lookup returns the cached view for the song if present.
func (c *Cache) Lookup(songID int64, kind Kind) (any, bool) {
	if songID <= 0 {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	value, found := c.entries[cacheKey{songID: songID, kind: kind}]
	return value, found
}

// Store caches a rendered view for the song.
func (c *Cache) Store(songID int64, kind Kind, value any) {
	if songID <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{songID: songID, kind: kind}] = value
}

// Invalidate drops the named views for the song. With no kinds given, every
// view for the song is dropped.
func (c *Cache) Invalidate(songID int64, kinds ...Kind) {
	if songID <= 0 {
		return
	}
	if len(kinds) == 0 {
		kinds = Kinds()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, kind := range kinds {
		delete(c.entries, cacheKey{songID: songID, kind: kind})
	}

	c.logger.Debug("invalidated song views",
		logging.Int64(logging.FieldSongID, songID),
		logging.Int("kinds", len(kinds)))
}

// InvalidateAll empties the cache.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey]any)
}

// Len reports the number of cached views.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
