package ntv2

import (
	"container/list"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// GridCache manages loaded grid shift files with LRU eviction.
//
// Applications that transform coordinates across many regions (e.g. a whole
// country split over several national grids) can keep the hot files resident
// and let cold ones fall out when the memory budget is exceeded. Entries are
// keyed by the xxHash64 of the cleaned path, so equivalent spellings of the
// same path share an entry.
//
// The cache itself is safe for concurrent use, but the GridShiftFile values
// it hands out keep their single-goroutine contract.
//
// Example:
//
//	cache := ntv2.NewGridCache(512 * 1024 * 1024)
//	gsf, err := cache.Get("grids/NTv2_0.gsb", func() (*ntv2.GridShiftFile, error) {
//	    return ntv2.Open("grids/NTv2_0.gsb")
//	})
type GridCache struct {
	maxMemory  int64
	usedMemory int64
	grids      map[uint64]*cacheEntry
	lru        *list.List // most recent at front
	mu         sync.RWMutex
}

type cacheEntry struct {
	key          uint64
	file         *GridShiftFile
	memorySize   int64
	element      *list.Element
	lastAccessed time.Time
	accessCount  int
}

// NewGridCache creates a cache with an approximate memory limit in bytes.
// Set maxMemoryBytes to 0 for an unbounded cache.
func NewGridCache(maxMemoryBytes int64) *GridCache {
	return &GridCache{
		maxMemory: maxMemoryBytes,
		grids:     make(map[uint64]*cacheEntry),
		lru:       list.New(),
	}
}

// cacheKey hashes a cleaned path to the fixed-size cache key.
func cacheKey(path string) uint64 {
	return xxhash.Sum64String(filepath.Clean(path))
}

// Get returns the cached file for path, or calls loader on a miss and caches
// the result. Evicted files are closed by the cache.
func (c *GridCache) Get(path string, loader func() (*GridShiftFile, error)) (*GridShiftFile, error) {
	key := cacheKey(path)

	c.mu.RLock()
	entry, ok := c.grids[key]
	c.mu.RUnlock()
	if ok {
		c.mu.Lock()
		entry.lastAccessed = time.Now()
		entry.accessCount++
		c.lru.MoveToFront(entry.element)
		c.mu.Unlock()
		return entry.file, nil
	}

	file, err := loader()
	if err != nil {
		return nil, fmt.Errorf("load grid shift file: %w", err)
	}

	if err := c.add(key, file); err != nil {
		// Too large to cache; hand it to the caller uncached.
		return file, nil
	}
	return file, nil
}

// Add caches an already-loaded file under its path.
func (c *GridCache) Add(path string, file *GridShiftFile) error {
	return c.add(cacheKey(path), file)
}

func (c *GridCache) add(key uint64, file *GridShiftFile) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.grids[key]; ok {
		entry.file = file
		entry.lastAccessed = time.Now()
		entry.accessCount++
		c.lru.MoveToFront(entry.element)
		return nil
	}

	memSize := estimateGridMemory(file)
	if c.maxMemory > 0 && memSize > c.maxMemory {
		return fmt.Errorf("grid file too large for cache (%d bytes > %d bytes max)", memSize, c.maxMemory)
	}

	if c.maxMemory > 0 {
		for c.usedMemory+memSize > c.maxMemory && c.lru.Len() > 0 {
			c.evictLRU()
		}
	}

	entry := &cacheEntry{
		key:          key,
		file:         file,
		memorySize:   memSize,
		lastAccessed: time.Now(),
		accessCount:  1,
	}
	entry.element = c.lru.PushFront(entry)
	c.grids[key] = entry
	c.usedMemory += memSize

	return nil
}

// evictLRU removes and closes the least recently used entry.
// Must be called with c.mu held.
func (c *GridCache) evictLRU() {
	elem := c.lru.Back()
	if elem == nil {
		return
	}
	entry := elem.Value.(*cacheEntry)
	c.lru.Remove(elem)
	delete(c.grids, entry.key)
	c.usedMemory -= entry.memorySize
	_ = entry.file.Close()
}

// Remove removes and closes the entry for path, if cached.
func (c *GridCache) Remove(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.grids[cacheKey(path)]; ok {
		c.lru.Remove(entry.element)
		delete(c.grids, entry.key)
		c.usedMemory -= entry.memorySize
		_ = entry.file.Close()
	}
}

// Clear removes and closes every cached file.
func (c *GridCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, entry := range c.grids {
		_ = entry.file.Close()
	}
	c.grids = make(map[uint64]*cacheEntry)
	c.lru.Init()
	c.usedMemory = 0
}

// Stats returns cache statistics.
func (c *GridCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	totalAccess := 0
	for _, entry := range c.grids {
		totalAccess += entry.accessCount
	}

	return CacheStats{
		FileCount:   len(c.grids),
		UsedMemory:  c.usedMemory,
		MaxMemory:   c.maxMemory,
		TotalAccess: totalAccess,
	}
}

// CacheStats holds cache performance metrics.
type CacheStats struct {
	FileCount   int   // Number of grid files currently cached
	UsedMemory  int64 // Estimated memory usage in bytes
	MaxMemory   int64 // Memory limit in bytes, 0 for unbounded
	TotalAccess int   // Total accesses across cached files
}

// estimateGridMemory approximates a loaded file's footprint: a fixed
// overhead per subgrid plus 16 bytes per lattice node (shift and accuracy
// planes). Lazily loaded files are charged as if fully materialized, since
// they may grow to that size.
func estimateGridMemory(file *GridShiftFile) int64 {
	if file == nil {
		return 0
	}

	size := int64(1024)
	var walk func(info SubGridInfo)
	walk = func(info SubGridInfo) {
		size += 512 + int64(info.NodeCount)*16
		for _, child := range info.Children {
			walk(child)
		}
	}
	for _, root := range file.SubGrids() {
		walk(root)
	}

	return size
}
