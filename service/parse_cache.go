package service

import (
	"io"
	"os"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// parseCacheEntry pairs a parsed document with the source file's
// modification time, so stale entries are detected on lookup.
type parseCacheEntry struct {
	ModTime int64        `msgpack:"mod_time"`
	Doc     *CFGDocument `msgpack:"doc"`
}

// ParseCache caches parsed CFG documents keyed by file path. Entries are
// invalidated when the file's modification time changes. The cache can be
// persisted to disk between runs.
type ParseCache struct {
	mu      sync.RWMutex
	entries map[string]parseCacheEntry
}

// NewParseCache creates an empty parse cache
func NewParseCache() *ParseCache {
	return &ParseCache{
		entries: make(map[string]parseCacheEntry),
	}
}

// Get returns the cached document for the path if the file has not changed
// since it was cached
func (c *ParseCache) Get(path string) (*CFGDocument, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}

	c.mu.RLock()
	entry, ok := c.entries[path]
	c.mu.RUnlock()

	if !ok || entry.ModTime != info.ModTime().UnixNano() {
		return nil, false
	}
	return entry.Doc, true
}

// Put stores a parsed document for the path
func (c *ParseCache) Put(path string, doc *CFGDocument) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}

	c.mu.Lock()
	c.entries[path] = parseCacheEntry{
		ModTime: info.ModTime().UnixNano(),
		Doc:     doc,
	}
	c.mu.Unlock()
}

// Len returns the number of cached documents
func (c *ParseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all entries
func (c *ParseCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]parseCacheEntry)
	c.mu.Unlock()
}

// Save persists the cache to the given writer
func (c *ParseCache) Save(w io.Writer) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return msgpack.NewEncoder(w).Encode(c.entries)
}

// Load restores the cache from the given reader, replacing the current
// contents
func (c *ParseCache) Load(r io.Reader) error {
	entries := make(map[string]parseCacheEntry)
	if err := msgpack.NewDecoder(r).Decode(&entries); err != nil {
		return err
	}

	c.mu.Lock()
	c.entries = entries
	c.mu.Unlock()
	return nil
}

// SaveFile persists the cache to a file
func (c *ParseCache) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return c.Save(f)
}

// LoadFile restores the cache from a file if it exists
func (c *ParseCache) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	return c.Load(f)
}
