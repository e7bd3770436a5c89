// Package translation provides translation lookups for selected text,
// fronted by a bounded in-memory cache so repeated selections of the same
// text do not hit the network twice in a session.
package translation

import (
	"container/list"
	"strings"
	"sync"
	"time"
)

// DefaultCacheCapacity bounds the number of cached translations.
const DefaultCacheCapacity = 100

// Entry is a cached translation result. Entries live for the process
// lifetime only and are never persisted; the cache is a performance
// optimization, not a source of truth.
type Entry struct {
	Key          string    `json:"key"`
	Translation  string    `json:"translation"`
	Alternatives []string  `json:"alternatives,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Cache is a capacity-bounded least-recently-used translation cache keyed
// by normalized source text. Safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = most recently used
	entries  map[string]*list.Element
}

// NewCache creates a cache holding at most capacity entries. A capacity of
// zero or less falls back to DefaultCacheCapacity.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
	}
}

// normalizeKey lower-cases and trims the source text.
func normalizeKey(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Get returns the cached entry for the given source text, promoting it to
// most-recently-used position.
func (c *Cache) Get(text string) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[normalizeKey(text)]
	if !ok {
		return nil, false
	}

	c.order.MoveToFront(elem)
	entry := elem.Value.(*Entry)
	return entry, true
}

// Set stores a translation for the given source text. An existing key is
// refreshed in place and promoted; a new key at capacity evicts the
// least-recently-used entry.
func (c *Cache) Set(text, translation string, alternatives []string) {
	key := normalizeKey(text)
	if key == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*Entry)
		entry.Translation = translation
		entry.Alternatives = alternatives
		entry.Timestamp = time.Now()
		c.order.MoveToFront(elem)
		return
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*Entry).Key)
		}
	}

	entry := &Entry{
		Key:          key,
		Translation:  translation,
		Alternatives: alternatives,
		Timestamp:    time.Now(),
	}
	c.entries[key] = c.order.PushFront(entry)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear drops all entries. Safe to call at any point; the cache carries no
// durable state.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.entries = make(map[string]*list.Element, c.capacity)
}
