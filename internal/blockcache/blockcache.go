// Package blockcache provides a byte-budgeted LRU cache for immutable file
// blocks. Product files never change, so entries are never invalidated, only
// evicted.
package blockcache

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// Key identifies one block of one file.
type Key struct {
	Name  string
	Block uint32
}

// LRU is a concurrency-safe LRU cache with a capacity in bytes.
type LRU struct {
	mu       sync.Mutex
	capacity int64
	size     int64
	items    map[Key]*list.Element
	evict    *list.List

	hits   atomic.Int64
	misses atomic.Int64
}

type entry struct {
	key   Key
	value []byte
}

// NewLRU creates a cache holding at most capacity bytes of block data.
func NewLRU(capacity int64) *LRU {
	return &LRU{
		capacity: capacity,
		items:    make(map[Key]*list.Element),
		evict:    list.New(),
	}
}

// Get returns a cached block. The returned slice is shared and must be
// treated as read-only.
func (c *LRU) Get(key Key) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.evict.MoveToFront(el)
		return el.Value.(*entry).value, true
	}
	c.misses.Add(1)
	return nil, false
}

// Set caches a block. The caller must not modify b afterwards. Blocks larger
// than the whole capacity are not admitted.
func (c *LRU) Set(key Key, b []byte) {
	if int64(len(b)) > c.capacity {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		ent := el.Value.(*entry)
		c.size += int64(len(b)) - int64(len(ent.value))
		ent.value = b
		c.evict.MoveToFront(el)
	} else {
		el := c.evict.PushFront(&entry{key: key, value: b})
		c.items[key] = el
		c.size += int64(len(b))
	}

	for c.size > c.capacity {
		oldest := c.evict.Back()
		if oldest == nil {
			break
		}
		ent := oldest.Value.(*entry)
		c.evict.Remove(oldest)
		delete(c.items, ent.key)
		c.size -= int64(len(ent.value))
	}
}

// Stats returns cumulative hit and miss counts.
func (c *LRU) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Len returns the number of cached blocks.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Size returns the cached bytes.
func (c *LRU) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}
