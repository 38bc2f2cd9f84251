// Package memcache provides the bounded in-memory store for decoded images.
package memcache

import (
	"container/list"
	"image"
	"sync"
)

// Cache is a thread-safe LRU cache of decoded images, bounded by a total
// byte budget rather than an entry count.
//
// When an insertion would exceed the budget, the least recently accessed
// entries are evicted until it fits. Both Get and Put mark an entry as
// recently used. A miss is a normal result, never an error.
type Cache struct {
	mu     sync.Mutex
	budget int64
	used   int64
	items  map[string]*list.Element
	order  *list.List // Front = most recent, Back = least recent
}

// entry holds one cached image with its resident cost.
type entry struct {
	key  string
	img  image.Image
	cost int64
}

// Cost estimates the resident size in bytes of a decoded image.
// Assumes 4 bytes per pixel, which is what the decoder produces for
// anything it had to rescale into an RGBA buffer.
func Cost(img image.Image) int64 {
	if img == nil {
		return 0
	}
	b := img.Bounds()
	return int64(b.Dx()) * int64(b.Dy()) * 4
}

// New creates a cache with the given byte budget.
// Budget must be positive; if zero or negative, a budget of 1 MiB is used.
func New(budget int64) *Cache {
	if budget <= 0 {
		budget = 1 << 20
	}
	return &Cache{
		budget: budget,
		items:  make(map[string]*list.Element),
		order:  list.New(),
	}
}

// Get retrieves a decoded image by identifier and marks it as recently used.
func (c *Cache) Get(key string) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		return elem.Value.(*entry).img, true
	}
	return nil, false
}

// Put adds or updates a decoded image in the cache, evicting least recently
// used entries until the budget is respected. An image whose cost alone
// exceeds the budget is not cached.
func (c *Cache) Put(key string, img image.Image) {
	if key == "" || img == nil {
		return
	}
	cost := Cost(img)

	c.mu.Lock()
	defer c.mu.Unlock()

	if cost > c.budget {
		// Caching it would immediately evict everything else for a single
		// entry that still busts the budget.
		c.removeLocked(key)
		return
	}

	if elem, ok := c.items[key]; ok {
		old := elem.Value.(*entry)
		c.used += cost - old.cost
		old.img = img
		old.cost = cost
		c.order.MoveToFront(elem)
	} else {
		elem := c.order.PushFront(&entry{key: key, img: img, cost: cost})
		c.items[key] = elem
		c.used += cost
	}

	c.evictToBudgetLocked()
}

// Remove deletes an identifier from the cache. No-op if absent.
func (c *Cache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(key)
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
	c.used = 0
}

// Resize changes the byte budget, evicting as needed to honor the new one.
func (c *Cache) Resize(budget int64) {
	if budget <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.budget = budget
	c.evictToBudgetLocked()
}

// Len returns the number of resident entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Used returns the total resident cost in bytes.
func (c *Cache) Used() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.used
}

func (c *Cache) removeLocked(key string) {
	if elem, ok := c.items[key]; ok {
		c.used -= elem.Value.(*entry).cost
		c.order.Remove(elem)
		delete(c.items, key)
	}
}

func (c *Cache) evictToBudgetLocked() {
	for c.used > c.budget {
		oldest := c.order.Back()
		if oldest == nil {
			return
		}
		e := oldest.Value.(*entry)
		c.used -= e.cost
		c.order.Remove(oldest)
		delete(c.items, e.key)
	}
}
