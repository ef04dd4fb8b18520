package cache

import (
	"container/list"
	"sync"
	"time"
)

type lruEntry[K comparable, V any] struct {
	key      K
	value    V
	lastUsed time.Time
}

// Option configures an LRU.
type Option[K comparable, V any] func(*LRU[K, V])

// WithIdleTimeout expires entries not read or written for d. Zero disables expiry.
func WithIdleTimeout[K comparable, V any](d time.Duration) Option[K, V] {
	return func(c *LRU[K, V]) { c.idleTimeout = d }
}

// WithEvictCallback registers fn, called with the lock held for every entry
// leaving the cache, whatever the reason.
func WithEvictCallback[K comparable, V any](fn func(key K, value V)) Option[K, V] {
	return func(c *LRU[K, V]) { c.onEvict = fn }
}

// WithClock replaces time.Now, for tests.
func WithClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *LRU[K, V]) {
		if now != nil {
			c.now = now
		}
	}
}

// LRU is a thread-safe least-recently-used cache.
type LRU[K comparable, V any] struct {
	capacity    int
	idleTimeout time.Duration
	now         func() time.Time
	onEvict     func(key K, value V)

	mu       sync.Mutex
	items    map[K]*list.Element
	eviction *list.List
}

// NewLRU creates a cache holding at most capacity entries. It panics when
// capacity is not positive.
func NewLRU[K comparable, V any](capacity int, opts ...Option[K, V]) *LRU[K, V] {
	if capacity <= 0 {
		panic("cache: LRU capacity must be positive")
	}
	c := &LRU[K, V]{
		capacity: capacity,
		now:      time.Now,
		items:    make(map[K]*list.Element),
		eviction: list.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value of key and marks it as recently used. Expired
// entries are evicted and reported as missing.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}

	entry := elem.Value.(*lruEntry[K, V])
	now := c.now()
	if c.expired(entry, now) {
		c.removeElement(elem)
		return zero, false
	}

	entry.lastUsed = now
	c.eviction.MoveToFront(elem)
	return entry.value, true
}

// Put adds or replaces the value of key. It returns the previous value and
// whether one existed.
func (c *LRU[K, V]) Put(key K, value V) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*lruEntry[K, V])
		old := entry.value
		entry.value = value
		entry.lastUsed = now
		c.eviction.MoveToFront(elem)
		return old, true
	}

	c.items[key] = c.eviction.PushFront(&lruEntry[K, V]{key: key, value: value, lastUsed: now})
	for c.eviction.Len() > c.capacity {
		c.removeElement(c.eviction.Back())
	}

	var zero V
	return zero, false
}

// Remove deletes key and returns its value.
func (c *LRU[K, V]) Remove(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
		return elem.Value.(*lruEntry[K, V]).value, true
	}

	var zero V
	return zero, false
}

// Len counts entries, including expired ones not yet purged.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eviction.Len()
}

// Purge evicts every expired entry and returns how many were removed.
func (c *LRU[K, V]) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.idleTimeout <= 0 {
		return 0
	}

	now := c.now()
	n := 0
	// Oldest entries sit at the back; stop at the first live one.
	for elem := c.eviction.Back(); elem != nil; {
		entry := elem.Value.(*lruEntry[K, V])
		if !c.expired(entry, now) {
			break
		}
		prev := elem.Prev()
		c.removeElement(elem)
		n++
		elem = prev
	}
	return n
}

// Clear removes every entry.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.onEvict != nil {
		for _, elem := range c.items {
			entry := elem.Value.(*lruEntry[K, V])
			c.onEvict(entry.key, entry.value)
		}
	}
	c.items = make(map[K]*list.Element)
	c.eviction.Init()
}

// Must be called with lock held.
func (c *LRU[K, V]) expired(entry *lruEntry[K, V], now time.Time) bool {
	return c.idleTimeout > 0 && now.Sub(entry.lastUsed) > c.idleTimeout
}

// Must be called with lock held.
func (c *LRU[K, V]) removeElement(elem *list.Element) {
	c.eviction.Remove(elem)
	entry := elem.Value.(*lruEntry[K, V])
	delete(c.items, entry.key)

	if c.onEvict != nil {
		c.onEvict(entry.key, entry.value)
	}
}
