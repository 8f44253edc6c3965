package edsm

import (
	"container/list"
	"sync"
)

// lruCache is a bounded, access-order cache of resolved coordinates.
// Keys are exact system-name strings (case-sensitive, as the journal
// reports them). Guarded by a mutex so the client stays safe if a host
// ever drives it from more than one goroutine.
type lruCache struct {
	mu    sync.Mutex
	max   int
	ll    *list.List
	items map[string]*list.Element
}

type lruEntry struct {
	key    string
	coords Coords
}

func newLRUCache(max int) *lruCache {
	if max <= 0 {
		max = 1
	}
	return &lruCache{
		max:   max,
		ll:    list.New(),
		items: make(map[string]*list.Element, max),
	}
}

func (c *lruCache) get(key string) (Coords, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return Coords{}, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*lruEntry).coords, true
}

func (c *lruCache) put(key string, coords Coords) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		el.Value.(*lruEntry).coords = coords
		c.ll.MoveToFront(el)
		return
	}
	c.items[key] = c.ll.PushFront(&lruEntry{key: key, coords: coords})
	if c.ll.Len() > c.max {
		oldest := c.ll.Back()
		if oldest != nil {
			c.ll.Remove(oldest)
			delete(c.items, oldest.Value.(*lruEntry).key)
		}
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
