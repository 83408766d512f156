package wordpress

import (
	"container/list"
	"sync"
	"time"
)

const responseCacheMaxEntries = 256

// maxStaleness is the longest window any caller may declare. Entries older
// than this can never satisfy a read and are pruned on insert.
const maxStaleness = time.Hour

// responseCache is an LRU of raw response bodies keyed by request URL.
// Validity is decided per read: each get declares the maximum acceptable
// age, so the same entry can be fresh for one caller and stale for another.
type responseCache struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List
	maxEntries int
}

type responseCacheEntry struct {
	key       string
	body      []byte
	fetchedAt time.Time
}

func newResponseCache(maxEntries int) *responseCache {
	if maxEntries <= 0 {
		return nil
	}
	return &responseCache{
		entries:    make(map[string]*list.Element, maxEntries),
		order:      list.New(),
		maxEntries: maxEntries,
	}
}

func (c *responseCache) get(key string, maxAge time.Duration, now time.Time) ([]byte, bool) {
	if c == nil || key == "" || maxAge <= 0 {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	entry, ok := elem.Value.(*responseCacheEntry)
	if !ok {
		return nil, false
	}
	if now.Sub(entry.fetchedAt) > maxAge {
		return nil, false
	}

	c.order.MoveToFront(elem)
	return entry.body, true
}

func (c *responseCache) set(key string, body []byte, now time.Time) {
	if c == nil || key == "" || len(body) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		entry, castOk := elem.Value.(*responseCacheEntry)
		if !castOk {
			return
		}
		entry.body = body
		entry.fetchedAt = now
		c.order.MoveToFront(elem)
		return
	}

	elem := c.order.PushFront(&responseCacheEntry{
		key:       key,
		body:      body,
		fetchedAt: now,
	})
	c.entries[key] = elem

	c.evictUnusableLocked(now)
	c.enforceSizeLimitLocked()
}

// evictUnusableLocked drops entries too old for even the longest window.
func (c *responseCache) evictUnusableLocked(now time.Time) {
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		if entry, ok := elem.Value.(*responseCacheEntry); ok && now.Sub(entry.fetchedAt) > maxStaleness {
			c.removeElement(elem)
		}
		elem = prev
	}
}

func (c *responseCache) enforceSizeLimitLocked() {
	for len(c.entries) > c.maxEntries {
		elem := c.order.Back()
		if elem == nil {
			return
		}
		c.removeElement(elem)
	}
}

func (c *responseCache) removeElement(elem *list.Element) {
	entry, ok := elem.Value.(*responseCacheEntry)
	if !ok {
		return
	}
	delete(c.entries, entry.key)
	c.order.Remove(elem)
}
