package marketdata

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value   V
	expires time.Time
}

// ttlCache is a mutex-guarded map whose entries expire after a fixed TTL.
type ttlCache[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry[V]
	now     func() time.Time
}

func newTTLCache[V any](ttl time.Duration, now func() time.Time) *ttlCache[V] {
	return &ttlCache[V]{
		ttl:     ttl,
		entries: make(map[string]entry[V]),
		now:     now,
	}
}

func (c *ttlCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expires) {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *ttlCache[V]) set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{value: value, expires: c.now().Add(c.ttl)}
}

// purge drops expired entries and returns how many were removed.
func (c *ttlCache[V]) purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}
