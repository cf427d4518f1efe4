// Package dedup holds the set of lead identities already persisted.
package dedup

import (
	"strings"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/metrics"
	"github.com/sells-group/leadscout/internal/model"
)

// ErrAlreadyWarm is returned when WarmUp is called a second time.
var ErrAlreadyWarm = eris.New("dedup cache already warmed up")

// Cache is a set of dedup keys. Keys are never evicted. Safe for concurrent
// use.
type Cache struct {
	mu     sync.Mutex
	keys   map[string]struct{}
	warmed bool
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{keys: make(map[string]struct{})}
}

// Contains reports whether the (phone, name) identity has been seen.
func (c *Cache) Contains(phone, name string) bool {
	key := model.DedupKey(phone, name)
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.keys[key]
	return ok
}

// Add records the (phone, name) identity.
func (c *Cache) Add(phone, name string) {
	key := model.DedupKey(phone, name)
	c.mu.Lock()
	c.keys[key] = struct{}{}
	n := len(c.keys)
	c.mu.Unlock()
	metrics.DedupCacheSize.Set(float64(n))
}

// WarmUp seeds the cache from previously stored leads and returns how many
// identities were loaded. Leads with a blank phone or name are skipped. It
// may run only once.
func (c *Cache) WarmUp(leads []model.Lead) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.warmed {
		return 0, ErrAlreadyWarm
	}
	c.warmed = true

	loaded := 0
	for _, l := range leads {
		if strings.TrimSpace(l.Phone) == "" || strings.TrimSpace(l.Name) == "" {
			continue
		}
		c.keys[l.Key()] = struct{}{}
		loaded++
	}
	metrics.DedupCacheSize.Set(float64(len(c.keys)))
	return loaded, nil
}

// Len returns the number of distinct identities held.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.keys)
}
