package colors

import "sync"

// Cache remembers the color computed for an image URL for as long as its
// owner lives. The first color stored for a URL wins; there is no eviction.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Color
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]Color)}
}

func (c *Cache) Get(url string) (Color, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	color, ok := c.entries[url]
	return color, ok
}

// Put stores color for url unless one is already there, and returns the
// color that is cached afterwards.
func (c *Cache) Put(url string, color Color) Color {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[url]; ok {
		return existing
	}
	c.entries[url] = color
	return color
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
