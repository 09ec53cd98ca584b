// Package cache provides the bounded response cache used by the
// non-streaming path. Entries are keyed by rendered prompt and
// temperature, so identical questions asked the same way hit without a
// model call.
package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCapacity bounds the cache when no capacity is configured.
const DefaultCapacity = 100

// Cache is a bounded LRU of generated responses, safe for concurrent use.
type Cache struct {
	lru *lru.Cache[string, string]
}

// New creates a cache holding at most capacity responses. Non-positive
// capacities fall back to DefaultCapacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	// lru.New only fails for non-positive sizes
	c, _ := lru.New[string, string](capacity)
	return &Cache{lru: c}
}

// Key derives the cache key for a generation request.
func Key(prompt string, temperature float64) string {
	return fmt.Sprintf("%.2f|%s", temperature, prompt)
}

// Get returns the cached response for key, if present, marking it
// recently used.
func (c *Cache) Get(key string) (string, bool) {
	return c.lru.Get(key)
}

// Add stores a response under key, evicting the least recently used entry
// when full.
func (c *Cache) Add(key, value string) {
	c.lru.Add(key, value)
}

// Len returns the number of cached responses.
func (c *Cache) Len() int {
	return c.lru.Len()
}
