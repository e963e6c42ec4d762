package utils

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheItem struct {
	data      any
	expiresAt time.Time
}

// PageCache is a small TTL'd LRU for rendered page data.
type PageCache struct {
	lru *lru.Cache[string, cacheItem]
}

var (
	pageCache     *PageCache
	pageCacheOnce sync.Once
)

// GetCache returns the process-wide page cache (500 entries).
func GetCache() *PageCache {
	pageCacheOnce.Do(func() {
		pageCache = NewPageCache(500)
	})
	return pageCache
}

// NewPageCache panics only on a non-positive size.
func NewPageCache(size int) *PageCache {
	l, err := lru.New[string, cacheItem](size)
	if err != nil {
		panic(fmt.Sprintf("page cache: %v", err))
	}
	return &PageCache{lru: l}
}

// ObjectKey is the cache key for a content object's detail page.
func ObjectKey(contentType string, pk uint) string {
	return fmt.Sprintf("object:%s:%d", contentType, pk)
}

func (c *PageCache) Set(key string, data any, ttl time.Duration) {
	c.lru.Add(key, cacheItem{data: data, expiresAt: now().Add(ttl)})
}

// Get returns nil for missing or expired entries.
func (c *PageCache) Get(key string) any {
	item, ok := c.lru.Get(key)
	if !ok {
		return nil
	}
	if now().After(item.expiresAt) {
		c.lru.Remove(key)
		return nil
	}
	return item.data
}

func (c *PageCache) Delete(key string) {
	c.lru.Remove(key)
}
