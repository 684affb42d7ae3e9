package embedding

import (
	"container/list"
	"context"
	"sync"
)

// Cache is an LRU cache for embeddings keyed by text.
type Cache struct {
	capacity int
	cache    map[string]*list.Element
	lru      *list.List
	mu       sync.Mutex
}

type cacheEntry struct {
	key   string
	value []float32
}

// NewCache creates a cache with the given capacity.
func NewCache(capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		lru:      list.New(),
	}
}

// Get returns the cached embedding for key if present.
func (c *Cache) Get(key string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToFront(elem)
		return elem.Value.(*cacheEntry).value, true
	}
	return nil, false
}

// Set stores the embedding for key, evicting the oldest entry if at capacity.
func (c *Cache) Set(key string, value []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheEntry).value = value
		return
	}
	elem := c.lru.PushFront(&cacheEntry{key: key, value: value})
	c.cache[key] = elem
	if c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		if oldest != nil {
			c.lru.Remove(oldest)
			delete(c.cache, oldest.Value.(*cacheEntry).key)
		}
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// CachedEmbedder wraps an Embedder with an LRU cache. Query text repeats
// often in RAG workloads; caching avoids redundant provider calls.
type CachedEmbedder struct {
	inner Embedder
	cache *Cache
}

// NewCachedEmbedder wraps inner with a cache of the given capacity.
func NewCachedEmbedder(inner Embedder, capacity int) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, cache: NewCache(capacity)}
}

// Embed returns the cached embedding when available, otherwise delegates.
func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := e.cache.Get(text); ok {
		return vec, nil
	}
	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Set(text, vec)
	return vec, nil
}

// EmbedBatch embeds the cache misses in one provider call.
func (e *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int
	for i, text := range texts {
		if vec, ok := e.cache.Get(text); ok {
			embeddings[i] = vec
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return embeddings, nil
	}
	fetched, err := e.inner.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	for j, vec := range fetched {
		embeddings[missingIdx[j]] = vec
		e.cache.Set(missing[j], vec)
	}
	return embeddings, nil
}

// Dimensions returns the inner embedder's dimension.
func (e *CachedEmbedder) Dimensions() int {
	return e.inner.Dimensions()
}

// Close closes the inner embedder.
func (e *CachedEmbedder) Close() error {
	return e.inner.Close()
}
