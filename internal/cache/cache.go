// Package cache implements the two-tier smart cache (spec §4.4): an exact
// LRU keyed by normalised query + filters, and a semantic tier that matches
// on query-embedding cosine similarity.
package cache

import (
	"container/list"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rcihq/rci/internal/models"
	"github.com/rcihq/rci/internal/storage"
)

const defaultSemanticThreshold = 0.92

type entryWrapper struct {
	key   string
	entry *models.CacheEntry
}

// SmartCache is the in-process cache owned exclusively by RCIService.
type SmartCache struct {
	mu sync.Mutex

	enabled bool
	maxSize int
	maxAge  time.Duration
	tau     float32

	lru           *list.List // front = oldest inserted / least recently used
	exact         map[string]*list.Element
	semanticOrder []*entryWrapper

	hits, misses, totalQueries int64
}

// New builds a SmartCache from the service's cache config. tau is the
// semantic-match cosine threshold; pass 0 to use the spec default (0.92).
func New(cfg models.CacheConfig, tau float32) *SmartCache {
	if tau == 0 {
		tau = defaultSemanticThreshold
	}
	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = 1000
	}
	maxAge := time.Duration(cfg.TTLSeconds) * time.Second
	if maxAge <= 0 {
		maxAge = 300 * time.Second
	}
	return &SmartCache{
		enabled: cfg.Enabled,
		maxSize: maxSize,
		maxAge:  maxAge,
		tau:     tau,
		lru:     list.New(),
		exact:   make(map[string]*list.Element),
	}
}

// Key computes the exact cache key: md5(lower(trim(query)) || canonicalJSON(filters)).
func Key(query string, filters models.Filters) string {
	norm := strings.ToLower(strings.TrimSpace(query))
	fj, _ := json.Marshal(filters)
	sum := md5.Sum(append([]byte(norm), fj...))
	return hex.EncodeToString(sum[:])
}

// Get looks up query first by exact key, then (if embedding is non-nil) by
// semantic similarity against stored embeddings. ok is false on a miss.
func (c *SmartCache) Get(query string, embedding []float32, filters models.Filters) (models.SearchResponse, bool) {
	if !c.enabled {
		return models.SearchResponse{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.totalQueries++
	now := time.Now()
	key := Key(query, filters)

	if el, ok := c.exact[key]; ok {
		w := el.Value.(*entryWrapper)
		if now.Sub(w.entry.CreatedAt) <= c.maxAge {
			c.lru.MoveToBack(el)
			w.entry.LastAccessed = now
			w.entry.HitCount++
			c.hits++
			return w.entry.Response, true
		}
		c.removeLocked(el)
	}

	if embedding != nil {
		for _, w := range c.semanticOrder {
			if now.Sub(w.entry.CreatedAt) > c.maxAge {
				continue
			}
			if storage.Cosine(w.entry.Embedding, embedding) >= c.tau {
				w.entry.LastAccessed = now
				w.entry.HitCount++
				c.hits++
				return w.entry.Response, true
			}
		}
	}

	c.misses++
	return models.SearchResponse{}, false
}

// Set inserts response under query+filters, evicting the oldest entry if
// the cache is at capacity. embedding may be nil to skip the semantic tier.
func (c *SmartCache) Set(query string, response models.SearchResponse, embedding []float32, filters models.Filters) {
	if !c.enabled {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.exact) >= c.maxSize {
		if front := c.lru.Front(); front != nil {
			c.removeLocked(front)
		}
	}

	now := time.Now()
	key := Key(query, filters)
	entry := &models.CacheEntry{
		Response:     response,
		Embedding:    embedding,
		CreatedAt:    now,
		LastAccessed: now,
	}
	w := &entryWrapper{key: key, entry: entry}
	c.exact[key] = c.lru.PushBack(w)
	if embedding != nil {
		c.semanticOrder = append(c.semanticOrder, w)
	}
}

// removeLocked drops el from the LRU list, the exact map, and (if present)
// the semantic order. Caller must hold c.mu.
func (c *SmartCache) removeLocked(el *list.Element) {
	w := el.Value.(*entryWrapper)
	c.lru.Remove(el)
	delete(c.exact, w.key)
	for i, s := range c.semanticOrder {
		if s == w {
			c.semanticOrder = append(c.semanticOrder[:i], c.semanticOrder[i+1:]...)
			break
		}
	}
}

// Clear empties both tiers. Cumulative counters (hits/misses/totalQueries)
// persist across Clear, since Stats reports them for long-run telemetry.
func (c *SmartCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru = list.New()
	c.exact = make(map[string]*list.Element)
	c.semanticOrder = nil
}

// Stats reports current size and cumulative hit/miss telemetry.
func (c *SmartCache) Stats() models.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := models.CacheStats{
		Size:         len(c.exact),
		Hits:         c.hits,
		Misses:       c.misses,
		TotalQueries: c.totalQueries,
	}
	if c.hits+c.misses > 0 {
		stats.HitRate = float64(c.hits) / float64(c.hits+c.misses)
	}

	var totalMS, count int64
	for el := c.lru.Front(); el != nil; el = el.Next() {
		w := el.Value.(*entryWrapper)
		if stats.OldestEntry.IsZero() || w.entry.CreatedAt.Before(stats.OldestEntry) {
			stats.OldestEntry = w.entry.CreatedAt
		}
		totalMS += w.entry.Response.DurationMS
		count++
	}
	if count > 0 {
		stats.AvgResponseTime = float64(totalMS) / float64(count)
	}
	return stats
}
