package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcihq/rci/internal/cache"
	"github.com/rcihq/rci/internal/models"
)

func newCache(maxSize, ttlSeconds int) *cache.SmartCache {
	return cache.New(models.CacheConfig{Enabled: true, MaxSize: maxSize, TTLSeconds: ttlSeconds}, 0.92)
}

func TestSmartCache_ExactHit(t *testing.T) {
	c := newCache(10, 300)
	resp := models.SearchResponse{Components: []models.ComponentDoc{{ComponentName: "Button"}}}
	c.Set("button", resp, []float32{1, 0, 0}, models.Filters{})

	got, ok := c.Get("  Button  ", nil, models.Filters{})
	require.True(t, ok)
	assert.Equal(t, resp.Components, got.Components)
}

func TestSmartCache_MissWhenEmpty(t *testing.T) {
	c := newCache(10, 300)
	_, ok := c.Get("button", nil, models.Filters{})
	assert.False(t, ok)
}

func TestSmartCache_SemanticHit(t *testing.T) {
	c := newCache(10, 300)
	resp := models.SearchResponse{Components: []models.ComponentDoc{{ComponentName: "Button"}}}
	c.Set("button", resp, []float32{1, 0, 0}, models.Filters{})

	got, ok := c.Get("a clickable button", []float32{0.99, 0.01, 0}, models.Filters{})
	require.True(t, ok)
	assert.Equal(t, resp.Components, got.Components)
}

func TestSmartCache_SemanticMissBelowThreshold(t *testing.T) {
	c := newCache(10, 300)
	resp := models.SearchResponse{Components: []models.ComponentDoc{{ComponentName: "Button"}}}
	c.Set("button", resp, []float32{1, 0, 0}, models.Filters{})

	_, ok := c.Get("completely unrelated", []float32{0, 0, 1}, models.Filters{})
	assert.False(t, ok)
}

func TestSmartCache_FiltersPartitionExactKeys(t *testing.T) {
	c := newCache(10, 300)
	respA := models.SearchResponse{Components: []models.ComponentDoc{{ComponentName: "A"}}}
	c.Set("button", respA, nil, models.Filters{PackageName: "core"})

	_, ok := c.Get("button", nil, models.Filters{PackageName: "extra"})
	assert.False(t, ok)

	got, ok := c.Get("button", nil, models.Filters{PackageName: "core"})
	require.True(t, ok)
	assert.Equal(t, respA.Components, got.Components)
}

func TestSmartCache_TTLExpiry(t *testing.T) {
	c := cache.New(models.CacheConfig{Enabled: true, MaxSize: 10, TTLSeconds: 1}, 0.92)
	c.Set("button", models.SearchResponse{}, nil, models.Filters{})

	_, ok := c.Get("button", nil, models.Filters{})
	require.True(t, ok)

	time.Sleep(1100 * time.Millisecond)
	_, ok = c.Get("button", nil, models.Filters{})
	assert.False(t, ok)
}

func TestSmartCache_EvictsOldestOnCapacity(t *testing.T) {
	c := newCache(2, 300)
	c.Set("a", models.SearchResponse{}, nil, models.Filters{})
	c.Set("b", models.SearchResponse{}, nil, models.Filters{})
	c.Set("c", models.SearchResponse{}, nil, models.Filters{})

	_, ok := c.Get("a", nil, models.Filters{})
	assert.False(t, ok, "oldest entry should have been evicted")

	_, ok = c.Get("c", nil, models.Filters{})
	assert.True(t, ok)
}

func TestSmartCache_ClearResetsSizeButKeepsCumulativeStats(t *testing.T) {
	c := newCache(10, 300)
	c.Set("button", models.SearchResponse{}, nil, models.Filters{})
	c.Get("button", nil, models.Filters{})
	c.Get("missing", nil, models.Filters{})

	c.Clear()
	stats := c.Stats()
	assert.Equal(t, 0, stats.Size)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestSmartCache_DisabledIsNoop(t *testing.T) {
	c := cache.New(models.CacheConfig{Enabled: false, MaxSize: 10, TTLSeconds: 300}, 0.92)
	c.Set("button", models.SearchResponse{}, nil, models.Filters{})
	_, ok := c.Get("button", nil, models.Filters{})
	assert.False(t, ok)
}

func TestSmartCache_Stats(t *testing.T) {
	c := newCache(10, 300)
	c.Set("button", models.SearchResponse{DurationMS: 10}, nil, models.Filters{})
	c.Set("alert", models.SearchResponse{DurationMS: 20}, nil, models.Filters{})
	c.Get("button", nil, models.Filters{})
	c.Get("missing", nil, models.Filters{})

	stats := c.Stats()
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate, 0.0001)
	assert.InDelta(t, 15.0, stats.AvgResponseTime, 0.0001)
	assert.False(t, stats.OldestEntry.IsZero())
}
