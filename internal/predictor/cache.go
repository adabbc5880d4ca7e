package predictor

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/nba-oracle/internal/models"
)

// Cache stores win probabilities keyed by model version and feature vector
type Cache interface {
	Get(ctx context.Context, key string) (float64, bool, error)
	Set(ctx context.Context, key string, probability float64) error
}

// CacheKey builds a deterministic key for a feature vector scored by a given model version
func CacheKey(modelVersion string, features models.FeatureVector) string {
	var b strings.Builder
	b.WriteString(modelVersion)
	for _, v := range features.Values() {
		b.WriteByte(':')
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return b.String()
}

// MemoryCache is an in-process prediction cache
type MemoryCache struct {
	mu      sync.Mutex
	cache   *cache.Cache
	ttl     time.Duration
	maxSize int
}

// NewMemoryCache creates a new in-memory cache. A maxSize of zero means unbounded.
func NewMemoryCache(ttl time.Duration, maxSize int) *MemoryCache {
	return &MemoryCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get implements Cache
func (m *MemoryCache) Get(_ context.Context, key string) (float64, bool, error) {
	v, found := m.cache.Get(key)
	if !found {
		return 0, false, nil
	}
	p, ok := v.(float64)
	if !ok {
		return 0, false, fmt.Errorf("unexpected cache entry type %T", v)
	}
	return p, true, nil
}

// Set implements Cache. When full, expired entries are dropped first and the write is
// skipped if the cache is still at capacity.
func (m *MemoryCache) Set(_ context.Context, key string, probability float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxSize > 0 && m.cache.ItemCount() >= m.maxSize {
		m.cache.DeleteExpired()
		if m.cache.ItemCount() >= m.maxSize {
			return nil
		}
	}
	m.cache.Set(key, probability, m.ttl)
	return nil
}

// ItemCount returns the number of items in cache
func (m *MemoryCache) ItemCount() int {
	return m.cache.ItemCount()
}

// Clear flushes the entire cache
func (m *MemoryCache) Clear() {
	m.cache.Flush()
}
