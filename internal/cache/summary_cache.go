package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/psephos-ai/psephos-go/internal/models"
)

// SummaryCacheStats tracks cache performance metrics.
type SummaryCacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
	mu     sync.RWMutex
}

// RedisSummaryCache stores completed forecast summaries keyed by run id so
// repeated result reads skip the database. Implements
// interfaces.SummaryCache.
type RedisSummaryCache struct {
	redis  *redis.Client
	ttl    time.Duration
	stats  *SummaryCacheStats
	prefix string
}

// NewRedisSummaryCache creates a new Redis-based summary cache.
func NewRedisSummaryCache(redisClient *redis.Client, ttl time.Duration) *RedisSummaryCache {
	return &RedisSummaryCache{
		redis:  redisClient,
		ttl:    ttl,
		stats:  &SummaryCacheStats{},
		prefix: "forecast_summary:",
	}
}

// SetSummary caches a run's summary with the configured TTL.
func (c *RedisSummaryCache) SetSummary(ctx context.Context, runID string, summary *models.ForecastSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to serialize forecast summary: %w", err)
	}
	if err := c.redis.Set(ctx, c.prefix+runID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache forecast summary: %w", err)
	}
	c.stats.mu.Lock()
	c.stats.Sets++
	c.stats.mu.Unlock()
	return nil
}

// GetSummary returns the cached summary for a run, or nil on a miss. Cache
// errors are reported as misses only through the error return; callers fall
// back to the store.
func (c *RedisSummaryCache) GetSummary(ctx context.Context, runID string) (*models.ForecastSummary, error) {
	data, err := c.redis.Get(ctx, c.prefix+runID).Result()
	if err == redis.Nil {
		c.stats.mu.Lock()
		c.stats.Misses++
		c.stats.mu.Unlock()
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached forecast summary: %w", err)
	}

	var summary models.ForecastSummary
	if err := json.Unmarshal([]byte(data), &summary); err != nil {
		return nil, fmt.Errorf("failed to deserialize cached forecast summary: %w", err)
	}
	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()
	return &summary, nil
}

// Stats returns a copy of the cache counters.
func (c *RedisSummaryCache) Stats() SummaryCacheStats {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()
	return SummaryCacheStats{Hits: c.stats.Hits, Misses: c.stats.Misses, Sets: c.stats.Sets}
}
