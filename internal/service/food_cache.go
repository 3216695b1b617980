package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/nutriflow/backend/internal/mealplan"
	"github.com/nutriflow/backend/internal/metrics"
	"github.com/nutriflow/backend/internal/models"
	"github.com/redis/go-redis/v9"
)

// DefaultCandidateCacheTTL is used when no TTL is configured.
const DefaultCandidateCacheTTL = 10 * time.Minute

const candidateKeyPrefix = "mealplan:candidates:"

// CacheStore is the part of a Redis client the candidate cache uses.
type CacheStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// CachedCandidateRepository keeps recent candidate lists in Redis. Redis
// trouble never fails a lookup; it only costs a trip to the wrapped repository.
type CachedCandidateRepository struct {
	next    mealplan.CandidateRepository
	store   CacheStore
	ttl     time.Duration
	metrics *metrics.Collector
}

var (
	_ mealplan.CandidateRepository = (*CachedCandidateRepository)(nil)
	_ CandidateInvalidator         = (*CachedCandidateRepository)(nil)
)

// NewCachedCandidateRepository wraps next with a Redis cache. collector may be nil.
func NewCachedCandidateRepository(next mealplan.CandidateRepository, store CacheStore, ttl time.Duration, collector *metrics.Collector) *CachedCandidateRepository {
	if ttl <= 0 {
		ttl = DefaultCandidateCacheTTL
	}
	return &CachedCandidateRepository{
		next:    next,
		store:   store,
		ttl:     ttl,
		metrics: collector,
	}
}

func (c *CachedCandidateRepository) FindByMealTags(ctx context.Context, tags []string, limit int) ([]models.Food, error) {
	return c.cached(ctx, candidateCacheKey("tags", tags, limit), func() ([]models.Food, error) {
		return c.next.FindByMealTags(ctx, tags, limit)
	})
}

func (c *CachedCandidateRepository) FindByCategory(ctx context.Context, categories []string, limit int) ([]models.Food, error) {
	return c.cached(ctx, candidateCacheKey("categories", categories, limit), func() ([]models.Food, error) {
		return c.next.FindByCategory(ctx, categories, limit)
	})
}

func (c *CachedCandidateRepository) cached(ctx context.Context, key string, load func() ([]models.Food, error)) ([]models.Food, error) {
	data, err := c.store.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var foods []models.Food
		if err := json.Unmarshal(data, &foods); err == nil {
			c.record("hit")
			return foods, nil
		}
		log.Printf("[CandidateCache] Discarding unreadable entry %s", key)
		c.record("miss")
	case errors.Is(err, redis.Nil):
		c.record("miss")
	default:
		log.Printf("[CandidateCache] Failed to read %s from Redis: %v", key, err)
		c.record("error")
	}

	foods, err := load()
	if err != nil {
		return nil, err
	}

	data, err = json.Marshal(foods)
	if err != nil {
		log.Printf("[CandidateCache] Failed to marshal candidates for %s: %v", key, err)
		return foods, nil
	}
	if err := c.store.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Printf("[CandidateCache] Failed to write %s to Redis: %v", key, err)
	}
	return foods, nil
}

// Invalidate drops every cached candidate list.
func (c *CachedCandidateRepository) Invalidate(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.store.Scan(ctx, cursor, candidateKeyPrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan candidate cache: %w", err)
		}
		if len(keys) > 0 {
			if err := c.store.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete candidate cache entries: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (c *CachedCandidateRepository) record(result string) {
	if c.metrics != nil {
		c.metrics.RecordCache(result)
	}
}

// candidateCacheKey builds an order-insensitive key for one query.
func candidateCacheKey(kind string, keys []string, limit int) string {
	cleaned := cleanKeys(keys)
	sort.Strings(cleaned)
	return fmt.Sprintf("%s%s:%s:%d", candidateKeyPrefix, kind, strings.Join(cleaned, ","), limit)
}
