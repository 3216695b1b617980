package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounterStore struct {
	counts  map[string]int64
	expires map[string]time.Duration
	err     error
}

func newFakeCounterStore() *fakeCounterStore {
	return &fakeCounterStore{counts: map[string]int64{}, expires: map[string]time.Duration{}}
}

func (f *fakeCounterStore) Incr(ctx context.Context, key string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeCounterStore) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	f.expires[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func TestRateLimiter_IsAllowed(t *testing.T) {
	store := newFakeCounterStore()
	rl := NewGenerationRateLimiter(store, 2, time.Minute)
	fixed := time.Date(2024, 1, 1, 10, 0, 30, 0, time.UTC)
	rl.now = func() time.Time { return fixed }
	ctx := context.Background()

	allowed, remaining, reset, err := rl.IsAllowed(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, remaining)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 1, 0, 0, time.UTC), reset)

	allowed, remaining, _, _ = rl.IsAllowed(ctx, "u1")
	assert.True(t, allowed)
	assert.Equal(t, 0, remaining)

	allowed, remaining, _, _ = rl.IsAllowed(ctx, "u1")
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)

	allowed, _, _, _ = rl.IsAllowed(ctx, "u2")
	assert.True(t, allowed)

	assert.Len(t, store.expires, 2)
	for _, ttl := range store.expires {
		assert.Equal(t, time.Minute, ttl)
	}

	rl.now = func() time.Time { return fixed.Add(time.Minute) }
	allowed, _, _, _ = rl.IsAllowed(ctx, "u1")
	assert.True(t, allowed)
}

func newLimitedRouter(rl *RateLimiter, setUser bool) *gin.Engine {
	r := gin.New()
	r.POST("/generate", func(c *gin.Context) {
		if setUser {
			c.Set(ContextUserID, "clinician-1")
		}
		c.Next()
	}, rl.RateLimitMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewGenerationRateLimiter(newFakeCounterStore(), 1, time.Hour)
	router := newLimitedRouter(rl, true)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/generate", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/generate", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate limit exceeded")
}

func TestRateLimitMiddleware_RedisDownLetsRequestThrough(t *testing.T) {
	store := newFakeCounterStore()
	store.err = errors.New("dial tcp: connection refused")
	router := newLimitedRouter(NewGenerationRateLimiter(store, 1, time.Hour), true)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/generate", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "rate limit check failed", w.Header().Get("X-RateLimit-Error"))
	}
}

func TestRateLimitMiddleware_RequiresUser(t *testing.T) {
	router := newLimitedRouter(NewGenerationRateLimiter(newFakeCounterStore(), 1, time.Hour), false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/generate", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
