package middleware

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pageza/recipebox/internal/metrics"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter counts one request against key.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// RedisLimiter is a fixed window counter shared by every instance using the
// same Redis.
type RedisLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
	now    func() time.Time
}

func NewRedisLimiter(client *redis.Client, config RateLimitConfig) *RedisLimiter {
	return &RedisLimiter{redis: client, config: config, now: time.Now}
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	windowStart := rl.now().Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	// INCR and EXPIRE go out in one round trip.
	pipe := rl.redis.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate limit %s: %w", rl.config.KeyPrefix, err)
	}

	count := int(incr.Val())
	return Decision{
		Allowed:   count <= rl.config.Limit,
		Limit:     rl.config.Limit,
		Remaining: max(rl.config.Limit-count, 0),
		Reset:     windowStart.Add(rl.config.Window),
	}, nil
}

// maxIdleKeys bounds the memory limiter before idle keys are swept.
const maxIdleKeys = 10000

type memoryEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter is a per-process token bucket per key. Limit tokens refill
// evenly over Window.
type MemoryLimiter struct {
	config RateLimitConfig
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*memoryEntry
}

func NewMemoryLimiter(config RateLimitConfig) *MemoryLimiter {
	return &MemoryLimiter{
		config:  config,
		now:     time.Now,
		entries: make(map[string]*memoryEntry),
	}
}

func (ml *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := ml.now()
	every := rate.Every(ml.config.Window / time.Duration(max(ml.config.Limit, 1)))

	ml.mu.Lock()
	defer ml.mu.Unlock()

	if len(ml.entries) >= maxIdleKeys {
		ml.sweep(now)
	}
	entry, ok := ml.entries[key]
	if !ok {
		entry = &memoryEntry{limiter: rate.NewLimiter(every, ml.config.Limit)}
		ml.entries[key] = entry
	}
	entry.lastSeen = now

	allowed := entry.limiter.AllowN(now, 1)
	tokens := entry.limiter.TokensAt(now)
	reset := now
	if tokens < 1 {
		reset = now.Add(time.Duration((1 - tokens) * float64(time.Second) / float64(every)))
	}
	return Decision{
		Allowed:   allowed,
		Limit:     ml.config.Limit,
		Remaining: max(int(tokens), 0),
		Reset:     reset,
	}, nil
}

// sweep drops keys idle for a full window; their buckets are full again.
func (ml *MemoryLimiter) sweep(now time.Time) {
	for key, entry := range ml.entries {
		if now.Sub(entry.lastSeen) >= ml.config.Window {
			delete(ml.entries, key)
		}
	}
}

// KeyFunc picks the bucket for a request. ok=false skips limiting.
type KeyFunc func(c *gin.Context) (key string, ok bool)

// ClientIPKey limits per client address.
func ClientIPKey(c *gin.Context) (string, bool) {
	return c.ClientIP(), true
}

// UserKey limits per logged in user.
func UserKey(c *gin.Context) (string, bool) {
	userID, ok := CurrentUserID(c)
	if !ok {
		return "", false
	}
	return userID.String(), true
}

// RateLimit enforces limiter on every request it wraps. Rejected requests
// are handed to onLimited and aborted. A failing limiter lets the request
// through.
func RateLimit(name string, limiter Limiter, keyFunc KeyFunc, m *metrics.Metrics, log *zap.Logger, onLimited gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok := keyFunc(c)
		if !ok {
			c.Next()
			return
		}

		d, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warn("rate limit check failed", zap.String("limiter", name), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(d.Reset.Unix(), 10))

		if !d.Allowed {
			retryAfter := int(time.Until(d.Reset).Seconds())
			c.Header("Retry-After", strconv.Itoa(max(retryAfter, 1)))
			m.RateLimited.WithLabelValues(name).Inc()
			log.Info("rate limit exceeded", zap.String("limiter", name), zap.String("key", key))
			onLimited(c)
			c.Abort()
			return
		}

		c.Next()
	}
}
