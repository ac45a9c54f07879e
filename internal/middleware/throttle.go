package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/agrienergy/agri-produce/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RateLimiter counts attempts per key inside a fixed window.
type RateLimiter interface {
	Allow(ctx context.Context, key string) bool
}

// MemoryLimiter keeps a sliding window per key. Keys idle for a full window
// are swept on a later Allow call, at most once per window.
type MemoryLimiter struct {
	mu        sync.Mutex
	attempts  map[string][]time.Time
	limit     int
	window    time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		attempts: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

func (l *MemoryLimiter) WithClock(now func() time.Time) *MemoryLimiter {
	l.now = now
	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) bool {
	if l.limit <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.window {
		l.sweepLocked(now)
	}
	recent := l.pruneLocked(key, now)
	if len(recent) >= l.limit {
		return false
	}
	l.attempts[key] = append(recent, now)
	return true
}

func (l *MemoryLimiter) pruneLocked(key string, now time.Time) []time.Time {
	values := l.attempts[key]
	threshold := now.Add(-l.window)
	pruned := values[:0]
	for _, v := range values {
		if v.After(threshold) {
			pruned = append(pruned, v)
		}
	}
	if len(pruned) == 0 {
		delete(l.attempts, key)
		return nil
	}
	l.attempts[key] = pruned
	return pruned
}

func (l *MemoryLimiter) sweepLocked(now time.Time) {
	threshold := now.Add(-l.window)
	for key, values := range l.attempts {
		if len(values) == 0 || !values[len(values)-1].After(threshold) {
			delete(l.attempts, key)
		}
	}
	l.lastSweep = now
}

// RedisLimiter shares the window between instances. Redis errors fail open.
type RedisLimiter struct {
	client  *redis.Client
	limit   int
	window  time.Duration
	prefix  string
	timeout time.Duration
	log     zerolog.Logger
}

func NewRedisLimiter(ctx context.Context, cfg config.RedisConfig, limit int, window time.Duration, log zerolog.Logger) (*RedisLimiter, error) {
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisLimiter{
		client:  client,
		limit:   limit,
		window:  window,
		prefix:  "agri:login:",
		timeout: 250 * time.Millisecond,
		log:     log,
	}, nil
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	if l.limit <= 0 {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	redisKey := l.prefix + key
	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		l.log.Error().Err(err).Str("op", "incr").Msg("redis rate limiter")
		return true
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			l.log.Error().Err(err).Str("op", "expire").Msg("redis rate limiter")
		}
	}
	return int(count) <= l.limit
}

func (l *RedisLimiter) Close() error {
	return l.client.Close()
}

// ThrottleLogin rejects POSTs from a client IP once the limiter is exhausted.
func ThrottleLogin(limiter RateLimiter, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		key := strings.TrimSpace(c.ClientIP())
		if key == "" {
			key = "unknown"
		}
		if !limiter.Allow(c.Request.Context(), key) {
			log.Warn().Str("ip", key).Msg("login throttled")
			c.HTML(http.StatusTooManyRequests, "login.html", gin.H{
				"Title":     "Log in",
				"Email":     c.PostForm("email"),
				"ReturnURL": c.PostForm("return_url"),
				"Errors":    []string{"Too many login attempts. Please wait a minute and try again."},
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
