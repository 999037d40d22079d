package middleware

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillInterval time.Duration
	Prefix         string
}

// tokenBucket refills one token per interval up to capacity. The state lives
// in a hash so that every API process shares it.
var tokenBucket = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local interval_ms = tonumber(ARGV[3])
	local ttl_seconds = tonumber(ARGV[4])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 then
		local elapsed = math.max(0, now_ms - last_refill)
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + intervals)
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

// limiter decides whether key may proceed, returning the tokens left and how
// long to wait when it may not.
type limiter interface {
	allow(c *gin.Context, key string) (ok bool, remaining int64, retry time.Duration, err error)
}

// RateLimit throttles requests per client IP and route. With a Redis client
// the bucket is shared between processes; without one each process keeps its
// own golang.org/x/time/rate limiters. Redis failures let the request through.
func RateLimit(cfg RateLimitConfig, rdb *redis.Client, logger *slog.Logger) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "yamdb:ratelimit"
	}

	var lim limiter
	if rdb != nil {
		lim = &redisLimiter{rdb: rdb, cfg: cfg}
	} else {
		lim = newMemoryLimiter(cfg)
	}

	return func(c *gin.Context) {
		key := fmt.Sprintf("%s:%s:%s %s", cfg.Prefix, c.ClientIP(), c.Request.Method, c.FullPath())

		ok, remaining, retry, err := lim.allow(c, key)
		if err != nil {
			logger.WarnContext(c.Request.Context(), "rate limiter unavailable", "key", key, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		if !ok {
			secs := int(math.Ceil(retry.Seconds()))
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": secs,
			})
			return
		}
		c.Next()
	}
}

type redisLimiter struct {
	rdb *redis.Client
	cfg RateLimitConfig
}

func (l *redisLimiter) allow(c *gin.Context, key string) (bool, int64, time.Duration, error) {
	// idle buckets are full again after capacity intervals
	ttl := int64((time.Duration(l.cfg.Capacity)*l.cfg.RefillInterval)/time.Second) + 1
	vals, err := tokenBucket.Run(c.Request.Context(), l.rdb, []string{key},
		time.Now().UnixMilli(),
		l.cfg.Capacity,
		l.cfg.RefillInterval.Milliseconds(),
		ttl,
	).Int64Slice()
	if err != nil {
		return false, 0, 0, err
	}
	if len(vals) != 3 {
		return false, 0, 0, fmt.Errorf("unexpected script result %v", vals)
	}
	return vals[0] == 1, vals[1], time.Duration(vals[2]) * time.Millisecond, nil
}

type memoryBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// memoryLimiter keeps one limiter per key. A bucket left alone for idle has
// refilled completely, so it is dropped and recreated full on the next hit.
type memoryLimiter struct {
	cfg       RateLimitConfig
	idle      time.Duration
	mu        sync.Mutex
	buckets   map[string]*memoryBucket
	lastSweep time.Time
}

func newMemoryLimiter(cfg RateLimitConfig) *memoryLimiter {
	idle := time.Duration(cfg.Capacity) * cfg.RefillInterval
	if idle < time.Minute {
		idle = time.Minute
	}
	return &memoryLimiter{cfg: cfg, idle: idle, buckets: make(map[string]*memoryBucket)}
}

func (l *memoryLimiter) get(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.idle {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) >= l.idle {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &memoryBucket{lim: rate.NewLimiter(rate.Every(l.cfg.RefillInterval), l.cfg.Capacity)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.lim
}

func (l *memoryLimiter) allow(_ *gin.Context, key string) (bool, int64, time.Duration, error) {
	return l.allowAt(key, time.Now())
}

func (l *memoryLimiter) allowAt(key string, now time.Time) (bool, int64, time.Duration, error) {
	lim := l.get(key, now)
	r := lim.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, 0, delay, nil
	}
	return true, int64(lim.TokensAt(now)), 0, nil
}
